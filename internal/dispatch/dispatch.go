package dispatch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"signals_bot/internal/models"
	"signals_bot/internal/modules/config"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// ErrDispatch — приёмник недоступен или отверг сигнал.
var ErrDispatch = errors.New("signal dispatch failed")

// Dispatcher доставляет сигнал на границу приёма.
type Dispatcher interface {
	Dispatch(ctx context.Context, sig models.Signal) error
}

// WebhookDispatcher шлёт сигнал POST-ом с секретом в заголовке.
type WebhookDispatcher struct {
	url    string
	secret string
	http   *http.Client
}

func NewWebhookDispatcher(cfg *config.Config) *WebhookDispatcher {
	return &WebhookDispatcher{
		url:    cfg.Webhook.URL,
		secret: cfg.Webhook.Secret,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, sig models.Signal) error {
	body, err := sonic.Marshal(sig)
	if err != nil {
		return errors.Wrap(err, "marshal signal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", d.secret)

	resp, err := d.http.Do(req)
	if err != nil {
		return errors.Wrapf(ErrDispatch, "%s: %v", sig.Pair, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		rb, _ := io.ReadAll(resp.Body)
		return errors.Wrapf(ErrDispatch, "%s http %d: %s", sig.Pair, resp.StatusCode, string(rb))
	}
	return nil
}
