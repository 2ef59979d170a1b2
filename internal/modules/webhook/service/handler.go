package service

import (
	"io"
	"net/http"

	"signals_bot/internal/models"
	"signals_bot/internal/modules/config"
	validator "signals_bot/internal/modules/validator/service"
	"signals_bot/internal/notify"
	"signals_bot/internal/ratelimit"
	"signals_bot/pkg/logger"

	"github.com/bytedance/sonic"
)

const secretHeader = "X-Webhook-Secret"

// Handler — граница приёма сигналов: секрет, JSON, ревалидация, рейт-лимит
// по паре и только потом алерт в Telegram.
type Handler struct {
	secret  string
	val     *validator.Validator
	limiter ratelimit.Limiter
	n       notify.Notifier
}

func NewHandler(cfg *config.Config, val *validator.Validator, limiter ratelimit.Limiter, n notify.Notifier) *Handler {
	return &Handler{
		secret:  cfg.Webhook.Secret,
		val:     val,
		limiter: limiter,
		n:       n,
	}
}

func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", h.handleWebhook)
	return mux
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if r.Header.Get(secretHeader) != h.secret {
		writeDetail(w, http.StatusUnauthorized, "Unauthorized: Invalid webhook secret")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var sig models.Signal
	if err := sonic.Unmarshal(body, &sig); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	validated, ok := h.val.Admit(&sig, nil)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Signal validation failed")
		return
	}

	if h.limiter.Allow(validated.Pair) {
		text := notify.FormatAlert(*validated)
		if validated.ExitReason != "" && !validated.Active {
			text = notify.FormatExit(*validated)
		}
		h.n.Send(text)
	} else {
		logger.Info("[WEBHOOK] rate limited %s, alert suppressed", validated.Pair)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Signal processed successfully"})
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	body, _ := sonic.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
