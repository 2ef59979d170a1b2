package exchange

import (
	"context"
	"strings"
	"sync"
	"time"

	"signals_bot/internal/modules/config"
	"signals_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

type pricePoint struct {
	price float64
	at    time.Time
}

// PriceFeed держит последнюю цену по каждой паре из комбинированного
// miniTicker-стрима. Одно соединение на весь вотчлист.
type PriceFeed struct {
	mu        sync.RWMutex
	prices    map[string]pricePoint
	connected bool

	baseURL  string
	pairs    []string
	wsDialer *websocket.Dialer
	now      func() time.Time
}

func NewPriceFeed(cfg *config.Config, pairs []string) *PriceFeed {
	return &PriceFeed{
		prices:   make(map[string]pricePoint),
		baseURL:  cfg.Exchange.WSBaseURL,
		pairs:    pairs,
		wsDialer: &websocket.Dialer{},
		now:      time.Now,
	}
}

// Last — последняя цена пары, если она не старше maxAge.
func (f *PriceFeed) Last(pair string, maxAge time.Duration) (float64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p, ok := f.prices[Symbol(pair)]
	if !ok || f.now().Sub(p.at) > maxAge {
		return 0, false
	}
	return p.price, true
}

func (f *PriceFeed) Connected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

func (f *PriceFeed) setConnected(v bool) {
	f.mu.Lock()
	f.connected = v
	f.mu.Unlock()
}

func (f *PriceFeed) set(symbol string, price float64) {
	f.mu.Lock()
	f.prices[symbol] = pricePoint{price: price, at: f.now()}
	f.mu.Unlock()
}

func (f *PriceFeed) streamURL() string {
	streams := make([]string, 0, len(f.pairs))
	for _, pair := range f.pairs {
		streams = append(streams, strings.ToLower(Symbol(pair))+"@miniTicker")
	}
	return f.baseURL + "/stream?streams=" + strings.Join(streams, "/")
}

// Run крутит соединение до отмены контекста, с реконнектом через секунду.
func (f *PriceFeed) Run(ctx context.Context) {
	if len(f.pairs) == 0 {
		return
	}
	url := f.streamURL()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		logger.Info("[WS] connect miniTicker, %d pairs", len(f.pairs))
		conn, _, err := f.wsDialer.DialContext(ctx, url, nil)
		if err != nil {
			logger.Error("[WS] dial error: %v", err)
			time.Sleep(time.Second)
			continue
		}
		f.setConnected(true)

		// keepalive ping каждые 20s — иначе биржа рвёт соединение
		stopPing := make(chan struct{})
		go func() {
			t := time.NewTicker(20 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-stopPing:
					return
				case <-t.C:
					_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Error("[WS] read error: %v", err)
				close(stopPing)
				_ = conn.Close()
				f.setConnected(false)
				break
			}

			var frame struct {
				Stream string `json:"stream"`
				Data   struct {
					Symbol string `json:"s"`
					Close  string `json:"c"`
				} `json:"data"`
			}
			if err := sonic.Unmarshal(msg, &frame); err != nil {
				continue
			}
			if frame.Data.Symbol == "" {
				continue
			}
			if price := asFloat(frame.Data.Close); price > 0 {
				f.set(frame.Data.Symbol, price)
			}
		}
	}
}
