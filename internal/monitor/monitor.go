package monitor

import (
	"context"
	"time"

	"signals_bot/internal/dispatch"
	"signals_bot/internal/exchange"
	"signals_bot/internal/models"
	"signals_bot/internal/modules/config"
	"signals_bot/internal/store"
	"signals_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
)

// Monitor обходит активные сигналы и закрывает те, по которым цена дошла
// до выхода. Запись удаляется из стора только после успешной доставки.
type Monitor struct {
	cfg    *config.Config
	st     store.Store
	prices exchange.PriceSource
	disp   dispatch.Dispatcher
}

func NewMonitor(cfg *config.Config, st store.Store, prices exchange.PriceSource, disp dispatch.Dispatcher) *Monitor {
	return &Monitor{cfg: cfg, st: st, prices: prices, disp: disp}
}

func (m *Monitor) Run(ctx context.Context) {
	logger.Info("[MONITOR] exit loop started, every %s", m.cfg.Scan.MonitorInterval)

	ticker := time.NewTicker(m.cfg.Scan.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cycle(ctx)
		}
	}
}

func (m *Monitor) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[MONITOR] cycle panic: %v", r)
			time.Sleep(m.cfg.Scan.ErrorBackoff)
		}
	}()
	m.Check(ctx)
}

// Check — один проход по активным сигналам.
func (m *Monitor) Check(ctx context.Context) {
	span := opentracing.StartSpan("monitor_cycle")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	for _, sig := range m.st.ActiveSignals(ctx) {
		price, err := m.prices.Price(ctx, sig.Pair)
		if err != nil {
			logger.Error("[MONITOR] price %s: %v", sig.Pair, err)
			continue
		}

		reason, exit := DecideExit(&sig, price)
		if !exit {
			continue
		}

		sig.ExitReason = reason
		sig.Active = false

		if err := m.disp.Dispatch(ctx, sig); err != nil {
			// не удаляем: на следующем проходе попробуем ещё раз
			logger.Error("[MONITOR] dispatch exit %s: %v", sig.SerialLabel(), err)
			continue
		}
		if err := m.st.Remove(ctx, sig.ID); err != nil {
			logger.Error("[MONITOR] remove %s: %v", sig.SerialLabel(), err)
			continue
		}
		logger.Info("[MONITOR] exit %s %s %s @ %v: %s",
			sig.SerialLabel(), sig.Pair, sig.Direction, price, reason)
	}
}

// DecideExit — лестница приоритетов условий выхода. Первое сработавшее
// условие сверху вниз и определяет причину.
func DecideExit(sig *models.Signal, price float64) (string, bool) {
	stopHit := (sig.Direction == models.DirectionBuy && price <= sig.Stop) ||
		(sig.Direction == models.DirectionSell && price >= sig.Stop)
	if stopHit {
		return models.ExitStopLossHit, true
	}

	if sig.StrategyInvalidated {
		if sig.ExitReason != "" {
			return sig.ExitReason, true
		}
		return models.ExitStrategyInvalidated, true
	}

	if sig.EarlyExit {
		if sig.ExitReason != "" {
			return sig.ExitReason, true
		}
		return models.ExitEarlyExitTriggered, true
	}

	if len(sig.Targets) > 0 {
		targetHit := (sig.Direction == models.DirectionBuy && price >= sig.Targets[0]) ||
			(sig.Direction == models.DirectionSell && price <= sig.Targets[0])
		if targetHit {
			return models.ExitEarlyProfitBooking, true
		}
	}

	breakeven := (sig.Direction == models.DirectionBuy && price <= sig.Entry) ||
		(sig.Direction == models.DirectionSell && price >= sig.Entry)
	if breakeven {
		return models.ExitCostToCost, true
	}

	return "", false
}
