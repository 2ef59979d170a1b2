package service

import (
	"math"

	"signals_bot/internal/indicator"
	"signals_bot/internal/models"
)

const (
	vwapLookback   = 20
	vwapVolumeMult = 1.5
	vwapMinCandles = 21
)

// VWAPBreakout — пробой скользящего VWAP(20) на повышенном объёме:
// предыдущее закрытие по одну сторону от своего VWAP, текущее — по другую,
// объём текущей свечи > 1.5× среднего за 20 периодов.
type VWAPBreakout struct{}

func NewVWAPBreakout() *VWAPBreakout { return &VWAPBreakout{} }

func (s *VWAPBreakout) Name() models.StrategyName { return models.StrategyVWAPBreakout }

func (s *VWAPBreakout) Evaluate(w models.Window, pair, timeframe string) *models.Signal {
	n := len(w)
	if n < vwapMinCandles {
		return nil
	}

	cur, prev := w[n-1], w[n-2]
	curVWAP := indicator.VWAPAt(w, n-1, vwapLookback)
	prevVWAP := indicator.VWAPAt(w, n-2, vwapLookback)

	avgVol := indicator.SMA(w.Volumes(), vwapLookback)
	if avgVol <= 0 {
		return nil
	}
	volRatio := cur.Volume / avgVol
	if volRatio <= vwapVolumeMult {
		return nil
	}

	var dir models.Direction
	switch {
	case prev.Close < prevVWAP && cur.Close > curVWAP:
		dir = models.DirectionBuy
	case prev.Close > prevVWAP && cur.Close < curVWAP:
		dir = models.DirectionSell
	default:
		return nil
	}

	atr := indicator.ATR(w, 14)
	if atr <= 0 {
		return nil
	}
	entry := cur.Close
	stop, targets := atrLadder(entry, atr, dir)

	momentum := models.MomentumMedium
	if volRatio > 2 {
		momentum = models.MomentumHigh
	}

	return &models.Signal{
		Pair:       pair,
		Direction:  dir,
		Strategy:   s.Name(),
		Timeframe:  timeframe,
		Entry:      entry,
		Stop:       stop,
		Targets:    targets,
		Confidence: math.Min(0.75+(volRatio-vwapVolumeMult)/3, 0.95),
		Momentum:   momentum,
	}
}
