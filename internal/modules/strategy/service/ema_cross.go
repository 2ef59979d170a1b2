package service

import (
	"math"

	"signals_bot/internal/indicator"
	"signals_bot/internal/models"
)

const (
	emaShortPeriod = 9
	emaLongPeriod  = 21
	emaMinCandles  = 21
)

// EMACross — пересечение EMA9/EMA21 на последнем баре: бар назад короткая
// была не выше длинной, сейчас выше (зеркально для SELL).
type EMACross struct{}

func NewEMACross() *EMACross { return &EMACross{} }

func (s *EMACross) Name() models.StrategyName { return models.StrategyEMACross }

func (s *EMACross) Evaluate(w models.Window, pair, timeframe string) *models.Signal {
	n := len(w)
	if n < emaMinCandles {
		return nil
	}

	closes := w.Closes()
	emaS := indicator.EMA(closes, emaShortPeriod)
	emaL := indicator.EMA(closes, emaLongPeriod)

	var dir models.Direction
	switch {
	case emaS[n-2] <= emaL[n-2] && emaS[n-1] > emaL[n-1]:
		dir = models.DirectionBuy
	case emaS[n-2] >= emaL[n-2] && emaS[n-1] < emaL[n-1]:
		dir = models.DirectionSell
	default:
		return nil
	}

	// наклон EMA9 за 2 бара, нормированный её значением 2 бара назад;
	// нулевой знаменатель заменяем единицей, чтобы не делить на ноль
	denom := emaS[n-3]
	if denom == 0 {
		denom = 1
	}
	angle := (emaS[n-1] - emaS[n-3]) / denom

	atr := indicator.ATR(w, 14)
	if atr <= 0 {
		return nil
	}
	entry := w[n-1].Close
	stop, targets := atrLadder(entry, atr, dir)

	momentum := models.MomentumMedium
	if math.Abs(angle) > 0.01 {
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
		Confidence: math.Min(0.65+math.Abs(angle)*100, 0.90),
		Momentum:   momentum,
	}
}
