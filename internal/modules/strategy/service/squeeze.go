package service

import (
	"math"

	"signals_bot/internal/indicator"
	"signals_bot/internal/models"
)

const (
	bbPeriod       = 20
	bbMult         = 2.0
	bbHistory      = 50 // распределение bandwidth для порога сжатия
	bbSqueezeQuant = 0.20
	bbMinCandles   = bbPeriod + bbHistory + 1
)

// BBSqueeze — выход из сжатия: ширина полос Боллинджера сжимаемого бара ниже
// 20-го перцентиля по последним 50 барам, закрытие пересекает внешнюю полосу.
type BBSqueeze struct{}

func NewBBSqueeze() *BBSqueeze { return &BBSqueeze{} }

func (s *BBSqueeze) Name() models.StrategyName { return models.StrategyBBSqueeze }

func (s *BBSqueeze) Evaluate(w models.Window, pair, timeframe string) *models.Signal {
	n := len(w)
	if n < bbMinCandles {
		return nil
	}

	closes := w.Closes()
	upper, middle, lower := indicator.Bollinger(closes, bbPeriod, bbMult)

	bandwidth := func(i int) float64 {
		if middle[i] == 0 {
			return 0
		}
		return (upper[i] - lower[i]) / middle[i]
	}

	// сжатие меряем по бару, из которого выходим (n-2): текущий бар уже
	// содержит пробойное движение и раздувает сигму
	history := make([]float64, 0, bbHistory)
	for i := n - 2 - bbHistory; i < n-2; i++ {
		history = append(history, bandwidth(i))
	}
	threshold := indicator.Percentile(history, bbSqueezeQuant)
	bw := bandwidth(n - 2)
	if threshold <= 0 || bw >= threshold {
		return nil
	}

	var dir models.Direction
	switch {
	case closes[n-2] <= upper[n-2] && closes[n-1] > upper[n-1]:
		dir = models.DirectionBuy
	case closes[n-2] >= lower[n-2] && closes[n-1] < lower[n-1]:
		dir = models.DirectionSell
	default:
		return nil
	}

	atr := indicator.ATR(w, 14)
	if atr <= 0 {
		return nil
	}
	entry := closes[n-1]
	stop, targets := atrLadder(entry, atr, dir)

	momentum := models.MomentumMedium
	if bw/threshold < 0.5 {
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
		Confidence: math.Min(0.75+(1-bw/threshold), 0.95),
		Momentum:   momentum,
	}
}
