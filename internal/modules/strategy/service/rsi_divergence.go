package service

import (
	"math"

	"signals_bot/internal/indicator"
	"signals_bot/internal/models"
)

const (
	rsiDivMinCandles = 15
	rsiDivLookback   = 10 // среди последних десяти баров ищем два экстремума
	rsiPivotSpan     = 2  // центрированный минимум/максимум по 5 барам
)

// RSIDivergence — классическая дивергенция: цена ставит более низкий минимум,
// RSI — более высокий (зеркально по максимумам для SELL).
type RSIDivergence struct{}

func NewRSIDivergence() *RSIDivergence { return &RSIDivergence{} }

func (s *RSIDivergence) Name() models.StrategyName { return models.StrategyRSIDiv }

func (s *RSIDivergence) Evaluate(w models.Window, pair, timeframe string) *models.Signal {
	n := len(w)
	if n < rsiDivMinCandles {
		return nil
	}

	rsi := indicator.RSI(w.Closes(), 14)
	atr := indicator.ATR(w, 14)
	if atr <= 0 {
		return nil
	}
	entry := w[n-1].Close

	if sig := s.bullish(w, rsi, atr, entry, pair, timeframe); sig != nil {
		return sig
	}
	return s.bearish(w, rsi, atr, entry, pair, timeframe)
}

func (s *RSIDivergence) bullish(w models.Window, rsi []float64, atr, entry float64, pair, timeframe string) *models.Signal {
	n := len(w)
	lows := pivots(w, func(i int) float64 { return w[i].Low }, true)

	var recent []int
	for _, i := range lows {
		if i >= n-rsiDivLookback {
			recent = append(recent, i)
		}
	}
	if len(recent) < 2 {
		return nil
	}
	earlier, later := recent[len(recent)-2], recent[len(recent)-1]

	if !(w[later].Low < w[earlier].Low && rsi[later] > rsi[earlier] && rsi[n-1] > 30) {
		return nil
	}

	deltaRSI := rsi[later] - rsi[earlier]
	_, targets := atrLadder(entry, atr, models.DirectionBuy)

	return &models.Signal{
		Pair:       pair,
		Direction:  models.DirectionBuy,
		Strategy:   s.Name(),
		Timeframe:  timeframe,
		Entry:      entry,
		Stop:       w[later].Low - 1.5*atr, // стоп от экстремума дивергенции
		Targets:    targets,
		Confidence: math.Min(0.70+math.Abs(deltaRSI)/10, 0.85),
		Momentum:   models.MomentumMedium,
	}
}

func (s *RSIDivergence) bearish(w models.Window, rsi []float64, atr, entry float64, pair, timeframe string) *models.Signal {
	n := len(w)
	highs := pivots(w, func(i int) float64 { return w[i].High }, false)

	var recent []int
	for _, i := range highs {
		if i >= n-rsiDivLookback {
			recent = append(recent, i)
		}
	}
	if len(recent) < 2 {
		return nil
	}
	earlier, later := recent[len(recent)-2], recent[len(recent)-1]

	if !(w[later].High > w[earlier].High && rsi[later] < rsi[earlier] && rsi[n-1] < 70) {
		return nil
	}

	deltaRSI := rsi[later] - rsi[earlier]
	_, targets := atrLadder(entry, atr, models.DirectionSell)

	return &models.Signal{
		Pair:       pair,
		Direction:  models.DirectionSell,
		Strategy:   s.Name(),
		Timeframe:  timeframe,
		Entry:      entry,
		Stop:       w[later].High + 1.5*atr,
		Targets:    targets,
		Confidence: math.Min(0.70+math.Abs(deltaRSI)/10, 0.85),
		Momentum:   models.MomentumMedium,
	}
}

// pivots — индексы баров, равных центрированному 5-барному экстремуму.
func pivots(w models.Window, value func(int) float64, min bool) []int {
	var out []int
	for i := rsiPivotSpan; i < len(w)-rsiPivotSpan; i++ {
		best := value(i - rsiPivotSpan)
		for j := i - rsiPivotSpan + 1; j <= i+rsiPivotSpan; j++ {
			v := value(j)
			if (min && v < best) || (!min && v > best) {
				best = v
			}
		}
		if value(i) == best {
			out = append(out, i)
		}
	}
	return out
}
