package service

import (
	"math"

	"signals_bot/internal/indicator"
	"signals_bot/internal/models"
)

const (
	srLevelLookback = 8    // rolling-экстремум уровня
	srTouchLookback = 15   // в скольких последних барах считаем касания
	srTouchBand     = 0.005 // 0.5% от уровня — это касание
	srMinTouches    = 2
	srVolumeMult    = 1.2
	srMinCandles    = 24
)

// SRBreak — пробой подтверждённого уровня: rolling 8-барный high/low,
// который рынок трогал минимум дважды за 15 баров, пробит закрытием
// на объёме выше 1.2× среднего.
type SRBreak struct{}

func NewSRBreak() *SRBreak { return &SRBreak{} }

func (s *SRBreak) Name() models.StrategyName { return models.StrategySRBreak }

func (s *SRBreak) Evaluate(w models.Window, pair, timeframe string) *models.Signal {
	n := len(w)
	if n < srMinCandles {
		return nil
	}

	cur, prev := w[n-1], w[n-2]

	avgVol := indicator.SMA(w.Volumes(), 20)
	if avgVol <= 0 {
		return nil
	}
	volRatio := cur.Volume / avgVol

	// уровень строится по барам до текущего, иначе пробой закрытием недостижим
	resistance := rollingHigh(w, n-2, srLevelLookback)
	support := rollingLow(w, n-2, srLevelLookback)

	atr := indicator.ATR(w, 14)
	if atr <= 0 {
		return nil
	}
	entry := cur.Close

	if touches(w, resistance, func(c models.Candle) float64 { return c.High }) >= srMinTouches &&
		cur.Close > resistance && prev.Close <= resistance && volRatio > srVolumeMult {
		return s.signal(pair, timeframe, models.DirectionBuy, entry, atr, resistance, volRatio, w)
	}

	if touches(w, support, func(c models.Candle) float64 { return c.Low }) >= srMinTouches &&
		cur.Close < support && prev.Close >= support && volRatio > srVolumeMult {
		return s.signal(pair, timeframe, models.DirectionSell, entry, atr, support, volRatio, w)
	}
	return nil
}

func (s *SRBreak) signal(pair, timeframe string, dir models.Direction, entry, atr, level, volRatio float64, w models.Window) *models.Signal {
	stop, targets := atrLadder(entry, atr, dir)

	var touchSide func(models.Candle) float64
	if dir == models.DirectionBuy {
		touchSide = func(c models.Candle) float64 { return c.High }
	} else {
		touchSide = func(c models.Candle) float64 { return c.Low }
	}
	cnt := touches(w, level, touchSide)

	momentum := models.MomentumMedium
	if volRatio > 1.5 {
		momentum = models.MomentumHigh
	}

	return &models.Signal{
		Pair:      pair,
		Direction: dir,
		Strategy:  s.Name(),
		Timeframe: timeframe,
		Entry:     entry,
		Stop:      stop,
		Targets:   targets,
		// больше подтверждённых касаний — надёжнее уровень
		Confidence: math.Min(0.70+float64(cnt-srMinTouches)*0.05, 0.85),
		Momentum:   momentum,
	}
}

func touches(w models.Window, level float64, side func(models.Candle) float64) int {
	if level <= 0 {
		return 0
	}
	n := len(w)
	start := n - srTouchLookback
	if start < 0 {
		start = 0
	}
	cnt := 0
	for _, c := range w[start:] {
		if math.Abs(side(c)-level)/level <= srTouchBand {
			cnt++
		}
	}
	return cnt
}

func rollingHigh(w models.Window, end, lookback int) float64 {
	start := end - lookback + 1
	if start < 0 {
		start = 0
	}
	best := w[start].High
	for _, c := range w[start : end+1] {
		if c.High > best {
			best = c.High
		}
	}
	return best
}

func rollingLow(w models.Window, end, lookback int) float64 {
	start := end - lookback + 1
	if start < 0 {
		start = 0
	}
	best := w[start].Low
	for _, c := range w[start : end+1] {
		if c.Low < best {
			best = c.Low
		}
	}
	return best
}
