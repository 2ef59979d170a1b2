// Package indicator — чистые функции над окном свечей: EMA, RSI, ATR,
// скользящий VWAP, полосы Боллинджера. Достаточность длины окна проверяет
// вызывающая стратегия, здесь только деградация до нейтральных значений.
package indicator

import (
	"math"
	"sort"

	"signals_bot/internal/models"
)

// EMA возвращает серию той же длины, seed — первое значение.
func EMA(values []float64, period int) []float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + k*(values[i]-out[i-1])
	}
	return out
}

// RSI — сглаживание Уайлдера, seed — SMA первых period дельт.
// До прогрева значения нейтральные (50).
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	for i := range out {
		out[i] = 50
	}
	if period <= 0 || n < period+1 {
		return out
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// ATR — последнее значение Average True Range за period.
func ATR(w models.Window, period int) float64 {
	if period <= 0 || len(w) < period+1 {
		return 0
	}
	trs := make([]float64, 0, len(w)-1)
	for i := 1; i < len(w); i++ {
		h, l, pc := w[i].High, w[i].Low, w[i-1].Close
		tr := math.Max(h-l, math.Max(math.Abs(h-pc), math.Abs(l-pc)))
		trs = append(trs, tr)
	}
	atr := 0.0
	for _, tr := range trs[:period] {
		atr += tr
	}
	atr /= float64(period)
	for _, tr := range trs[period:] {
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return atr
}

// VWAPAt — скользящий VWAP по последним lookback свечам, заканчивающимся на idx.
func VWAPAt(w models.Window, idx, lookback int) float64 {
	if len(w) == 0 || idx < 0 || idx >= len(w) {
		return 0
	}
	start := idx - lookback + 1
	if start < 0 {
		start = 0
	}
	var pv, vol float64
	for i := start; i <= idx; i++ {
		typical := (w[i].High + w[i].Low + w[i].Close) / 3
		pv += typical * w[i].Volume
		vol += w[i].Volume
	}
	if vol == 0 {
		return (w[idx].High + w[idx].Low + w[idx].Close) / 3
	}
	return pv / vol
}

// VWAP по последним lookback свечам окна.
func VWAP(w models.Window, lookback int) float64 {
	return VWAPAt(w, len(w)-1, lookback)
}

// Bollinger возвращает серии upper/middle/lower; значения определены с индекса
// period-1, раньше — нули. Сигма популяционная, как в ta.
func Bollinger(closes []float64, period int, mult float64) (upper, middle, lower []float64) {
	n := len(closes)
	upper = make([]float64, n)
	middle = make([]float64, n)
	lower = make([]float64, n)
	if period <= 0 || n < period {
		return
	}
	for i := period - 1; i < n; i++ {
		win := closes[i-period+1 : i+1]
		var sum float64
		for _, v := range win {
			sum += v
		}
		mean := sum / float64(period)
		var variance float64
		for _, v := range win {
			variance += (v - mean) * (v - mean)
		}
		sigma := math.Sqrt(variance / float64(period))
		middle[i] = mean
		upper[i] = mean + mult*sigma
		lower[i] = mean - mult*sigma
	}
	return
}

// SMA — среднее последних period значений (всех, если серия короче).
func SMA(values []float64, period int) float64 {
	if len(values) == 0 || period <= 0 {
		return 0
	}
	start := len(values) - period
	if start < 0 {
		start = 0
	}
	var sum float64
	for _, v := range values[start:] {
		sum += v
	}
	return sum / float64(len(values)-start)
}

// Percentile — q∈[0,1], линейная интерполяция между соседними рангами.
func Percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
