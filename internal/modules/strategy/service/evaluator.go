package service

import (
	"signals_bot/internal/models"
)

// Evaluator — чистая функция окна: ноль или один кандидат за вызов.
// Кандидат ещё не допущен — допуском занимается validator.
type Evaluator interface {
	Name() models.StrategyName
	Evaluate(w models.Window, pair, timeframe string) *models.Signal
}

// All — полный набор детекторов в фиксированном порядке.
func All() []Evaluator {
	return []Evaluator{
		NewVWAPBreakout(),
		NewEMACross(),
		NewRSIDivergence(),
		NewSRBreak(),
		NewBBSqueeze(),
	}
}

// EvaluateAll прогоняет все детекторы по копии одного окна; за один цикл по
// инструменту может сработать ноль, один или несколько.
func EvaluateAll(evals []Evaluator, w models.Window, pair, timeframe string) []*models.Signal {
	var out []*models.Signal
	for _, e := range evals {
		if sig := e.Evaluate(w.Copy(), pair, timeframe); sig != nil {
			out = append(out, sig)
		}
	}
	return out
}

// atrLadder — стоп 1.5×ATR против позиции, цели 1/1.5/2×ATR по позиции.
func atrLadder(entry, atr float64, dir models.Direction) (stop float64, targets []float64) {
	if dir == models.DirectionBuy {
		stop = entry - 1.5*atr
		targets = []float64{entry + 1*atr, entry + 1.5*atr, entry + 2*atr}
		return
	}
	stop = entry + 1.5*atr
	targets = []float64{entry - 1*atr, entry - 1.5*atr, entry - 2*atr}
	return
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
