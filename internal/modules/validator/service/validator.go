package service

import (
	"signals_bot/internal/indicator"
	"signals_bot/internal/models"
)

const (
	minConfidence   = 0.6
	safetyMinWindow = 21

	rsiCrashBuy  = 45.0
	rsiCrashSell = 55.0
)

// Validator — правила допуска и страховочные пере-проверки кандидатов.
// Кандидат не мутируется: возвращается новая запись с выставленными флагами.
type Validator struct{}

func New() *Validator { return &Validator{} }

// Admit возвращает (nil, false) при нарушении базовых правил; иначе копию
// кандидата, возможно с флагами раннего выхода. Окно опционально: без него
// страховочные проверки пропускаются (например, для входящего webhook).
func (v *Validator) Admit(candidate *models.Signal, w models.Window) (*models.Signal, bool) {
	if candidate == nil {
		return nil, false
	}
	if candidate.Confidence < minConfidence || candidate.Confidence > 1.0 {
		return nil, false
	}
	if len(candidate.Targets) != 3 {
		return nil, false
	}
	if candidate.Direction != models.DirectionBuy && candidate.Direction != models.DirectionSell {
		return nil, false
	}
	if candidate.Entry <= 0 || candidate.Stop <= 0 {
		return nil, false
	}
	for _, target := range candidate.Targets {
		if target <= 0 {
			return nil, false
		}
	}

	sig := *candidate
	sig.Targets = append([]float64(nil), candidate.Targets...)

	if len(w) >= safetyMinWindow {
		v.safetyChecks(&sig, w)
	}
	return &sig, true
}

// safetyChecks — неэксклюзивные проверки; каждая переписывает exit_reason,
// побеждает последняя сработавшая.
func (v *Validator) safetyChecks(sig *models.Signal, w models.Window) {
	n := len(w)
	closes := w.Closes()

	// разворот тренда: EMA9/EMA21 против направления сигнала
	emaS := indicator.EMA(closes, 9)
	emaL := indicator.EMA(closes, 21)
	if (sig.Direction == models.DirectionBuy && emaS[n-1] < emaL[n-1]) ||
		(sig.Direction == models.DirectionSell && emaS[n-1] > emaL[n-1]) {
		sig.StrategyInvalidated = true
		sig.EarlyExit = true
		sig.ExitReason = models.ExitTrendReversal
	}

	// обвал моментума по RSI(14)
	rsi := indicator.RSI(closes, 14)
	if (sig.Direction == models.DirectionBuy && rsi[n-1] < rsiCrashBuy) ||
		(sig.Direction == models.DirectionSell && rsi[n-1] > rsiCrashSell) {
		low := string(models.MomentumLow)
		sig.MomentumChange = &low
		sig.EarlyExit = true
		sig.ExitReason = models.ExitMomentumCrash
	}

	// отбой от VWAP — только для VWAP-сигналов
	if sig.Strategy == models.StrategyVWAPBreakout {
		vwap := indicator.VWAP(w, 20)
		last := w.Last().Close
		if (sig.Direction == models.DirectionBuy && last < vwap) ||
			(sig.Direction == models.DirectionSell && last > vwap) {
			sig.StrategyInvalidated = true
			sig.EarlyExit = true
			sig.ExitReason = models.ExitVWAPRejection
		}
	}
}
