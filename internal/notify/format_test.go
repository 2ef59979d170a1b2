package notify

import (
	"testing"

	"signals_bot/internal/models"

	"github.com/stretchr/testify/require"
)

func baseSignal() models.Signal {
	return models.Signal{
		Serial:     7,
		Pair:       "BTC/USDT",
		Direction:  models.DirectionBuy,
		Strategy:   models.StrategyVWAPBreakout,
		Timeframe:  "5m",
		Entry:      110,
		Stop:       100,
		Targets:    []float64{120, 130, 140},
		Confidence: 0.85,
		Momentum:   models.MomentumHigh,
	}
}

func TestFormatAlertClean(t *testing.T) {
	text := FormatAlert(baseSignal())

	require.Equal(t,
		"[BTC/USDT] [BUY] [VWAP Breakout]\n"+
			"🕒 Timeframe: 5m\n"+
			"🎯 Entry: 110\n"+
			"🛑 Stop: 100\n"+
			"📈 Targets: 120 → 130 → 140\n"+
			"🧠 Confidence: 85%\n"+
			"⚡ Momentum: HIGH",
		text)
}

func TestFormatAlertWithFlags(t *testing.T) {
	sig := baseSignal()
	sig.EarlyExit = true
	sig.StrategyInvalidated = true
	low := string(models.MomentumLow)
	sig.MomentumChange = &low

	text := FormatAlert(sig)
	require.Contains(t, text, "⚠️ Early Exit Alert")
	require.Contains(t, text, "⚡ Momentum Change: LOW")
	require.Contains(t, text, "❌ Strategy Invalidation Notice")
}

func TestFormatExit(t *testing.T) {
	sig := baseSignal()
	sig.ExitReason = models.ExitStopLossHit

	text := FormatExit(sig)
	require.Contains(t, text, "EXIT #0007 [BTC/USDT] [BUY] [VWAP Breakout]")
	require.Contains(t, text, "Entry: 110 / 🛑 Stop: 100")
	require.Contains(t, text, "Reason: STOP_LOSS_HIT")
}
