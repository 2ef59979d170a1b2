package notify

import (
	"fmt"
	"strconv"
	"strings"

	"signals_bot/internal/models"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatAlert собирает текст алерта о новом сигнале.
func FormatAlert(sig models.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] [%s]\n", sig.Pair, sig.Direction, sig.Strategy)
	fmt.Fprintf(&b, "🕒 Timeframe: %s\n", sig.Timeframe)
	fmt.Fprintf(&b, "🎯 Entry: %s\n", num(sig.Entry))
	fmt.Fprintf(&b, "🛑 Stop: %s\n", num(sig.Stop))
	fmt.Fprintf(&b, "📈 Targets: %s → %s → %s\n", num(sig.Targets[0]), num(sig.Targets[1]), num(sig.Targets[2]))
	fmt.Fprintf(&b, "🧠 Confidence: %d%%\n", int(sig.Confidence*100))
	fmt.Fprintf(&b, "⚡ Momentum: %s", sig.Momentum)

	if sig.EarlyExit {
		b.WriteString("\n⚠️ Early Exit Alert")
	}
	if sig.MomentumChange != nil {
		fmt.Fprintf(&b, "\n⚡ Momentum Change: %s", *sig.MomentumChange)
	}
	if sig.StrategyInvalidated {
		b.WriteString("\n❌ Strategy Invalidation Notice")
	}
	return b.String()
}

// FormatExit собирает текст алерта о закрытии сигнала.
func FormatExit(sig models.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚪 EXIT %s [%s] [%s] [%s]\n", sig.SerialLabel(), sig.Pair, sig.Direction, sig.Strategy)
	fmt.Fprintf(&b, "🕒 Timeframe: %s\n", sig.Timeframe)
	fmt.Fprintf(&b, "🎯 Entry: %s / 🛑 Stop: %s\n", num(sig.Entry), num(sig.Stop))
	fmt.Fprintf(&b, "📌 Reason: %s", sig.ExitReason)
	return b.String()
}
