package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"signals_bot/internal/models"
)

// testWindow строит окно по закрытиям: open=close, high/low = close±0.5.
func testWindow(closes []float64, volumes []float64) models.Window {
	w := make(models.Window, len(closes))
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		vol := 100.0
		if volumes != nil {
			vol = volumes[i]
		}
		w[i] = models.Candle{
			Timestamp: ts.Add(time.Duration(i) * 3 * time.Minute).UnixMilli(),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    vol,
		}
	}
	return w
}

func flatCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func requireLadder(t *testing.T, sig *models.Signal) {
	t.Helper()
	require.Len(t, sig.Targets, 3)
	require.Greater(t, sig.Entry, 0.0)
	require.Greater(t, sig.Stop, 0.0)
	if sig.Direction == models.DirectionBuy {
		require.Less(t, sig.Stop, sig.Entry)
		require.Less(t, sig.Targets[0], sig.Targets[1])
		require.Less(t, sig.Targets[1], sig.Targets[2])
	} else {
		require.Greater(t, sig.Stop, sig.Entry)
		require.Greater(t, sig.Targets[0], sig.Targets[1])
		require.Greater(t, sig.Targets[1], sig.Targets[2])
	}
}

func TestVWAPBreakoutBullish(t *testing.T) {
	closes := flatCloses(25, 100)
	closes[23] = 99  // предыдущее закрытие ниже своего VWAP
	closes[24] = 105 // пробой вверх
	volumes := make([]float64, 25)
	for i := range volumes {
		volumes[i] = 100
	}
	volumes[24] = 300 // объёмное подтверждение

	sig := NewVWAPBreakout().Evaluate(testWindow(closes, volumes), "BTC/USDT", "3m")
	require.NotNil(t, sig)
	require.Equal(t, models.DirectionBuy, sig.Direction)
	require.Equal(t, models.StrategyVWAPBreakout, sig.Strategy)
	require.Equal(t, models.MomentumHigh, sig.Momentum) // volRatio > 2
	require.InDelta(t, 0.95, sig.Confidence, 1e-9)      // формула упирается в кэп
	require.InDelta(t, 105, sig.Entry, 1e-9)
	requireLadder(t, sig)
}

func TestVWAPBreakoutNeedsVolume(t *testing.T) {
	closes := flatCloses(25, 100)
	closes[23] = 99
	closes[24] = 105
	// объём обычный — сигнала нет
	sig := NewVWAPBreakout().Evaluate(testWindow(closes, nil), "BTC/USDT", "3m")
	require.Nil(t, sig)
}

func TestVWAPBreakoutTooShort(t *testing.T) {
	sig := NewVWAPBreakout().Evaluate(testWindow(flatCloses(10, 100), nil), "BTC/USDT", "3m")
	require.Nil(t, sig)
}

func TestEMACrossBullish(t *testing.T) {
	closes := flatCloses(30, 100)
	closes[29] = 107 // резкий бар двигает EMA9 сильнее EMA21

	sig := NewEMACross().Evaluate(testWindow(closes, nil), "ETH/USDT", "5m")
	require.NotNil(t, sig)
	require.Equal(t, models.DirectionBuy, sig.Direction)
	require.Equal(t, models.StrategyEMACross, sig.Strategy)
	// angle = (101.4-100)/100 = 0.014 → уверенность в кэпе, momentum HIGH
	require.InDelta(t, 0.90, sig.Confidence, 1e-9)
	require.Equal(t, models.MomentumHigh, sig.Momentum)
	requireLadder(t, sig)
}

func TestEMACrossBearish(t *testing.T) {
	closes := flatCloses(30, 100)
	closes[29] = 93

	sig := NewEMACross().Evaluate(testWindow(closes, nil), "ETH/USDT", "5m")
	require.NotNil(t, sig)
	require.Equal(t, models.DirectionSell, sig.Direction)
	requireLadder(t, sig)
}

func TestEMACrossFlatNoSignal(t *testing.T) {
	sig := NewEMACross().Evaluate(testWindow(flatCloses(30, 100), nil), "ETH/USDT", "5m")
	require.Nil(t, sig)
}

func TestRSIDivergenceBullish(t *testing.T) {
	// 20 баров равномерного падения, паника до 80, отскок, пологое новое дно
	// 79.4 (цена ниже, RSI выше) и разворот вверх
	closes := make([]float64, 30)
	for i := 0; i <= 19; i++ {
		closes[i] = 110 - 1.5*float64(i)
	}
	closes[19] = 81.5
	closes[20] = 80 // первый минимум
	closes[21] = 85
	closes[22] = 83.6
	closes[23] = 82.2
	closes[24] = 80.8
	closes[25] = 79.4 // второй минимум: ниже по цене
	closes[26] = 82.4
	closes[27] = 85.4
	closes[28] = 87.4
	closes[29] = 89.4

	sig := NewRSIDivergence().Evaluate(testWindow(closes, nil), "SOL/USDT", "15m")
	require.NotNil(t, sig)
	require.Equal(t, models.DirectionBuy, sig.Direction)
	require.Equal(t, models.StrategyRSIDiv, sig.Strategy)
	require.InDelta(t, 0.85, sig.Confidence, 1e-9) // ΔRSI большой, кэп
	require.InDelta(t, 89.4, sig.Entry, 1e-9)
	require.Less(t, sig.Stop, 78.9+1e-9) // стоп ниже экстремума дивергенции
	require.Len(t, sig.Targets, 3)
}

func TestRSIDivergenceTrendingNoSignal(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	sig := NewRSIDivergence().Evaluate(testWindow(closes, nil), "SOL/USDT", "15m")
	require.Nil(t, sig)
}

func TestSRBreakResistanceBullish(t *testing.T) {
	closes := flatCloses(25, 100) // хаи 100.5 — уровень трогается каждым баром
	closes[24] = 101.2
	volumes := make([]float64, 25)
	for i := range volumes {
		volumes[i] = 100
	}
	volumes[24] = 250

	sig := NewSRBreak().Evaluate(testWindow(closes, volumes), "BTC/USDT", "3m")
	require.NotNil(t, sig)
	require.Equal(t, models.DirectionBuy, sig.Direction)
	require.Equal(t, models.StrategySRBreak, sig.Strategy)
	require.Equal(t, models.MomentumHigh, sig.Momentum)
	require.InDelta(t, 0.85, sig.Confidence, 1e-9) // касаний много, кэп
	requireLadder(t, sig)
}

func TestSRBreakSupportBearish(t *testing.T) {
	closes := flatCloses(25, 100)
	closes[24] = 98.8
	volumes := make([]float64, 25)
	for i := range volumes {
		volumes[i] = 100
	}
	volumes[24] = 250

	sig := NewSRBreak().Evaluate(testWindow(closes, volumes), "BTC/USDT", "3m")
	require.NotNil(t, sig)
	require.Equal(t, models.DirectionSell, sig.Direction)
	requireLadder(t, sig)
}

func TestSRBreakNeedsVolume(t *testing.T) {
	closes := flatCloses(25, 100)
	closes[24] = 101.2
	sig := NewSRBreak().Evaluate(testWindow(closes, nil), "BTC/USDT", "3m")
	require.Nil(t, sig)
}

func squeezeCloses(breakout bool) []float64 {
	closes := make([]float64, 90)
	for i := 0; i < 60; i++ {
		amp := 4.0
		if i%2 == 1 {
			amp = -4.0
		}
		closes[i] = 100 + amp
	}
	// затухающая амплитуда — полосы сжимаются
	for i := 60; i < 89; i++ {
		amp := 1.2 - 0.04*float64(i-60)
		if i%2 == 1 {
			amp = -amp
		}
		closes[i] = 100 + amp
	}
	if breakout {
		closes[89] = 103
	} else {
		closes[89] = 100.05
	}
	return closes
}

func TestBBSqueezeBreakoutBullish(t *testing.T) {
	sig := NewBBSqueeze().Evaluate(testWindow(squeezeCloses(true), nil), "BTC/USDT", "15m")
	require.NotNil(t, sig)
	require.Equal(t, models.DirectionBuy, sig.Direction)
	require.Equal(t, models.StrategyBBSqueeze, sig.Strategy)
	require.GreaterOrEqual(t, sig.Confidence, 0.75)
	require.LessOrEqual(t, sig.Confidence, 0.95)
	requireLadder(t, sig)
}

func TestBBSqueezeNoBreakoutNoSignal(t *testing.T) {
	sig := NewBBSqueeze().Evaluate(testWindow(squeezeCloses(false), nil), "BTC/USDT", "15m")
	require.Nil(t, sig)
}

func TestEvaluateAllSingleCross(t *testing.T) {
	closes := flatCloses(30, 100)
	closes[29] = 107

	sigs := EvaluateAll(All(), testWindow(closes, nil), "ETH/USDT", "5m")
	require.Len(t, sigs, 1)
	require.Equal(t, models.StrategyEMACross, sigs[0].Strategy)
}
