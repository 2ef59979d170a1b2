package models

import (
	"fmt"
	"time"
)

// Direction — "BUY"/"SELL".
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

type StrategyName string

const (
	StrategyVWAPBreakout StrategyName = "VWAP Breakout"
	StrategyEMACross     StrategyName = "EMA Cross"
	StrategyRSIDiv       StrategyName = "RSI Divergence"
	StrategySRBreak      StrategyName = "Support/Resistance Break"
	StrategyBBSqueeze    StrategyName = "Bollinger Band Squeeze"
)

type MomentumLevel string

const (
	MomentumLow    MomentumLevel = "LOW"
	MomentumMedium MomentumLevel = "MEDIUM"
	MomentumHigh   MomentumLevel = "HIGH"
)

// Причины выхода — фиксированная таксономия, участвует в payload как есть.
const (
	ExitTrendReversal       = "TREND_REVERSAL"
	ExitMomentumCrash       = "MOMENTUM_CRASH"
	ExitVWAPRejection       = "VWAP_REJECTION"
	ExitStopLossHit         = "STOP_LOSS_HIT"
	ExitStrategyInvalidated = "STRATEGY_INVALIDATED"
	ExitEarlyExitTriggered  = "EARLY_EXIT_TRIGGERED"
	ExitEarlyProfitBooking  = "EARLY_PROFIT_BOOKING"
	ExitCostToCost          = "COST_TO_COST_EXIT"
)

// Fingerprint идентифицирует "ту же торговую идею" для дедупликации.
type Fingerprint struct {
	Pair      string
	Strategy  StrategyName
	Direction Direction
	Timeframe string
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", f.Pair, f.Strategy, f.Direction, f.Timeframe)
}

// Signal — центральная сущность: кандидат от стратегии, после валидации и
// записи в стор получает ID, Serial, CreatedAt и Active=true.
type Signal struct {
	ID     string `json:"id,omitempty"`
	Serial int64  `json:"serial,omitempty"`

	Pair      string       `json:"pair"`
	Direction Direction    `json:"direction"`
	Strategy  StrategyName `json:"strategy"`
	Timeframe string       `json:"timeframe"`

	Entry      float64       `json:"entry"`
	Stop       float64       `json:"stop"`
	Targets    []float64     `json:"targets"`
	Confidence float64       `json:"confidence"`
	Momentum   MomentumLevel `json:"momentum"`

	Active              bool    `json:"active"`
	EarlyExit           bool    `json:"early_exit"`
	StrategyInvalidated bool    `json:"strategy_invalidated"`
	MomentumChange      *string `json:"momentum_change,omitempty"`
	ExitReason          string  `json:"exit_reason,omitempty"`

	CreatedAt time.Time `json:"timestamp"`
}

func (s *Signal) Fingerprint() Fingerprint {
	return Fingerprint{
		Pair:      s.Pair,
		Strategy:  s.Strategy,
		Direction: s.Direction,
		Timeframe: s.Timeframe,
	}
}

// SerialLabel — человекочитаемый порядковый номер для алертов, "#0042".
func (s *Signal) SerialLabel() string {
	return fmt.Sprintf("#%04d", s.Serial)
}
