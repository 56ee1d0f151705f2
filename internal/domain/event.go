package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeEvent is an immutable record of one executed trade. BotID is a
// foreign reference, not ownership: the configuration may be archived or
// deleted independently of the event history.
type TradeEvent struct {
	ID               string          `json:"id"`
	BotID            string          `json:"botId"`
	Timestamp        time.Time       `json:"timestamp"`
	Side             TradeSide       `json:"side"`
	Amount           decimal.Decimal `json:"amount"`           // traded quantity, never negative
	PriceAtExecution decimal.Decimal `json:"priceAtExecution"` // strictly positive
	ProfitLoss       decimal.Decimal `json:"profitLoss"`       // signed
	TxReference      string          `json:"txReference"`
}

// PerformanceMetrics aggregates a bot's trade history over a window.
// It is always recomputed from the event sequence, never hand-mutated.
type PerformanceMetrics struct {
	TotalTrades     int             `json:"totalTrades"`
	WinRate         decimal.Decimal `json:"winRate"` // percentage, 0..100
	TotalProfitLoss decimal.Decimal `json:"totalProfitLoss"`
	// SharpeRatio is nil until enough samples exist to estimate the
	// profit/loss distribution.
	SharpeRatio *float64 `json:"sharpeRatio"`
}
