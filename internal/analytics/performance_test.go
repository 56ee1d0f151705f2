package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botFleet/internal/domain"
)

func event(pnl string) *domain.TradeEvent {
	return &domain.TradeEvent{
		BotID:            "bot-1",
		Timestamp:        time.Now(),
		Side:             domain.SideBuy,
		Amount:           decimal.NewFromInt(1),
		PriceAtExecution: decimal.NewFromInt(1000),
		ProfitLoss:       decimal.RequireFromString(pnl),
		TxReference:      "0xdeadbeef",
	}
}

func TestComputeMetrics_Empty(t *testing.T) {
	metrics := ComputeMetrics(nil)

	assert.Equal(t, 0, metrics.TotalTrades)
	assert.True(t, metrics.WinRate.IsZero())
	assert.True(t, metrics.TotalProfitLoss.IsZero())
	assert.Nil(t, metrics.SharpeRatio)
}

func TestComputeMetrics_Basic(t *testing.T) {
	events := []*domain.TradeEvent{
		event("10.00"),
		event("-4.50"),
		event("2.50"),
		event("0"),
	}

	metrics := ComputeMetrics(events)

	assert.Equal(t, 4, metrics.TotalTrades)
	assert.Equal(t, "8", metrics.TotalProfitLoss.String())
	// 2 wins of 4 trades; a zero P&L trade is not a win.
	assert.Equal(t, "50", metrics.WinRate.String())
	require.NotNil(t, metrics.SharpeRatio)
}

func TestComputeMetrics_OrderIndependent(t *testing.T) {
	forward := []*domain.TradeEvent{event("1.1"), event("-2.2"), event("3.3"), event("0.001")}
	reversed := []*domain.TradeEvent{event("0.001"), event("3.3"), event("-2.2"), event("1.1")}

	a := ComputeMetrics(forward)
	b := ComputeMetrics(reversed)

	assert.Equal(t, a.TotalTrades, b.TotalTrades)
	assert.True(t, a.TotalProfitLoss.Equal(b.TotalProfitLoss))
	assert.True(t, a.WinRate.Equal(b.WinRate))
}

func TestComputeMetrics_Idempotent(t *testing.T) {
	events := []*domain.TradeEvent{event("0.1"), event("0.2"), event("-0.3")}

	first := ComputeMetrics(events)
	second := ComputeMetrics(events)

	assert.Equal(t, first.TotalTrades, second.TotalTrades)
	assert.True(t, first.TotalProfitLoss.Equal(second.TotalProfitLoss))
	assert.True(t, first.WinRate.Equal(second.WinRate))
	require.NotNil(t, first.SharpeRatio)
	require.NotNil(t, second.SharpeRatio)
	assert.Equal(t, *first.SharpeRatio, *second.SharpeRatio)
}

func TestComputeMetrics_SharpeThreshold(t *testing.T) {
	metrics := ComputeMetrics([]*domain.TradeEvent{event("5")})
	assert.Equal(t, 1, metrics.TotalTrades)
	assert.Nil(t, metrics.SharpeRatio, "one sample is below the threshold")

	metrics = ComputeMetrics([]*domain.TradeEvent{event("5"), event("-3")})
	assert.NotNil(t, metrics.SharpeRatio)
}

func TestComputeMetrics_FlatDistributionHasNoSharpe(t *testing.T) {
	metrics := ComputeMetrics([]*domain.TradeEvent{event("2"), event("2"), event("2")})
	assert.Nil(t, metrics.SharpeRatio)
	assert.Equal(t, "100", metrics.WinRate.String())
}

func TestComputeMetrics_DecimalSummationIsExact(t *testing.T) {
	// 0.1 + 0.2 style sums must not pick up binary float error.
	events := make([]*domain.TradeEvent, 0, 10)
	for i := 0; i < 10; i++ {
		events = append(events, event("0.1"))
	}

	metrics := ComputeMetrics(events)
	assert.Equal(t, "1", metrics.TotalProfitLoss.String())
}
