package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"botFleet/internal/domain"
)

// minSharpeSamples is the smallest event count for which a Sharpe ratio
// is reported; below it the estimate is meaningless and the field stays nil.
const minSharpeSamples = 2

var hundred = decimal.NewFromInt(100)

// ComputeMetrics folds an event history into performance metrics. The fold
// is deterministic and pure: the same multiset of events always produces
// the same counts, win rate and total P&L, regardless of order, because
// sums run over exact decimals rather than accumulated binary floats.
func ComputeMetrics(events []*domain.TradeEvent) domain.PerformanceMetrics {
	metrics := domain.PerformanceMetrics{
		WinRate:         decimal.Zero,
		TotalProfitLoss: decimal.Zero,
	}
	if len(events) == 0 {
		return metrics
	}

	var wins int
	for _, event := range events {
		metrics.TotalTrades++
		if event.ProfitLoss.IsPositive() {
			wins++
		}
		metrics.TotalProfitLoss = metrics.TotalProfitLoss.Add(event.ProfitLoss)
	}

	// Guarded above: TotalTrades >= 1 here, so no division by zero.
	metrics.WinRate = decimal.NewFromInt(int64(wins)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(metrics.TotalTrades)))

	if sharpe, ok := sharpeRatio(events, metrics.TotalProfitLoss); ok {
		metrics.SharpeRatio = &sharpe
	}
	return metrics
}

// sharpeRatio estimates mean/stddev of the per-trade P&L distribution.
// The exact decimal sums are converted to floats only for the final
// square root, so repeated computation cannot drift.
func sharpeRatio(events []*domain.TradeEvent, total decimal.Decimal) (float64, bool) {
	n := len(events)
	if n < minSharpeSamples {
		return 0, false
	}

	mean := total.Div(decimal.NewFromInt(int64(n)))
	sumSquares := decimal.Zero
	for _, event := range events {
		diff := event.ProfitLoss.Sub(mean)
		sumSquares = sumSquares.Add(diff.Mul(diff))
	}
	variance, _ := sumSquares.Div(decimal.NewFromInt(int64(n))).Float64()
	stddev := math.Sqrt(variance)
	if stddev == 0 {
		// A flat distribution has no defined risk-adjusted return.
		return 0, false
	}
	meanF, _ := mean.Float64()
	return meanF / stddev, true
}
