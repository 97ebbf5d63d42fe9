package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pnlTrade(pnl float64) Trade {
	return Trade{PnlUsd: decimal.NewFromFloat(pnl)}
}

func equityCurve(values ...float64) []EquityPoint {
	curve := make([]EquityPoint, len(values))
	for i, v := range values {
		curve[i] = EquityPoint{Timestamp: int64(i) * 3_600_000, Equity: decimal.NewFromFloat(v)}
	}
	return curve
}

func TestSummarize(t *testing.T) {
	start := decimal.NewFromInt(10000)
	trades := []Trade{pnlTrade(500), pnlTrade(-200), pnlTrade(300)}
	curve := equityCurve(10000, 10500, 10300, 10600)

	s := Summarize(start, trades, curve)

	assert.Equal(t, "10600", s.FinalEquity.String())
	assert.Equal(t, "600", s.NetPnlUsd.String())
	assert.Equal(t, "6", s.TotalReturnPct.String())
	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 66.6667, s.WinRatePct.InexactFloat64(), 0.001)
	assert.Equal(t, "800", s.GrossProfit.String())
	assert.Equal(t, "200", s.GrossLoss.String())
	assert.Equal(t, "4", s.ProfitFactor.String())
	assert.Equal(t, "400", s.AvgWinUsd.String())
	assert.Equal(t, "200", s.AvgLossUsd.String())
	// Peak 10500 down to 10300.
	assert.InDelta(t, 1.9048, s.MaxDrawdownPct.InexactFloat64(), 0.001)
}

func TestSummarizeBreakEvenTrade(t *testing.T) {
	start := decimal.NewFromInt(10000)
	trades := []Trade{pnlTrade(500), pnlTrade(0), pnlTrade(-200)}
	curve := equityCurve(10000, 10500, 10500, 10300)

	s := Summarize(start, trades, curve)

	// A break-even trade counts toward the total but is neither a win
	// nor a loss, and contributes nothing to either gross figure.
	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, "500", s.GrossProfit.String())
	assert.Equal(t, "200", s.GrossLoss.String())
	assert.InDelta(t, 33.3333, s.WinRatePct.InexactFloat64(), 0.001)
	assert.Equal(t, "500", s.AvgWinUsd.String())
	assert.Equal(t, "200", s.AvgLossUsd.String())
}

func TestSummarizeNoTrades(t *testing.T) {
	s := Summarize(decimal.NewFromInt(10000), nil, nil)
	assert.Equal(t, "10000", s.FinalEquity.String())
	assert.True(t, s.NetPnlUsd.IsZero())
	assert.Equal(t, 0, s.TotalTrades)
	assert.True(t, s.ProfitFactor.IsZero())
	assert.Zero(t, s.SharpeRatio)
}

func TestProfitFactorSentinel(t *testing.T) {
	// All winners report the cap, not infinity.
	assert.True(t, profitFactor(decimal.NewFromInt(100), decimal.Zero).Equal(ProfitFactorCap))
	// An absurd but finite ratio is capped too.
	pf := profitFactor(decimal.NewFromInt(1_000_000), decimal.NewFromFloat(0.01))
	assert.True(t, pf.Equal(ProfitFactorCap))
	// No trades at all reads zero.
	assert.True(t, profitFactor(decimal.Zero, decimal.Zero).IsZero())
}

func TestMaxDrawdown(t *testing.T) {
	// Monotonic rise never draws down.
	assert.True(t, maxDrawdown(equityCurve(100, 110, 120)).IsZero())

	// 120 -> 90 is the worst excursion.
	dd := maxDrawdown(equityCurve(100, 120, 90, 110, 105))
	assert.InDelta(t, 0.25, dd.InexactFloat64(), 1e-9)

	assert.True(t, maxDrawdown(nil).IsZero())
}

func TestSharpe(t *testing.T) {
	// Constant equity has zero variance, Sharpe reads zero.
	assert.Zero(t, sharpe(equityCurve(100, 100, 100, 100)))
	// Too short a curve reads zero.
	assert.Zero(t, sharpe(equityCurve(100, 110)))
	// A rising-but-noisy curve has a positive ratio.
	assert.Greater(t, sharpe(equityCurve(100, 102, 101, 104, 103, 106)), 0.0)
}

func TestCombine(t *testing.T) {
	r1 := &Result{Summary: Summary{
		StartingCapital: decimal.NewFromInt(10000),
		FinalEquity:     decimal.NewFromInt(11000),
		TotalTrades:     4,
		Wins:            3,
		Losses:          1,
		GrossProfit:     decimal.NewFromInt(1500),
		GrossLoss:       decimal.NewFromInt(500),
		MaxDrawdownPct:  decimal.NewFromInt(5),
		SharpeRatio:     1.2,
	}}
	r2 := &Result{Summary: Summary{
		StartingCapital: decimal.NewFromInt(10000),
		FinalEquity:     decimal.NewFromInt(9500),
		TotalTrades:     2,
		Wins:            1,
		Losses:          1,
		GrossProfit:     decimal.NewFromInt(200),
		GrossLoss:       decimal.NewFromInt(700),
		MaxDrawdownPct:  decimal.NewFromInt(12),
		SharpeRatio:     -0.4,
	}}

	c := Combine([]*Result{r1, r2})
	assert.Equal(t, "20000", c.StartingCapital.String())
	assert.Equal(t, "20500", c.FinalEquity.String())
	assert.Equal(t, "500", c.NetPnlUsd.String())
	assert.Equal(t, "2.5", c.TotalReturnPct.String())
	assert.Equal(t, 6, c.TotalTrades)
	assert.Equal(t, 4, c.Wins)
	require.False(t, c.WinRatePct.IsZero())
	assert.InDelta(t, 66.6667, c.WinRatePct.InexactFloat64(), 0.001)
	// Worst single-asset drawdown, not an average.
	assert.Equal(t, "12", c.MaxDrawdownPct.String())
	// Pooled gross profit and loss: 1700 / 1200.
	assert.InDelta(t, 1.41667, c.ProfitFactor.InexactFloat64(), 0.001)
	assert.InDelta(t, 0.4, c.AvgSharpe, 1e-9)
}

func TestCombineEmpty(t *testing.T) {
	c := Combine(nil)
	assert.Equal(t, 0, c.TotalTrades)
	assert.True(t, c.StartingCapital.IsZero())
}
