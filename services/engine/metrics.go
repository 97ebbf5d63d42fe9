package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// EquityPoint is one mark-to-market observation of account equity.
type EquityPoint struct {
	Timestamp int64
	Equity    decimal.Decimal
}

// ProfitFactorCap is reported instead of infinity when a run has gross
// profit but no losing trades.
var ProfitFactorCap = decimal.NewFromInt(1000)

// hoursPerYear annualizes Sharpe for hourly bars.
const hoursPerYear = 24 * 365

// Summary aggregates trade-level and equity-curve statistics for one run.
type Summary struct {
	StartingCapital decimal.Decimal `json:"starting_capital"`
	FinalEquity     decimal.Decimal `json:"final_equity"`
	NetPnlUsd       decimal.Decimal `json:"net_pnl_usd"`
	TotalReturnPct  decimal.Decimal `json:"total_return_pct"`
	MaxDrawdownPct  decimal.Decimal `json:"max_drawdown_pct"`
	TotalTrades     int             `json:"total_trades"`
	Wins            int             `json:"wins"`
	Losses          int             `json:"losses"`
	WinRatePct      decimal.Decimal `json:"win_rate_pct"`
	GrossProfit     decimal.Decimal `json:"gross_profit"`
	GrossLoss       decimal.Decimal `json:"gross_loss"`
	ProfitFactor    decimal.Decimal `json:"profit_factor"`
	AvgWinUsd       decimal.Decimal `json:"avg_win_usd"`
	AvgLossUsd      decimal.Decimal `json:"avg_loss_usd"`
	SharpeRatio     float64         `json:"sharpe_ratio"`
}

// Summarize derives a Summary from the realized trades and the equity
// curve of a completed run.
func Summarize(startingCapital decimal.Decimal, trades []Trade, curve []EquityPoint) Summary {
	s := Summary{
		StartingCapital: startingCapital,
		FinalEquity:     startingCapital,
	}
	if len(curve) > 0 {
		s.FinalEquity = curve[len(curve)-1].Equity
	}
	s.NetPnlUsd = s.FinalEquity.Sub(startingCapital)
	if startingCapital.IsPositive() {
		s.TotalReturnPct = s.FinalEquity.Div(startingCapital).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	}
	s.MaxDrawdownPct = maxDrawdown(curve).Mul(decimal.NewFromInt(100))

	for _, t := range trades {
		switch {
		case t.PnlUsd.IsPositive():
			s.Wins++
			s.GrossProfit = s.GrossProfit.Add(t.PnlUsd)
		case t.PnlUsd.IsNegative():
			s.Losses++
			s.GrossLoss = s.GrossLoss.Add(t.PnlUsd.Abs())
		}
		// Break-even trades count toward the total only.
	}
	s.TotalTrades = len(trades)
	if s.TotalTrades > 0 {
		s.WinRatePct = decimal.NewFromInt(int64(s.Wins)).
			Div(decimal.NewFromInt(int64(s.TotalTrades))).
			Mul(decimal.NewFromInt(100))
	}
	if s.Wins > 0 {
		s.AvgWinUsd = s.GrossProfit.Div(decimal.NewFromInt(int64(s.Wins)))
	}
	if s.Losses > 0 {
		s.AvgLossUsd = s.GrossLoss.Div(decimal.NewFromInt(int64(s.Losses)))
	}
	s.ProfitFactor = profitFactor(s.GrossProfit, s.GrossLoss)
	s.SharpeRatio = sharpe(curve)
	return s
}

func profitFactor(grossProfit, grossLoss decimal.Decimal) decimal.Decimal {
	if grossLoss.IsPositive() {
		pf := grossProfit.Div(grossLoss)
		if pf.GreaterThan(ProfitFactorCap) {
			return ProfitFactorCap
		}
		return pf
	}
	if grossProfit.IsPositive() {
		// No losing trades: report the capped sentinel, not infinity.
		return ProfitFactorCap
	}
	return decimal.Zero
}

func maxDrawdown(curve []EquityPoint) decimal.Decimal {
	maxDD := decimal.Zero
	if len(curve) == 0 {
		return maxDD
	}
	peak := curve[0].Equity
	for _, p := range curve {
		if p.Equity.GreaterThan(peak) {
			peak = p.Equity
		}
		if !peak.IsPositive() {
			continue
		}
		dd := peak.Sub(p.Equity).Div(peak)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
		}
	}
	return maxDD
}

// sharpe computes mean/stdev of per-bar equity returns, annualized for
// hourly bars.
func sharpe(curve []EquityPoint) float64 {
	if len(curve) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev, _ := curve[i-1].Equity.Float64()
		cur, _ := curve[i].Equity.Float64()
		if prev == 0 {
			continue
		}
		returns = append(returns, (cur-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))
	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(hoursPerYear)
}
