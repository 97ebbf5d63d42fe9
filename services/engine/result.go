package engine

import "github.com/shopspring/decimal"

// Result holds everything a single-asset run produced.
type Result struct {
	JobID   string        `json:"job_id"`
	Symbol  string        `json:"symbol"`
	Trades  []Trade       `json:"trades"`
	Curve   []EquityPoint `json:"-"`
	Summary Summary       `json:"summary"`
	Events  *EventLog     `json:"-"`
}

// Combined pools the results of independent per-asset runs: equities sum,
// drawdown takes the worst asset, win rate and profit factor pool the
// underlying trades, Sharpe averages.
type Combined struct {
	StartingCapital decimal.Decimal `json:"starting_capital"`
	FinalEquity     decimal.Decimal `json:"final_equity"`
	NetPnlUsd       decimal.Decimal `json:"net_pnl_usd"`
	TotalReturnPct  decimal.Decimal `json:"total_return_pct"`
	MaxDrawdownPct  decimal.Decimal `json:"max_drawdown_pct"`
	TotalTrades     int             `json:"total_trades"`
	Wins            int             `json:"wins"`
	Losses          int             `json:"losses"`
	WinRatePct      decimal.Decimal `json:"win_rate_pct"`
	ProfitFactor    decimal.Decimal `json:"profit_factor"`
	AvgSharpe       float64         `json:"avg_sharpe"`
}

// Combine merges per-asset summaries into portfolio-level numbers.
func Combine(results []*Result) Combined {
	var c Combined
	if len(results) == 0 {
		return c
	}
	var grossProfit, grossLoss decimal.Decimal
	var sharpeSum float64
	for _, r := range results {
		s := r.Summary
		c.StartingCapital = c.StartingCapital.Add(s.StartingCapital)
		c.FinalEquity = c.FinalEquity.Add(s.FinalEquity)
		c.TotalTrades += s.TotalTrades
		c.Wins += s.Wins
		c.Losses += s.Losses
		grossProfit = grossProfit.Add(s.GrossProfit)
		grossLoss = grossLoss.Add(s.GrossLoss)
		sharpeSum += s.SharpeRatio
		if s.MaxDrawdownPct.GreaterThan(c.MaxDrawdownPct) {
			c.MaxDrawdownPct = s.MaxDrawdownPct
		}
	}
	c.NetPnlUsd = c.FinalEquity.Sub(c.StartingCapital)
	if c.StartingCapital.IsPositive() {
		c.TotalReturnPct = c.FinalEquity.Div(c.StartingCapital).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	}
	if c.TotalTrades > 0 {
		c.WinRatePct = decimal.NewFromInt(int64(c.Wins)).
			Div(decimal.NewFromInt(int64(c.TotalTrades))).
			Mul(decimal.NewFromInt(100))
	}
	c.ProfitFactor = profitFactor(grossProfit, grossLoss)
	c.AvgSharpe = sharpeSum / float64(len(results))
	return c
}
