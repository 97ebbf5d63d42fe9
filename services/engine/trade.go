package engine

import "github.com/shopspring/decimal"

// ExitReason identifies which exit rule closed a trade. The concrete
// values are defined by the strategy that emits them.
type ExitReason string

// Trade is an immutable record written when a position closes. PnL is net
// of entry and exit fees.
type Trade struct {
	Symbol      string          `json:"symbol"`
	EntryTime   int64           `json:"entry_time_ms"`
	ExitTime    int64           `json:"exit_time_ms"`
	EntryPrice  decimal.Decimal `json:"entry_price"`
	ExitPrice   decimal.Decimal `json:"exit_price"`
	Quantity    decimal.Decimal `json:"qty"`
	SizeUsd     decimal.Decimal `json:"size_usd"`
	FeesUsd     decimal.Decimal `json:"fees_usd"`
	PnlUsd      decimal.Decimal `json:"pnl_usd"`
	PnlPct      decimal.Decimal `json:"pnl_pct"`
	ExitReason  ExitReason      `json:"exit_reason"`
	EntryRegime string          `json:"entry_regime"`
	BarsHeld    int             `json:"bars_held"`
}
