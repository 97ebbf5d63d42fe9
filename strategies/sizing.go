package strategies

import "github.com/shopspring/decimal"

// positionPct maps (regime, confidence) to a fraction of portfolio
// capital. Trending-down markets are never sized. The clamp applies after
// the confidence scaling, so the configured floor can raise a small
// high-volatility allocation back up.
func positionPct(cfg *Config, call RegimeCall, confidence float64) (float64, bool) {
	var basePct float64
	switch call.Regime {
	case RegimeTrendingUp:
		basePct = 0.30 + 0.25*call.Strength
	case RegimeRanging:
		basePct = 0.30
	case RegimeHighVolatility:
		basePct = 0.18
	default:
		return 0, false
	}

	pct := basePct * confidence
	if pct < cfg.MinPositionPct {
		pct = cfg.MinPositionPct
	}
	if pct > cfg.MaxPositionPct {
		pct = cfg.MaxPositionPct
	}
	return pct, true
}

// positionSize converts the sized fraction into units at the current
// close, holding back the reserve buffer. ok=false when the regime admits
// no entry or the notional falls under the configured minimum.
func positionSize(cfg *Config, call RegimeCall, confidence float64, equity, close decimal.Decimal) (qty, notional decimal.Decimal, ok bool) {
	if !close.IsPositive() {
		return decimal.Zero, decimal.Zero, false
	}
	pct, ok := positionPct(cfg, call, confidence)
	if !ok {
		return decimal.Zero, decimal.Zero, false
	}

	notional = equity.
		Mul(decimal.NewFromFloat(pct)).
		Mul(decimal.NewFromFloat(cfg.ReserveBuffer))
	if notional.LessThan(decimal.NewFromFloat(cfg.MinNotional)) {
		return decimal.Zero, decimal.Zero, false
	}
	qty = notional.Div(close)
	return qty, notional, true
}
