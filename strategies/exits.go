package strategies

import "github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"

const (
	ExitStopLoss        engine.ExitReason = "stop_loss"
	ExitTakeProfit      engine.ExitReason = "take_profit"
	ExitTrailingStop    engine.ExitReason = "trailing_stop"
	ExitRegimeChange    engine.ExitReason = "regime_change"
	ExitBearishReversal engine.ExitReason = "bearish_reversal"
	ExitOverbought      engine.ExitReason = "overbought"
)

// exitContext is the per-bar view an exit rule decides on.
type exitContext struct {
	cfg        *Config
	pos        *Position
	close      float64
	gain       float64 // (close-entry)/entry
	highest    float64 // highest close since entry, already updated for this bar
	snap       Snapshot
	regime     RegimeCall
	confidence float64
}

type exitRule struct {
	reason engine.ExitReason
	match  func(exitContext) bool
}

// exitRules is evaluated top-down with first-match-wins semantics. Order
// is the priority: the hard stop always beats the target, the target
// beats everything discretionary.
var exitRules = []exitRule{
	{ExitStopLoss, func(c exitContext) bool {
		return c.gain < -c.pos.StopPct
	}},
	{ExitTakeProfit, func(c exitContext) bool {
		return c.gain > c.pos.StopPct*c.cfg.TakeProfitMultiplier
	}},
	{ExitTrailingStop, func(c exitContext) bool {
		entry := c.pos.EntryPrice.InexactFloat64()
		if entry <= 0 || c.highest <= 0 {
			return false
		}
		// Arms on the peak gain since entry, not the current bar's gain.
		if (c.highest-entry)/entry <= c.cfg.TrailingActivation {
			return false
		}
		return (c.highest-c.close)/c.highest > c.cfg.TrailingDistance
	}},
	{ExitRegimeChange, func(c exitContext) bool {
		return c.pos.EntryRegime != RegimeHighVolatility &&
			c.regime.Regime == RegimeHighVolatility &&
			c.gain > c.cfg.RegimeExitMinGain
	}},
	{ExitBearishReversal, func(c exitContext) bool {
		return c.confidence < c.cfg.BearishThreshold && c.gain > c.cfg.ReversalExitMinGain
	}},
	{ExitOverbought, func(c exitContext) bool {
		return c.snap.StochK > c.cfg.StochOverbought &&
			c.snap.WillR > c.cfg.WillrOverbought &&
			c.gain > c.cfg.OverboughtExitMinGain
	}},
}

// evaluateExits returns the highest-priority matching exit, if any.
func evaluateExits(ctx exitContext) (engine.ExitReason, bool) {
	for _, rule := range exitRules {
		if rule.match(ctx) {
			return rule.reason, true
		}
	}
	return "", false
}
