package strategies

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"
)

func exitCtx(cfg *Config, entry, close, highest float64) exitContext {
	return exitContext{
		cfg: cfg,
		pos: &Position{
			EntryPrice: decimal.NewFromFloat(entry),
			StopPct:    cfg.TrendingStopLoss,
		},
		close:   close,
		gain:    (close - entry) / entry,
		highest: highest,
		snap:    Snapshot{StochK: 50, StochD: 50, WillR: -50},
		regime:  RegimeCall{Regime: RegimeTrendingUp, Strength: 0.8},
		// Comfortably between bearish and bullish.
		confidence: 0.5,
	}
}

func TestExitPriorityOrder(t *testing.T) {
	// The cascade order is the priority contract: hard stop first, then
	// target, then the discretionary rules.
	want := []engine.ExitReason{
		ExitStopLoss,
		ExitTakeProfit,
		ExitTrailingStop,
		ExitRegimeChange,
		ExitBearishReversal,
		ExitOverbought,
	}
	require.Len(t, exitRules, len(want))
	for i, rule := range exitRules {
		assert.Equal(t, want[i], rule.reason)
	}
}

func TestStopLossExit(t *testing.T) {
	cfg := DefaultConfig()
	// Down 13% against a 12% trending stop.
	reason, hit := evaluateExits(exitCtx(&cfg, 100, 87, 100))
	require.True(t, hit)
	assert.Equal(t, ExitStopLoss, reason)

	// Down 11%: inside the stop, holds.
	_, hit = evaluateExits(exitCtx(&cfg, 100, 89, 100))
	assert.False(t, hit)
}

func TestTakeProfitExit(t *testing.T) {
	cfg := DefaultConfig()
	// Target is stop*multiplier = 24%; up 25% fires.
	reason, hit := evaluateExits(exitCtx(&cfg, 100, 125, 125))
	require.True(t, hit)
	assert.Equal(t, ExitTakeProfit, reason)
}

func TestTakeProfitBeatsTrailingStop(t *testing.T) {
	cfg := DefaultConfig()
	// Both fire: gain 30% clears the 24% target, and the 13% retracement
	// from the 150 peak clears the trailing distance. Priority decides.
	reason, hit := evaluateExits(exitCtx(&cfg, 100, 130, 150))
	require.True(t, hit)
	assert.Equal(t, ExitTakeProfit, reason)
}

func TestTrailingStopExit(t *testing.T) {
	cfg := DefaultConfig()

	// Opened at 100, peaked at 112 (+12% arms the trail), fell to 104:
	// 7.1% off the peak exceeds the 6% trailing distance.
	reason, hit := evaluateExits(exitCtx(&cfg, 100, 104, 112))
	require.True(t, hit)
	assert.Equal(t, ExitTrailingStop, reason)

	// Same retracement but the peak never reached +10%: trail unarmed.
	_, hit = evaluateExits(exitCtx(&cfg, 100, 101, 108))
	assert.False(t, hit)

	// Armed but the pullback stays inside the distance.
	_, hit = evaluateExits(exitCtx(&cfg, 100, 107, 112))
	assert.False(t, hit)
}

func TestRegimeChangeExit(t *testing.T) {
	cfg := DefaultConfig()

	ctx := exitCtx(&cfg, 100, 103, 103)
	ctx.regime = RegimeCall{Regime: RegimeHighVolatility}
	reason, hit := evaluateExits(ctx)
	require.True(t, hit)
	assert.Equal(t, ExitRegimeChange, reason)

	// Gain below the gate: ride out the volatility.
	ctx = exitCtx(&cfg, 100, 101, 101)
	ctx.regime = RegimeCall{Regime: RegimeHighVolatility}
	_, hit = evaluateExits(ctx)
	assert.False(t, hit)

	// Entered during high volatility: the regime never "changed".
	ctx = exitCtx(&cfg, 100, 103, 103)
	ctx.regime = RegimeCall{Regime: RegimeHighVolatility}
	ctx.pos.EntryRegime = RegimeHighVolatility
	_, hit = evaluateExits(ctx)
	assert.False(t, hit)
}

func TestBearishReversalExit(t *testing.T) {
	cfg := DefaultConfig()

	ctx := exitCtx(&cfg, 100, 102, 102)
	ctx.confidence = 0.40
	reason, hit := evaluateExits(ctx)
	require.True(t, hit)
	assert.Equal(t, ExitBearishReversal, reason)

	// Bearish but not yet past the minimum-gain gate.
	ctx = exitCtx(&cfg, 100, 100.5, 100.5)
	ctx.confidence = 0.40
	_, hit = evaluateExits(ctx)
	assert.False(t, hit)
}

func TestOverboughtExit(t *testing.T) {
	cfg := DefaultConfig()

	ctx := exitCtx(&cfg, 100, 104, 104)
	ctx.snap = Snapshot{StochK: 85, StochD: 80, WillR: -10}
	reason, hit := evaluateExits(ctx)
	require.True(t, hit)
	assert.Equal(t, ExitOverbought, reason)

	// Only one oscillator overbought: holds.
	ctx = exitCtx(&cfg, 100, 104, 104)
	ctx.snap = Snapshot{StochK: 85, StochD: 80, WillR: -50}
	_, hit = evaluateExits(ctx)
	assert.False(t, hit)
}

func TestNoExitHolds(t *testing.T) {
	cfg := DefaultConfig()
	_, hit := evaluateExits(exitCtx(&cfg, 100, 105, 106))
	assert.False(t, hit)
}
