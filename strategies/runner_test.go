package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"
)

func TestRunAll(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	assets := map[string][]engine.Bar{
		"ETH-USD": barsFromCloses(risingCloses(80, 50, 0.005)),
		"BTC-USD": barsFromCloses(flatCloses(80, 100)),
	}
	results, combined, err := s.RunAll(assets)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Deterministic symbol order regardless of map iteration.
	assert.Equal(t, "BTC-USD", results[0].Symbol)
	assert.Equal(t, "ETH-USD", results[1].Symbol)
	assert.NotEqual(t, results[0].JobID, results[1].JobID)

	// Each asset runs an independent account.
	assert.InDelta(t, 2*cfg.StartingCapital, combined.StartingCapital.InexactFloat64(), 1e-9)
	assert.Equal(t,
		results[0].Summary.TotalTrades+results[1].Summary.TotalTrades,
		combined.TotalTrades,
	)

	// The flat asset contributes nothing.
	assert.Empty(t, results[0].Trades)
	assert.InDelta(t, cfg.StartingCapital, results[0].Summary.FinalEquity.InexactFloat64(), 1e-9)
}

func TestRunAllPropagatesErrors(t *testing.T) {
	s, err := New(DefaultConfig(), zap.NewNop())
	require.NoError(t, err)

	assets := map[string][]engine.Bar{
		"GOOD-USD": barsFromCloses(flatCloses(80, 100)),
		"BAD-USD":  nil,
	}
	_, _, err = s.RunAll(assets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD-USD")
}

func TestRunAllEmpty(t *testing.T) {
	s, err := New(DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	results, combined, err := s.RunAll(nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, combined.TotalTrades)
}
