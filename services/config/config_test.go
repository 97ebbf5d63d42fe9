package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, cfg.Symbols)
	assert.Equal(t, SourceCSV, cfg.Source.Kind)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	// Strategy block inherits the production defaults.
	assert.Equal(t, 14, cfg.Strategy.StochKPeriod)
	assert.Equal(t, 10000.0, cfg.Strategy.StartingCapital)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
symbols: [SOL-USD]
source:
  kind: clickhouse
  clickhouse:
    dsn: clickhouse://localhost:9000
strategy:
  starting_capital: 25000
  cooldown_hours: 6
output:
  dir: /tmp/reports
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"SOL-USD"}, cfg.Symbols)
	assert.Equal(t, SourceClickHouse, cfg.Source.Kind)
	assert.Equal(t, "clickhouse://localhost:9000", cfg.Source.ClickHouse.DSN)
	assert.Equal(t, 25000.0, cfg.Strategy.StartingCapital)
	assert.Equal(t, 6, cfg.Strategy.CooldownHours)
	assert.Equal(t, "/tmp/reports", cfg.Output.Dir)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.001, cfg.Strategy.CommissionRate)
	assert.Equal(t, "backtest_report.md", cfg.Output.MarkdownFile)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "ADA-USD, DOT-USD")
	t.Setenv("STARTING_CAPITAL", "5000")
	t.Setenv("CLICKHOUSE_DSN", "clickhouse://ch:9000")
	t.Setenv("SERVER_ADDR", ":9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"ADA-USD", "DOT-USD"}, cfg.Symbols)
	assert.Equal(t, 5000.0, cfg.Strategy.StartingCapital)
	assert.Equal(t, "clickhouse://ch:9000", cfg.Source.ClickHouse.DSN)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("bad starting capital env", func(t *testing.T) {
		t.Setenv("STARTING_CAPITAL", "lots")
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("unknown source kind", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("source:\n  kind: ftp\n"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("invalid strategy block", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("strategy:\n  adx_period: 0\n"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})
}
