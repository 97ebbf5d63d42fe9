// Package clickhouse stores and serves hourly candles for backtests. The
// schema is a ReplacingMergeTree keyed by (symbol, interval, open_time_ms)
// so re-ingesting the same range stays idempotent.
package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"
)

// Interval of the candles this strategy trades on.
const Interval = "1h"

type Config struct {
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

func (c *Config) applyDefaults() {
	if c.DSN == "" {
		c.DSN = "clickhouse://default:@localhost:9000?secure=false&compress=lz4"
	}
	if c.Database == "" {
		c.Database = "backtest"
	}
	if c.Table == "" {
		c.Table = "candles"
	}
}

type Client struct {
	conn clickhouse.Conn
	cfg  Config
	log  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{dsnHost(cfg.DSN)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": uint64(0),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	return &Client{conn: conn, cfg: cfg, log: logger}, nil
}

// dsnHost extracts host:port from a DSN-like URL for driver bootstrap.
func dsnHost(dsn string) string {
	host := "localhost:9000"
	if i := strings.Index(dsn, "@"); i != -1 {
		rest := dsn[i+1:]
		if j := strings.Index(rest, "?"); j != -1 {
			host = rest[:j]
		} else {
			host = rest
		}
		host = strings.TrimPrefix(host, "/")
		host = strings.TrimPrefix(host, "//")
	}
	return host
}

func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// EnsureSchema creates the database and candle table if missing.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if err := c.conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", c.cfg.Database)); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.%s (
			symbol String,
			interval LowCardinality(String),
			open_time_ms UInt64,
			open Float64,
			high Float64,
			low Float64,
			close Float64,
			volume Float64,
			ingested_at DateTime64(3),
			version UInt64
		)
		ENGINE = ReplacingMergeTree(version)
		ORDER BY (symbol, interval, open_time_ms)
		SETTINGS index_granularity = 8192
	`, c.cfg.Database, c.cfg.Table)
	if err := c.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Bars loads hourly candles for one symbol in [from, to), ordered by open
// time. FINAL collapses ReplacingMergeTree duplicates.
func (c *Client) Bars(ctx context.Context, symbol string, from, to time.Time) ([]engine.Bar, error) {
	query := fmt.Sprintf(`
		SELECT open_time_ms, open, high, low, close, volume
		FROM %s.%s FINAL
		WHERE symbol = ? AND interval = ? AND open_time_ms >= ? AND open_time_ms < ?
		ORDER BY open_time_ms
	`, c.cfg.Database, c.cfg.Table)

	rows, err := c.conn.Query(ctx, query, symbol, Interval, uint64(from.UnixMilli()), uint64(to.UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var bars []engine.Bar
	for rows.Next() {
		var (
			openTimeMs                     uint64
			open, high, low, close, volume float64
		)
		if err := rows.Scan(&openTimeMs, &open, &high, &low, &close, &volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		bars = append(bars, engine.Bar{
			Timestamp: int64(openTimeMs),
			Open:      decimal.NewFromFloat(open),
			High:      decimal.NewFromFloat(high),
			Low:       decimal.NewFromFloat(low),
			Close:     decimal.NewFromFloat(close),
			Volume:    decimal.NewFromFloat(volume),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candles: %w", err)
	}
	c.log.Debug("loaded candles",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
	)
	return bars, nil
}

// InsertBars batch-writes candles for a symbol. The version column lets
// ReplacingMergeTree keep the latest write for a timestamp.
func (c *Client) InsertBars(ctx context.Context, symbol string, bars []engine.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(ctx, fmt.Sprintf(
		"INSERT INTO %s.%s SETTINGS insert_deduplicate=1", c.cfg.Database, c.cfg.Table))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	now := time.Now().UTC()
	ver := uint64(now.UnixNano())
	for _, b := range bars {
		err := batch.Append(
			symbol,
			Interval,
			uint64(b.Timestamp),
			b.Open.InexactFloat64(),
			b.High.InexactFloat64(),
			b.Low.InexactFloat64(),
			b.Close.InexactFloat64(),
			b.Volume.InexactFloat64(),
			now,
			ver,
		)
		if err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	c.log.Info("ingested candles", zap.String("symbol", symbol), zap.Int("rows", len(bars)))
	return nil
}
