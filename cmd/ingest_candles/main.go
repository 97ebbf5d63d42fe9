// Loads hourly candle CSVs into the ClickHouse candle table. Re-running
// over the same files is idempotent.
package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/clickhouse"
	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/config"
	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to YAML config")
	csvDir := flag.String("csv-dir", "", "Directory of <symbol>.csv files; overrides config")
	symbolsFlag := flag.String("symbols", "", "Comma-separated symbols; overrides config")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall ingest timeout")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *csvDir != "" {
		cfg.Source.CSVDir = *csvDir
	}
	symbols := cfg.Symbols
	if *symbolsFlag != "" {
		symbols = symbols[:0]
		for _, s := range strings.Split(*symbolsFlag, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	client, err := clickhouse.NewClient(cfg.Source.ClickHouse, logger)
	if err != nil {
		logger.Fatal("connect clickhouse", zap.Error(err))
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		logger.Fatal("ping clickhouse", zap.Error(err))
	}
	if err := client.EnsureSchema(ctx); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	for _, sym := range symbols {
		path := filepath.Join(cfg.Source.CSVDir, sym+".csv")
		bars, err := engine.LoadCSV(path)
		if err != nil {
			logger.Fatal("load csv", zap.String("path", path), zap.Error(err))
		}
		if err := client.InsertBars(ctx, sym, bars); err != nil {
			logger.Fatal("insert candles", zap.String("symbol", sym), zap.Error(err))
		}
		logger.Info("symbol ingested", zap.String("symbol", sym), zap.Int("bars", len(bars)))
	}
}
