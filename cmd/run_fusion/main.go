package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/clickhouse"
	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/config"
	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"
	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/report"
	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/strategies"
)

const timeLayout = "2006-01-02 15:04:05"

func main() {
	// Flags
	cfgPath := flag.String("config", "config.yaml", "Path to YAML config")
	symbolsFlag := flag.String("symbols", "", "Comma-separated symbols; overrides config")
	source := flag.String("source", "", "Bar source: csv or clickhouse; overrides config")
	csvDir := flag.String("csv-dir", "", "Directory of <symbol>.csv files; overrides config")
	outDir := flag.String("out", "", "Output directory; overrides config")
	verbose := flag.Bool("verbose", false, "Mirror run events to the console")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *symbolsFlag != "" {
		cfg.Symbols = cfg.Symbols[:0]
		for _, s := range strings.Split(*symbolsFlag, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Symbols = append(cfg.Symbols, s)
			}
		}
	}
	if *source != "" {
		cfg.Source.Kind = *source
	}
	if *csvDir != "" {
		cfg.Source.CSVDir = *csvDir
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	assets, err := loadAssets(cfg, logger)
	if err != nil {
		logger.Fatal("load bars", zap.Error(err))
	}

	strat, err := strategies.New(cfg.Strategy, logger)
	if err != nil {
		logger.Fatal("build strategy", zap.Error(err))
	}

	started := time.Now()
	results, combined, err := strat.RunAll(assets)
	if err != nil {
		logger.Fatal("run backtest", zap.Error(err))
	}
	logger.Info("Backtest finished",
		zap.Int("assets", len(results)),
		zap.Int("trades", combined.TotalTrades),
		zap.Duration("elapsed", time.Since(started)),
	)

	if *verbose {
		printEvents(results)
	}
	printSummary(combined, results)

	jsonPath := filepath.Join(cfg.Output.Dir, cfg.Output.JSONFile)
	mdPath := filepath.Join(cfg.Output.Dir, cfg.Output.MarkdownFile)
	csvPath := filepath.Join(cfg.Output.Dir, cfg.Output.TradesCSVFile)
	if err := report.WriteJSON(jsonPath, combined, results); err != nil {
		logger.Fatal("write json report", zap.Error(err))
	}
	if err := report.WriteMarkdown(mdPath, combined, results); err != nil {
		logger.Fatal("write markdown report", zap.Error(err))
	}
	if err := report.WriteTradesCSV(csvPath, results); err != nil {
		logger.Fatal("write trades csv", zap.Error(err))
	}
	logger.Info("Reports written",
		zap.String("json", jsonPath),
		zap.String("markdown", mdPath),
		zap.String("trades", csvPath),
	)
}

func loadAssets(cfg *config.Config, logger *zap.Logger) (map[string][]engine.Bar, error) {
	assets := make(map[string][]engine.Bar, len(cfg.Symbols))

	switch cfg.Source.Kind {
	case config.SourceCSV:
		for _, sym := range cfg.Symbols {
			path := filepath.Join(cfg.Source.CSVDir, sym+".csv")
			bars, err := engine.LoadCSV(path)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
			logger.Info("Loaded bars from CSV",
				zap.String("symbol", sym),
				zap.Int("bars", len(bars)),
			)
			assets[sym] = bars
		}

	case config.SourceClickHouse:
		from, err := time.ParseInLocation(timeLayout, cfg.Source.From, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse from: %w", err)
		}
		to, err := time.ParseInLocation(timeLayout, cfg.Source.To, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse to: %w", err)
		}
		client, err := clickhouse.NewClient(cfg.Source.ClickHouse, logger)
		if err != nil {
			return nil, err
		}
		defer client.Close()
		ctx := context.Background()
		for _, sym := range cfg.Symbols {
			bars, err := client.Bars(ctx, sym, from, to)
			if err != nil {
				return nil, fmt.Errorf("query %s: %w", sym, err)
			}
			logger.Info("Loaded bars from ClickHouse",
				zap.String("symbol", sym),
				zap.Int("bars", len(bars)),
			)
			assets[sym] = bars
		}

	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
	return assets, nil
}

func printEvents(results []*engine.Result) {
	for _, r := range results {
		for _, ev := range r.Events.Events {
			ts := time.UnixMilli(ev.Ts).UTC().Format(timeLayout)
			fmt.Fprintf(os.Stdout, "%s  %-16s %-10s", ts, ev.Type, ev.Symbol)
			for k, v := range ev.Details {
				fmt.Fprintf(os.Stdout, " %s=%s", k, v)
			}
			fmt.Fprintln(os.Stdout)
		}
	}
}

func printSummary(combined engine.Combined, results []*engine.Result) {
	fmt.Println()
	fmt.Println("=== Adaptive Trend Fusion - Combined ===")
	fmt.Printf("Starting Capital : $%s\n", combined.StartingCapital.StringFixed(2))
	fmt.Printf("Final Equity     : $%s\n", combined.FinalEquity.StringFixed(2))
	fmt.Printf("Net P&L          : $%s (%s%%)\n",
		combined.NetPnlUsd.StringFixed(2), combined.TotalReturnPct.StringFixed(2))
	fmt.Printf("Max Drawdown     : %s%%\n", combined.MaxDrawdownPct.StringFixed(2))
	fmt.Printf("Trades           : %d (win rate %s%%)\n",
		combined.TotalTrades, combined.WinRatePct.StringFixed(1))
	fmt.Printf("Profit Factor    : %s\n", combined.ProfitFactor.StringFixed(2))
	fmt.Printf("Avg Sharpe       : %.2f\n", combined.AvgSharpe)
	for _, r := range results {
		s := r.Summary
		fmt.Printf("\n--- %s ---\n", r.Symbol)
		fmt.Printf("Return %s%%  Drawdown %s%%  Trades %d  WinRate %s%%  PF %s  Sharpe %.2f\n",
			s.TotalReturnPct.StringFixed(2), s.MaxDrawdownPct.StringFixed(2),
			s.TotalTrades, s.WinRatePct.StringFixed(1),
			s.ProfitFactor.StringFixed(2), s.SharpeRatio)
	}
	fmt.Println()
}
