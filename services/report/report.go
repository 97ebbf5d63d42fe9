// Package report serializes backtest results into JSON, Markdown and CSV
// artifacts for downstream consumers.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"
)

// assetResult is the per-asset slice of the JSON payload.
type assetResult struct {
	JobID   string         `json:"job_id"`
	Symbol  string         `json:"symbol"`
	Summary engine.Summary `json:"summary"`
	Trades  []tradeRow     `json:"trades"`
}

type tradeRow struct {
	Symbol      string `json:"symbol"`
	EntryTime   string `json:"entry_time_utc"`
	ExitTime    string `json:"exit_time_utc"`
	EntryPrice  string `json:"entry_price"`
	ExitPrice   string `json:"exit_price"`
	Quantity    string `json:"qty"`
	SizeUsd     string `json:"size_usd"`
	FeesUsd     string `json:"fees_usd"`
	PnlUsd      string `json:"pnl_usd"`
	PnlPct      string `json:"pnl_pct"`
	ExitReason  string `json:"exit_reason"`
	EntryRegime string `json:"entry_regime"`
	BarsHeld    int    `json:"bars_held"`
}

type payload struct {
	GeneratedAt string          `json:"generated_at"`
	Strategy    string          `json:"strategy"`
	Combined    engine.Combined `json:"combined"`
	Assets      []assetResult   `json:"assets"`
}

const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(timeLayout)
}

func toTradeRow(t engine.Trade) tradeRow {
	return tradeRow{
		Symbol:      t.Symbol,
		EntryTime:   formatTime(t.EntryTime),
		ExitTime:    formatTime(t.ExitTime),
		EntryPrice:  t.EntryPrice.String(),
		ExitPrice:   t.ExitPrice.String(),
		Quantity:    t.Quantity.String(),
		SizeUsd:     t.SizeUsd.String(),
		FeesUsd:     t.FeesUsd.String(),
		PnlUsd:      t.PnlUsd.String(),
		PnlPct:      t.PnlPct.String(),
		ExitReason:  string(t.ExitReason),
		EntryRegime: t.EntryRegime,
		BarsHeld:    t.BarsHeld,
	}
}

// WriteJSON writes the combined and per-asset results as indented JSON.
func WriteJSON(path string, combined engine.Combined, results []*engine.Result) error {
	p := payload{
		GeneratedAt: time.Now().UTC().Format(timeLayout),
		Strategy:    "Adaptive Trend Fusion",
		Combined:    combined,
		Assets:      make([]assetResult, 0, len(results)),
	}
	for _, r := range results {
		a := assetResult{
			JobID:   r.JobID,
			Symbol:  r.Symbol,
			Summary: r.Summary,
			Trades:  make([]tradeRow, 0, len(r.Trades)),
		}
		for _, t := range r.Trades {
			a.Trades = append(a.Trades, toTradeRow(t))
		}
		p.Assets = append(p.Assets, a)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// WriteMarkdown renders a human-readable report with a combined table and
// one section per asset.
func WriteMarkdown(path string, combined engine.Combined, results []*engine.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Adaptive Trend Fusion Strategy - Backtest Report\n\n")
	fmt.Fprintf(f, "**Generated:** %s\n\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(f, "## Combined Performance\n\n")
	fmt.Fprintf(f, "| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(f, "| Starting Capital | $%s |\n", combined.StartingCapital.StringFixed(2))
	fmt.Fprintf(f, "| Final Equity | $%s |\n", combined.FinalEquity.StringFixed(2))
	fmt.Fprintf(f, "| Total P&L | $%s |\n", combined.NetPnlUsd.StringFixed(2))
	fmt.Fprintf(f, "| **Total Return** | **%s%%** |\n", combined.TotalReturnPct.StringFixed(2))
	fmt.Fprintf(f, "| Max Drawdown | %s%% |\n", combined.MaxDrawdownPct.StringFixed(2))
	fmt.Fprintf(f, "| Total Trades | %d |\n", combined.TotalTrades)
	fmt.Fprintf(f, "| Win Rate | %s%% |\n", combined.WinRatePct.StringFixed(1))
	fmt.Fprintf(f, "| Profit Factor | %s |\n", combined.ProfitFactor.StringFixed(2))
	fmt.Fprintf(f, "| Sharpe Ratio | %.2f |\n\n", combined.AvgSharpe)

	fmt.Fprintf(f, "## Individual Asset Performance\n\n")
	for _, r := range results {
		s := r.Summary
		fmt.Fprintf(f, "### %s\n\n", r.Symbol)
		fmt.Fprintf(f, "| Metric | Value |\n|--------|-------|\n")
		fmt.Fprintf(f, "| Return | %s%% |\n", s.TotalReturnPct.StringFixed(2))
		fmt.Fprintf(f, "| Max Drawdown | %s%% |\n", s.MaxDrawdownPct.StringFixed(2))
		fmt.Fprintf(f, "| Trades | %d |\n", s.TotalTrades)
		fmt.Fprintf(f, "| Win Rate | %s%% |\n", s.WinRatePct.StringFixed(1))
		fmt.Fprintf(f, "| Profit Factor | %s |\n", s.ProfitFactor.StringFixed(2))
		fmt.Fprintf(f, "| Sharpe Ratio | %.2f |\n\n", s.SharpeRatio)
	}
	return nil
}

// WriteTradesCSV exports every trade across all assets as one CSV file.
func WriteTradesCSV(path string, results []*engine.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"symbol", "entry_time_utc", "exit_time_utc", "entry_price", "exit_price",
		"qty", "size_usd", "fees_usd", "pnl_usd", "pnl_pct", "exit_reason",
		"entry_regime", "bars_held",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		for _, t := range r.Trades {
			row := toTradeRow(t)
			record := []string{
				row.Symbol, row.EntryTime, row.ExitTime, row.EntryPrice, row.ExitPrice,
				row.Quantity, row.SizeUsd, row.FeesUsd, row.PnlUsd, row.PnlPct,
				row.ExitReason, row.EntryRegime, fmt.Sprintf("%d", row.BarsHeld),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}
