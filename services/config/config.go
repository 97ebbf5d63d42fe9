// Package config loads run configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/clickhouse"
	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/strategies"
)

// Source selects where bars come from.
const (
	SourceCSV        = "csv"
	SourceClickHouse = "clickhouse"
)

type Config struct {
	// Symbols to simulate, each as an independent run.
	Symbols []string `yaml:"symbols"`

	Source struct {
		// Kind is "csv" or "clickhouse".
		Kind string `yaml:"kind"`
		// CSVDir holds one <symbol>.csv file per symbol.
		CSVDir     string            `yaml:"csv_dir"`
		ClickHouse clickhouse.Config `yaml:"clickhouse"`
		// From/To bound the ClickHouse query, "YYYY-MM-DD HH:MM:SS" UTC.
		From string `yaml:"from"`
		To   string `yaml:"to"`
	} `yaml:"source"`

	Strategy strategies.Config `yaml:"strategy"`

	Output struct {
		Dir           string `yaml:"dir"`
		JSONFile      string `yaml:"json_file"`
		MarkdownFile  string `yaml:"markdown_file"`
		TradesCSVFile string `yaml:"trades_csv_file"`
	} `yaml:"output"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

func defaults() *Config {
	cfg := &Config{Strategy: strategies.DefaultConfig()}
	cfg.Symbols = []string{"BTC-USD", "ETH-USD"}
	cfg.Source.Kind = SourceCSV
	cfg.Source.CSVDir = "./data"
	cfg.Source.From = "2024-01-01 00:00:00"
	cfg.Source.To = "2024-07-01 00:00:00"
	cfg.Output.Dir = "./out"
	cfg.Output.JSONFile = "backtest_results.json"
	cfg.Output.MarkdownFile = "backtest_report.md"
	cfg.Output.TradesCSVFile = "trades.csv"
	cfg.Server.Addr = ":8080"
	return cfg
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SYMBOLS"); v != "" {
		parts := strings.Split(v, ",")
		cfg.Symbols = cfg.Symbols[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Symbols = append(cfg.Symbols, p)
			}
		}
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Source.ClickHouse.DSN = v
	}
	if v := os.Getenv("CLICKHOUSE_USER"); v != "" {
		cfg.Source.ClickHouse.User = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		cfg.Source.ClickHouse.Password = v
	}
	if v := os.Getenv("STARTING_CAPITAL"); v != "" {
		capital, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse STARTING_CAPITAL: %w", err)
		}
		cfg.Strategy.StartingCapital = capital
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("no symbols configured")
	}
	switch c.Source.Kind {
	case SourceCSV, SourceClickHouse:
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if err := c.Strategy.Validate(); err != nil {
		return err
	}
	return nil
}
