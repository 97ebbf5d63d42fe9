package strategies

import "fmt"

// Config holds every tunable of the adaptive trend fusion strategy. All
// thresholds are fixed values evaluated deterministically per bar, there
// is no fitting anywhere.
type Config struct {
	// Stochastic oscillator
	StochKPeriod    int     `yaml:"stoch_k_period"`
	StochDPeriod    int     `yaml:"stoch_d_period"`
	StochOverbought float64 `yaml:"stoch_overbought"`

	// ADX trend strength
	ADXPeriod      int     `yaml:"adx_period"`
	TrendThreshold float64 `yaml:"trend_threshold"`

	// Williams %R
	WillrPeriod     int     `yaml:"willr_period"`
	WillrOverbought float64 `yaml:"willr_overbought"`

	// Moving averages
	MAFastPeriod   int `yaml:"ma_fast_period"`
	MAMediumPeriod int `yaml:"ma_medium_period"`
	MASlowPeriod   int `yaml:"ma_slow_period"`

	// Volatility regime detection
	VolatilityLookback int     `yaml:"volatility_lookback"`
	HighVolThreshold   float64 `yaml:"high_vol_threshold"`

	// Regime strength outside trends, fed multiplicatively to the sizer
	BaselineRegimeStrength float64 `yaml:"baseline_regime_strength"`

	// Position sizing
	MaxPositionPct float64 `yaml:"max_position_pct"`
	MinPositionPct float64 `yaml:"min_position_pct"`
	ReserveBuffer  float64 `yaml:"reserve_buffer"`
	MinNotional    float64 `yaml:"min_notional"`

	// Risk management, adaptive by regime
	TrendingStopLoss     float64 `yaml:"trending_stop_loss"`
	RangingStopLoss      float64 `yaml:"ranging_stop_loss"`
	TakeProfitMultiplier float64 `yaml:"take_profit_multiplier"`
	TrailingActivation   float64 `yaml:"trailing_activation"`
	TrailingDistance     float64 `yaml:"trailing_distance"`

	// Late-exit gain gates
	RegimeExitMinGain     float64 `yaml:"regime_exit_min_gain"`
	ReversalExitMinGain   float64 `yaml:"reversal_exit_min_gain"`
	OverboughtExitMinGain float64 `yaml:"overbought_exit_min_gain"`

	// Entry gating
	MinTrendStrength       float64 `yaml:"min_trend_strength"`
	BearishThreshold       float64 `yaml:"bearish_threshold"`
	RangingEntryConfidence float64 `yaml:"ranging_entry_confidence"`
	HighVolEntryConfidence float64 `yaml:"high_vol_entry_confidence"`
	CooldownHours          int     `yaml:"cooldown_hours"`

	// Account
	StartingCapital float64 `yaml:"starting_capital"`
	CommissionRate  float64 `yaml:"commission_rate"`
}

// DefaultConfig returns the production parameter set.
func DefaultConfig() Config {
	return Config{
		StochKPeriod:    14,
		StochDPeriod:    3,
		StochOverbought: 80,

		ADXPeriod:      14,
		TrendThreshold: 25,

		WillrPeriod:     14,
		WillrOverbought: -20,

		MAFastPeriod:   10,
		MAMediumPeriod: 20,
		MASlowPeriod:   50,

		VolatilityLookback: 24,
		HighVolThreshold:   0.035,

		BaselineRegimeStrength: 0,

		MaxPositionPct: 0.55,
		MinPositionPct: 0.30,
		ReserveBuffer:  0.98,
		MinNotional:    10,

		TrendingStopLoss:     0.12,
		RangingStopLoss:      0.08,
		TakeProfitMultiplier: 2.0,
		TrailingActivation:   0.10,
		TrailingDistance:     0.06,

		RegimeExitMinGain:     0.02,
		ReversalExitMinGain:   0.01,
		OverboughtExitMinGain: 0.03,

		MinTrendStrength:       0.55,
		BearishThreshold:       0.45,
		RangingEntryConfidence: 0.60,
		HighVolEntryConfidence: 0.65,
		CooldownHours:          0,

		StartingCapital: 10000,
		CommissionRate:  0.001,
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	for name, p := range map[string]int{
		"stoch_k_period":      c.StochKPeriod,
		"stoch_d_period":      c.StochDPeriod,
		"adx_period":          c.ADXPeriod,
		"willr_period":        c.WillrPeriod,
		"ma_fast_period":      c.MAFastPeriod,
		"ma_medium_period":    c.MAMediumPeriod,
		"ma_slow_period":      c.MASlowPeriod,
		"volatility_lookback": c.VolatilityLookback,
	} {
		if p < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", name, p)
		}
	}
	if c.VolatilityLookback < 2 {
		return fmt.Errorf("volatility_lookback must be >= 2, got %d", c.VolatilityLookback)
	}
	if !(c.MAFastPeriod < c.MAMediumPeriod && c.MAMediumPeriod < c.MASlowPeriod) {
		return fmt.Errorf("moving average periods must be strictly increasing, got %d/%d/%d",
			c.MAFastPeriod, c.MAMediumPeriod, c.MASlowPeriod)
	}
	if c.MinPositionPct <= 0 || c.MaxPositionPct <= 0 || c.MinPositionPct > c.MaxPositionPct {
		return fmt.Errorf("position pct bounds invalid: min=%.4f max=%.4f", c.MinPositionPct, c.MaxPositionPct)
	}
	if c.TrendingStopLoss <= 0 || c.TrendingStopLoss >= 1 {
		return fmt.Errorf("trending_stop_loss must be in (0,1), got %.4f", c.TrendingStopLoss)
	}
	if c.RangingStopLoss <= 0 || c.RangingStopLoss >= 1 {
		return fmt.Errorf("ranging_stop_loss must be in (0,1), got %.4f", c.RangingStopLoss)
	}
	if c.TakeProfitMultiplier <= 0 {
		return fmt.Errorf("take_profit_multiplier must be positive, got %.4f", c.TakeProfitMultiplier)
	}
	if c.StartingCapital <= 0 {
		return fmt.Errorf("starting_capital must be positive, got %.2f", c.StartingCapital)
	}
	if c.CommissionRate < 0 || c.CommissionRate >= 0.1 {
		return fmt.Errorf("commission_rate out of range: %.4f", c.CommissionRate)
	}
	if c.CooldownHours < 0 {
		return fmt.Errorf("cooldown_hours must not be negative, got %d", c.CooldownHours)
	}
	return nil
}

// WarmupBars is the number of completed bars needed before the first
// snapshot is defined. The slow moving average dominates with default
// settings.
func (c *Config) WarmupBars() int {
	warmup := c.MASlowPeriod
	if n := c.StochKPeriod + c.StochDPeriod - 1; n > warmup {
		warmup = n
	}
	if n := c.ADXPeriod + 1; n > warmup {
		warmup = n
	}
	if n := c.WillrPeriod; n > warmup {
		warmup = n
	}
	if n := c.VolatilityLookback + 1; n > warmup {
		warmup = n
	}
	return warmup
}
