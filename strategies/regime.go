package strategies

// Regime is the classified market condition governing risk parameters.
type Regime int

const (
	RegimeUnknown Regime = iota
	RegimeTrendingUp
	RegimeTrendingDown
	RegimeRanging
	RegimeHighVolatility
)

func (r Regime) String() string {
	switch r {
	case RegimeTrendingUp:
		return "trending_up"
	case RegimeTrendingDown:
		return "trending_down"
	case RegimeRanging:
		return "ranging"
	case RegimeHighVolatility:
		return "high_volatility"
	default:
		return "unknown"
	}
}

// RegimeCall pairs the classification with a conviction scalar in [0,1].
// Strength is normalized ADX when trending and the configured baseline
// otherwise; the sizer consumes it multiplicatively.
type RegimeCall struct {
	Regime   Regime
	Strength float64
}

// classifyRegime applies the precedence rules: high volatility overrides
// everything, trends need both ADX strength and full MA alignment with DI
// dominance, everything else ranges.
func classifyRegime(cfg *Config, snap Snapshot, close float64) RegimeCall {
	if snap.Volatility > cfg.HighVolThreshold {
		return RegimeCall{Regime: RegimeHighVolatility, Strength: cfg.BaselineRegimeStrength}
	}

	if snap.ADX > cfg.TrendThreshold {
		strength := snap.ADX / 50
		if strength > 1 {
			strength = 1
		}
		if close > snap.MAFast && snap.MAFast > snap.MAMedium && snap.MAMedium > snap.MASlow &&
			snap.PlusDI > snap.MinusDI {
			return RegimeCall{Regime: RegimeTrendingUp, Strength: strength}
		}
		if close < snap.MAFast && snap.MAFast < snap.MAMedium && snap.MAMedium < snap.MASlow &&
			snap.MinusDI > snap.PlusDI {
			return RegimeCall{Regime: RegimeTrendingDown, Strength: strength}
		}
	}

	return RegimeCall{Regime: RegimeRanging, Strength: cfg.BaselineRegimeStrength}
}
