package strategies

// Sub-score weights. They sum to 1 so the weighted mean stays in the
// nominal [-1,1] band before rescaling.
const (
	weightStochastic = 0.25
	weightADX        = 0.25
	weightWillR      = 0.20
	weightMA         = 0.20
	weightRegime     = 0.10
)

// confidence folds the indicator snapshot and the regime call into one
// score in [0,1]. Values above MinTrendStrength read bullish, below
// BearishThreshold bearish, neutral in between.
func confidence(cfg *Config, snap Snapshot, close float64, call RegimeCall) float64 {
	weighted := weightStochastic*subScoreStochastic(snap) +
		weightADX*subScoreADX(cfg, snap) +
		weightWillR*subScoreWillR(snap) +
		weightMA*subScoreMA(snap, close) +
		weightRegime*subScoreRegime(call)
	weighted /= weightStochastic + weightADX + weightWillR + weightMA + weightRegime

	score := (weighted + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// subScoreStochastic rewards an oversold oscillator turning up and
// penalizes an overbought one turning down.
func subScoreStochastic(snap Snapshot) float64 {
	if snap.StochK < 25 && snap.StochK > snap.StochD {
		return 1
	}
	if snap.StochK > 75 && snap.StochK < snap.StochD {
		return -1
	}
	return 0
}

// subScoreADX is normalized trend strength signed by the dominant
// directional indicator. Below the trend threshold it contributes
// nothing; the magnitude clamps at 1 to keep the sub-score in [-1,1].
func subScoreADX(cfg *Config, snap Snapshot) float64 {
	if snap.ADX <= cfg.TrendThreshold {
		return 0
	}
	magnitude := snap.ADX / 50
	if magnitude > 1 {
		magnitude = 1
	}
	switch {
	case snap.PlusDI > snap.MinusDI:
		return magnitude
	case snap.MinusDI > snap.PlusDI:
		return -magnitude
	default:
		return 0
	}
}

func subScoreWillR(snap Snapshot) float64 {
	if snap.WillR < -75 {
		return 1
	}
	if snap.WillR > -25 {
		return -1
	}
	return 0
}

// subScoreMA grades price position against each average plus an alignment
// bonus. The maximum is 1.3, deliberately above the nominal sub-score
// range and not renormalized; changing that shifts strategy behavior.
func subScoreMA(snap Snapshot, close float64) float64 {
	score := 0.0
	if close > snap.MAFast {
		score += 0.3
	}
	if close > snap.MAMedium {
		score += 0.3
	}
	if close > snap.MASlow {
		score += 0.2
	}
	if snap.MAFast > snap.MAMedium && snap.MAMedium > snap.MASlow {
		score += 0.5
	}
	return score
}

func subScoreRegime(call RegimeCall) float64 {
	switch call.Regime {
	case RegimeTrendingUp:
		return call.Strength
	case RegimeTrendingDown:
		return -call.Strength
	default:
		return 0
	}
}
