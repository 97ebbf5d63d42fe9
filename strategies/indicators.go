package strategies

import (
	"math"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"
)

// Snapshot is the read-only indicator view of one completed bar. It only
// exists once enough lookback has accumulated; callers must check the ok
// flag from indicatorSeries.Snapshot instead of trusting zero values.
type Snapshot struct {
	StochK     float64
	StochD     float64
	ADX        float64
	PlusDI     float64
	MinusDI    float64
	WillR      float64
	MAFast     float64
	MAMedium   float64
	MASlow     float64
	Volatility float64
}

// indicatorSeries precomputes every indicator for a bar sequence. Each
// index i only consumes bars [0..i], so reading values per bar during the
// simulation introduces no lookahead.
type indicatorSeries struct {
	cfg    *Config
	warmup int

	stochK     []float64
	stochD     []float64
	adx        []float64
	plusDI     []float64
	minusDI    []float64
	willr      []float64
	maFast     []float64
	maMedium   []float64
	maSlow     []float64
	volatility []float64
}

func newIndicatorSeries(cfg *Config, bars []engine.Bar) *indicatorSeries {
	n := len(bars)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i, b := range bars {
		highs[i] = b.High.InexactFloat64()
		lows[i] = b.Low.InexactFloat64()
		closes[i] = b.Close.InexactFloat64()
	}

	s := &indicatorSeries{
		cfg:        cfg,
		warmup:     cfg.WarmupBars(),
		stochK:     make([]float64, n),
		stochD:     make([]float64, n),
		adx:        make([]float64, n),
		plusDI:     make([]float64, n),
		minusDI:    make([]float64, n),
		willr:      make([]float64, n),
		maFast:     make([]float64, n),
		maMedium:   make([]float64, n),
		maSlow:     make([]float64, n),
		volatility: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		s.stochK[i] = stochasticK(highs, lows, closes, i, cfg.StochKPeriod)
	}
	for i := 0; i < n; i++ {
		start := i - cfg.StochDPeriod + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += s.stochK[j]
		}
		s.stochD[i] = sum / float64(i-start+1)
	}
	for i := 0; i < n; i++ {
		s.willr[i] = williamsR(highs, lows, closes, i, cfg.WillrPeriod)
		s.maFast[i] = sma(closes, i, cfg.MAFastPeriod)
		s.maMedium[i] = sma(closes, i, cfg.MAMediumPeriod)
		s.maSlow[i] = sma(closes, i, cfg.MASlowPeriod)
		s.volatility[i] = returnVolatility(closes, i, cfg.VolatilityLookback)
	}
	s.computeADX(highs, lows, closes)
	return s
}

// Snapshot returns the indicator view for bar i, or ok=false while the
// lookback window is still filling.
func (s *indicatorSeries) Snapshot(i int) (Snapshot, bool) {
	if i+1 < s.warmup {
		return Snapshot{}, false
	}
	return Snapshot{
		StochK:     s.stochK[i],
		StochD:     s.stochD[i],
		ADX:        s.adx[i],
		PlusDI:     s.plusDI[i],
		MinusDI:    s.minusDI[i],
		WillR:      s.willr[i],
		MAFast:     s.maFast[i],
		MAMedium:   s.maMedium[i],
		MASlow:     s.maSlow[i],
		Volatility: s.volatility[i],
	}, true
}

// stochasticK returns %K over the trailing period, neutral 50 on a flat
// range or while the window is short.
func stochasticK(highs, lows, closes []float64, i, period int) float64 {
	if i+1 < period {
		return 50
	}
	hh, ll := windowRange(highs, lows, i, period)
	if hh == ll {
		return 50
	}
	return (closes[i] - ll) / (hh - ll) * 100
}

// williamsR returns %R in [-100, 0], neutral -50 on a flat range.
func williamsR(highs, lows, closes []float64, i, period int) float64 {
	if i+1 < period {
		return -50
	}
	hh, ll := windowRange(highs, lows, i, period)
	if hh == ll {
		return -50
	}
	return (hh - closes[i]) / (hh - ll) * -100
}

func windowRange(highs, lows []float64, i, period int) (hh, ll float64) {
	hh = highs[i]
	ll = lows[i]
	for j := i - period + 1; j < i; j++ {
		if highs[j] > hh {
			hh = highs[j]
		}
		if lows[j] < ll {
			ll = lows[j]
		}
	}
	return hh, ll
}

func sma(values []float64, i, period int) float64 {
	if i+1 < period {
		return 0
	}
	sum := 0.0
	for j := i - period + 1; j <= i; j++ {
		sum += values[j]
	}
	return sum / float64(period)
}

// returnVolatility is the sample standard deviation of single-bar
// percentage returns over the trailing lookback.
func returnVolatility(closes []float64, i, lookback int) float64 {
	if i < lookback {
		return 0
	}
	returns := make([]float64, 0, lookback)
	for j := i - lookback + 1; j <= i; j++ {
		if closes[j-1] == 0 {
			continue
		}
		returns = append(returns, (closes[j]-closes[j-1])/closes[j-1])
	}
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance)
}

// computeADX fills ADX and the directional indicators using Wilder-style
// running averages: true range and directional movement seed with a simple
// mean over the first period, then smooth as (prev*(p-1)+cur)/p. DX gets
// the same treatment to produce ADX.
func (s *indicatorSeries) computeADX(highs, lows, closes []float64) {
	period := s.cfg.ADXPeriod
	p := float64(period)

	var smTR, smPDM, smMDM float64
	var dxSum, smDX float64
	seeded := 0
	dxCount := 0

	for i := 1; i < len(closes); i++ {
		tr := trueRange(highs[i], lows[i], closes[i-1])
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		var pdm, mdm float64
		if up > down && up > 0 {
			pdm = up
		}
		if down > up && down > 0 {
			mdm = down
		}

		if seeded < period {
			smTR += tr
			smPDM += pdm
			smMDM += mdm
			seeded++
			if seeded < period {
				continue
			}
			smTR /= p
			smPDM /= p
			smMDM /= p
		} else {
			smTR = (smTR*(p-1) + tr) / p
			smPDM = (smPDM*(p-1) + pdm) / p
			smMDM = (smMDM*(p-1) + mdm) / p
		}

		var plusDI, minusDI float64
		if smTR > 0 {
			plusDI = 100 * smPDM / smTR
			minusDI = 100 * smMDM / smTR
		}
		diSum := plusDI + minusDI
		dx := 0.0
		if diSum > 0 {
			dx = math.Abs(plusDI-minusDI) / diSum * 100
		}
		if dxCount < period {
			dxSum += dx
			dxCount++
			smDX = dxSum / float64(dxCount)
		} else {
			smDX = (smDX*(p-1) + dx) / p
		}

		s.adx[i] = smDX
		s.plusDI[i] = plusDI
		s.minusDI[i] = minusDI
	}
}

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if d := math.Abs(high - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(low - prevClose); d > tr {
		tr = d
	}
	return tr
}
