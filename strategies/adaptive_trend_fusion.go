// Package strategies implements the adaptive trend fusion trading
// strategy: volatility-regime detection, a weighted multi-indicator
// confidence score, regime-adaptive position sizing, and a
// single-position trade state machine with a six-way prioritized exit
// cascade.
package strategies

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"
)

// Position is the single open long held by the state machine. It is
// created on entry, mutated every bar while open, and destroyed on exit.
type Position struct {
	Symbol        string
	EntryBarIndex int
	EntryTime     int64
	EntryPrice    decimal.Decimal
	Quantity      decimal.Decimal
	SizeUsd       decimal.Decimal
	EntryFee      decimal.Decimal
	EntryRegime   Regime
	StopPct       float64
	StopLoss      decimal.Decimal
	Target        decimal.Decimal
	HighestClose  decimal.Decimal
}

// Strategy drives one backtest per asset. A Strategy value carries no run
// state, so concurrent Run calls on independent bar sequences are safe.
type Strategy struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Strategy{cfg: cfg, log: logger}, nil
}

func (s *Strategy) Config() Config { return s.cfg }

// runState is the mutable per-run bookkeeping of the state machine.
type runState struct {
	account      *engine.Account
	position     *Position
	lastExitTime int64
	hasExited    bool
	trades       []engine.Trade
	curve        []engine.EquityPoint
	events       *engine.EventLog
}

// Run folds the bar sequence into trades, an equity curve and summary
// statistics. Bars must be strictly ordered with positive prices;
// anything else fails fast before the first decision.
func (s *Strategy) Run(symbol string, bars []engine.Bar) (*engine.Result, error) {
	if err := engine.ValidateBars(bars); err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	cfg := &s.cfg
	log := s.log.With(zap.String("job_id", jobID), zap.String("symbol", symbol))

	ind := newIndicatorSeries(cfg, bars)
	st := &runState{
		account: engine.NewAccount(
			decimal.NewFromFloat(cfg.StartingCapital),
			decimal.NewFromFloat(cfg.CommissionRate),
		),
		curve:  make([]engine.EquityPoint, 0, len(bars)),
		events: &engine.EventLog{},
	}
	st.events.Append(engine.Event{Ts: bars[0].Timestamp, Type: engine.EventRunStart, Symbol: symbol})

	log.Info("starting backtest",
		zap.Int("bars", len(bars)),
		zap.Int("warmup_bars", ind.warmup),
		zap.Float64("starting_capital", cfg.StartingCapital),
	)

	for i, bar := range bars {
		snap, ready := ind.Snapshot(i)
		if !ready {
			// Insufficient lookback: implicit hold, equity still marks.
			st.events.Append(engine.Event{Ts: bar.Timestamp, Type: engine.EventWarmupSkip, Symbol: symbol})
			st.mark(bar)
			continue
		}

		close := bar.Close.InexactFloat64()
		call := classifyRegime(cfg, snap, close)
		conf := confidence(cfg, snap, close, call)

		if st.position != nil {
			s.manageOpenPosition(st, bar, i, snap, call, conf, log)
		} else {
			s.tryEnter(st, bar, i, call, conf, symbol, log)
		}

		st.mark(bar)
	}

	last := bars[len(bars)-1]
	st.events.Append(engine.Event{Ts: last.Timestamp, Type: engine.EventRunEnd, Symbol: symbol})

	summary := engine.Summarize(decimal.NewFromFloat(cfg.StartingCapital), st.trades, st.curve)
	log.Info("backtest complete",
		zap.Int("trades", len(st.trades)),
		zap.String("final_equity", summary.FinalEquity.StringFixed(2)),
		zap.String("total_return_pct", summary.TotalReturnPct.StringFixed(2)),
		zap.String("max_drawdown_pct", summary.MaxDrawdownPct.StringFixed(2)),
	)

	return &engine.Result{
		JobID:   jobID,
		Symbol:  symbol,
		Trades:  st.trades,
		Curve:   st.curve,
		Summary: summary,
		Events:  st.events,
	}, nil
}

// mark appends the mark-to-market equity point for the bar.
func (st *runState) mark(bar engine.Bar) {
	st.curve = append(st.curve, engine.EquityPoint{
		Timestamp: bar.Timestamp,
		Equity:    st.account.Equity(bar.Close),
	})
}

// manageOpenPosition updates the path-dependent state and walks the exit
// cascade; the first matching rule closes the position at the bar close.
func (s *Strategy) manageOpenPosition(st *runState, bar engine.Bar, barIndex int, snap Snapshot, call RegimeCall, conf float64, log *zap.Logger) {
	pos := st.position
	if bar.Close.GreaterThan(pos.HighestClose) {
		pos.HighestClose = bar.Close
	}

	entry := pos.EntryPrice.InexactFloat64()
	close := bar.Close.InexactFloat64()
	gain := 0.0
	if entry != 0 {
		gain = (close - entry) / entry
	}

	reason, hit := evaluateExits(exitContext{
		cfg:        &s.cfg,
		pos:        pos,
		close:      close,
		gain:       gain,
		highest:    pos.HighestClose.InexactFloat64(),
		snap:       snap,
		regime:     call,
		confidence: conf,
	})
	if !hit {
		return
	}
	s.closePosition(st, bar, barIndex, reason, gain, log)
}

func (s *Strategy) closePosition(st *runState, bar engine.Bar, barIndex int, reason engine.ExitReason, gain float64, log *zap.Logger) {
	pos := st.position
	_, exitFee := st.account.Sell(bar.Close, pos.Quantity)
	totalFees := pos.EntryFee.Add(exitFee)
	pnl := bar.Close.Sub(pos.EntryPrice).Mul(pos.Quantity).Sub(totalFees)
	pnlPct := decimal.Zero
	if pos.SizeUsd.IsPositive() {
		pnlPct = pnl.Div(pos.SizeUsd).Mul(decimal.NewFromInt(100))
	}

	trade := engine.Trade{
		Symbol:      pos.Symbol,
		EntryTime:   pos.EntryTime,
		ExitTime:    bar.Timestamp,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   bar.Close,
		Quantity:    pos.Quantity,
		SizeUsd:     pos.SizeUsd,
		FeesUsd:     totalFees,
		PnlUsd:      pnl,
		PnlPct:      pnlPct,
		ExitReason:  reason,
		EntryRegime: pos.EntryRegime.String(),
		BarsHeld:    barIndex - pos.EntryBarIndex + 1,
	}
	st.trades = append(st.trades, trade)
	st.events.Append(engine.Event{
		Ts:     bar.Timestamp,
		Type:   engine.EventExit,
		Symbol: pos.Symbol,
		Details: map[string]string{
			"reason":    string(reason),
			"exit":      bar.Close.StringFixed(2),
			"pnl_usd":   pnl.StringFixed(2),
			"pnl_pct":   pnlPct.StringFixed(2),
			"bars_held": fmt.Sprintf("%d", trade.BarsHeld),
		},
	})
	log.Info("closed position",
		zap.String("reason", string(reason)),
		zap.String("exit_price", bar.Close.StringFixed(2)),
		zap.Float64("gain_pct", gain*100),
		zap.String("pnl_usd", pnl.StringFixed(2)),
	)

	st.lastExitTime = bar.Timestamp
	st.hasExited = true
	st.position = nil
}

// tryEnter applies the entry gate and, when everything holds, opens a
// position at the bar close.
func (s *Strategy) tryEnter(st *runState, bar engine.Bar, barIndex int, call RegimeCall, conf float64, symbol string, log *zap.Logger) {
	cfg := &s.cfg

	if cfg.CooldownHours > 0 && st.hasExited {
		elapsed := bar.Timestamp - st.lastExitTime
		if elapsed < int64(cfg.CooldownHours)*3_600_000 {
			st.events.Append(engine.Event{Ts: bar.Timestamp, Type: engine.EventCooldownHold, Symbol: symbol})
			return
		}
	}

	if ok, why := entryAllowed(cfg, call, conf); !ok {
		if why != "" {
			st.events.Append(engine.Event{
				Ts: bar.Timestamp, Type: engine.EventEntryRejected, Symbol: symbol,
				Details: map[string]string{"reason": why, "regime": call.Regime.String()},
			})
		}
		return
	}

	equity := st.account.Equity(bar.Close)
	qty, notional, ok := positionSize(cfg, call, conf, equity, bar.Close)
	if !ok {
		st.events.Append(engine.Event{
			Ts: bar.Timestamp, Type: engine.EventEntryRejected, Symbol: symbol,
			Details: map[string]string{"reason": "below_min_notional", "regime": call.Regime.String()},
		})
		return
	}

	sized, entryFee, ok := st.account.Buy(bar.Close, qty)
	if !ok {
		// Reserve buffer should prevent this; treat as a sizing reject.
		st.events.Append(engine.Event{
			Ts: bar.Timestamp, Type: engine.EventEntryRejected, Symbol: symbol,
			Details: map[string]string{"reason": "insufficient_cash"},
		})
		return
	}

	stopPct := cfg.RangingStopLoss
	if call.Regime == RegimeTrendingUp {
		stopPct = cfg.TrendingStopLoss
	}
	one := decimal.NewFromInt(1)
	st.position = &Position{
		Symbol:        symbol,
		EntryBarIndex: barIndex,
		EntryTime:     bar.Timestamp,
		EntryPrice:    bar.Close,
		Quantity:      qty,
		SizeUsd:       sized,
		EntryFee:      entryFee,
		EntryRegime:   call.Regime,
		StopPct:       stopPct,
		StopLoss:      bar.Close.Mul(one.Sub(decimal.NewFromFloat(stopPct))),
		Target:        bar.Close.Mul(one.Add(decimal.NewFromFloat(stopPct * cfg.TakeProfitMultiplier))),
		HighestClose:  bar.Close,
	}
	st.events.Append(engine.Event{
		Ts:     bar.Timestamp,
		Type:   engine.EventEntry,
		Symbol: symbol,
		Details: map[string]string{
			"regime":     call.Regime.String(),
			"confidence": fmt.Sprintf("%.2f", conf),
			"entry":      bar.Close.StringFixed(2),
			"stop_loss":  st.position.StopLoss.StringFixed(2),
			"target":     st.position.Target.StringFixed(2),
			"size_usd":   notional.StringFixed(2),
		},
	})
	log.Info("opened position",
		zap.String("regime", call.Regime.String()),
		zap.Float64("confidence", conf),
		zap.String("entry_price", bar.Close.StringFixed(2)),
		zap.String("stop_loss", st.position.StopLoss.StringFixed(2)),
		zap.String("target", st.position.Target.StringFixed(2)),
		zap.String("size_usd", notional.StringFixed(2)),
	)
}

// entryAllowed gates entries by regime: downtrends never enter, trends
// require bullish confidence, ranging and high-volatility markets demand
// a stricter bar.
func entryAllowed(cfg *Config, call RegimeCall, conf float64) (bool, string) {
	if conf <= cfg.MinTrendStrength {
		return false, ""
	}
	switch call.Regime {
	case RegimeTrendingDown:
		return false, "unfavorable_regime"
	case RegimeTrendingUp:
		return true, ""
	case RegimeRanging:
		if conf <= cfg.RangingEntryConfidence {
			return false, "confidence_below_ranging_bar"
		}
		return true, ""
	case RegimeHighVolatility:
		if conf <= cfg.HighVolEntryConfidence {
			return false, "confidence_below_high_vol_bar"
		}
		return true, ""
	default:
		return false, "unknown_regime"
	}
}
