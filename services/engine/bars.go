package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a single completed OHLCV candle. Timestamps are UTC unix
// milliseconds of the bar open, hourly spaced for this strategy.
type Bar struct {
	Timestamp int64
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// Time returns the bar open time in UTC.
func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// DataIntegrityError reports a bar sequence the indicator math cannot
// consume: non-monotonic timestamps or non-positive prices. It is not
// recoverable locally, callers should abort the run.
type DataIntegrityError struct {
	Index  int
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation at bar %d: %s", e.Index, e.Reason)
}

// ValidateBars checks that the sequence is non-empty, strictly ordered in
// time, and carries positive, coherent prices.
func ValidateBars(bars []Bar) error {
	if len(bars) == 0 {
		return &DataIntegrityError{Index: 0, Reason: "empty bar sequence"}
	}
	for i, b := range bars {
		if !b.Open.IsPositive() || !b.High.IsPositive() || !b.Low.IsPositive() || !b.Close.IsPositive() {
			return &DataIntegrityError{Index: i, Reason: "non-positive price"}
		}
		if b.High.LessThan(b.Low) {
			return &DataIntegrityError{Index: i, Reason: "high below low"}
		}
		if i > 0 && b.Timestamp <= bars[i-1].Timestamp {
			return &DataIntegrityError{Index: i, Reason: fmt.Sprintf("timestamp %d not after previous %d", b.Timestamp, bars[i-1].Timestamp)}
		}
	}
	return nil
}
