package models

import (
	"fmt"
	"math"
	"time"
)

// Candle represents one interval's OHLCV record. Immutable once appended
// to a series.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// SymbolCandle pairs a candle with the symbol it belongs to, for transport
// between the feed and the analysis service.
type SymbolCandle struct {
	Symbol string
	Candle Candle
}

// Validate checks structural integrity of a single candle. It does not
// check ordering against other candles; the series owns that invariant.
func (c Candle) Validate() error {
	for name, v := range map[string]float64{
		"open":   c.Open,
		"high":   c.High,
		"low":    c.Low,
		"close":  c.Close,
		"volume": c.Volume,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("candle %s: non-finite value %v", name, v)
		}
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("candle timestamp: zero")
	}
	if c.Volume < 0 {
		return fmt.Errorf("candle volume: negative (%f)", c.Volume)
	}
	if c.High < c.Low {
		return fmt.Errorf("candle range: high %f < low %f", c.High, c.Low)
	}
	if c.High < math.Max(c.Open, c.Close) {
		return fmt.Errorf("candle high %f below body max %f", c.High, math.Max(c.Open, c.Close))
	}
	if c.Low > math.Min(c.Open, c.Close) {
		return fmt.Errorf("candle low %f above body min %f", c.Low, math.Min(c.Open, c.Close))
	}
	return nil
}
