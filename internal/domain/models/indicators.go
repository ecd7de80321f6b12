package models

import "time"

// IndicatorValue carries a computed indicator together with an explicit
// validity flag. Valid is false while fewer than `period` samples exist;
// consumers must never read Value as zero in that case.
type IndicatorValue struct {
	Value float64
	Valid bool
}

// CrossDirection labels the side of a moving-average crossover.
type CrossDirection string

const (
	CrossBullish CrossDirection = "bullish"
	CrossBearish CrossDirection = "bearish"
)

// Crossover is a single moving-average crossing event. It fires exactly
// once per physical crossing, on the transition candle.
type Crossover struct {
	Fast      string // e.g. "EMA(12)"
	Slow      string // e.g. "SMA(50)"
	Direction CrossDirection
	Timestamp time.Time
}

// IndicatorState is the per-series trend snapshot for the latest candle.
type IndicatorState struct {
	EMAFast    IndicatorValue
	SMAMedium  IndicatorValue
	SMASlow    IndicatorValue
	Crossovers []Crossover // crossings that fired on the latest candle
}

// TrendReady reports whether the long-window indicator has enough data.
// Until then, dependent signals stay in the developing state.
func (s IndicatorState) TrendReady() bool {
	return s.SMASlow.Valid
}
