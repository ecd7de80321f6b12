package indicators

import (
	"fmt"

	"VolumeScope/internal/domain/models"
	domsvc "VolumeScope/internal/domain/service"
)

// SMA computes the simple moving average of the last `period` values.
// Below `period` samples the result is explicitly invalid, never zero.
func SMA(values []float64, period int) models.IndicatorValue {
	v, ok := smaAt(values, period, len(values)-1)
	return models.IndicatorValue{Value: v, Valid: ok}
}

func smaAt(values []float64, period, idx int) (float64, bool) {
	if period <= 0 || idx+1 < period || idx >= len(values) {
		return 0, false
	}
	sum := 0.0
	for i := idx + 1 - period; i <= idx; i++ {
		sum += values[i]
	}
	return sum / float64(period), true
}

// EMASeries computes the exponential moving average at every index. The
// series is seeded with the SMA of the first `period` values, then follows
// ema[i] = v[i]*k + ema[i-1]*(1-k) with k = 2/(period+1).
func EMASeries(values []float64, period int) []models.IndicatorValue {
	out := make([]models.IndicatorValue, len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	seed, _ := smaAt(values, period, period-1)
	out[period-1] = models.IndicatorValue{Value: seed, Valid: true}
	k := 2.0 / (float64(period) + 1.0)
	prev := seed
	for i := period; i < len(values); i++ {
		cur := values[i]*k + prev*(1-k)
		out[i] = models.IndicatorValue{Value: cur, Valid: true}
		prev = cur
	}
	return out
}

// EMA returns the exponential moving average at the last index.
func EMA(values []float64, period int) models.IndicatorValue {
	s := EMASeries(values, period)
	if len(s) == 0 {
		return models.IndicatorValue{}
	}
	return s[len(s)-1]
}

// Engine computes the moving-average snapshot and crossover events for a
// candle window. It is stateless; crossings are detected from the last two
// indices of the window so each physical crossing fires on exactly one
// candle.
type Engine struct {
	emaFastPeriod   int
	smaMediumPeriod int
	smaSlowPeriod   int
}

// NewEngine creates an indicator engine from analysis settings.
func NewEngine(s models.Settings) *Engine {
	return &Engine{
		emaFastPeriod:   s.EMAFastPeriod,
		smaMediumPeriod: s.SMAMediumPeriod,
		smaSlowPeriod:   s.SMASlowPeriod,
	}
}

// Compute derives the indicator state for the latest candle.
func (e *Engine) Compute(candles []models.Candle) models.IndicatorState {
	var state models.IndicatorState
	if len(candles) == 0 {
		return state
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	emaFast := EMASeries(closes, e.emaFastPeriod)
	last := len(closes) - 1

	state.EMAFast = emaFast[last]
	state.SMAMedium = SMA(closes, e.smaMediumPeriod)
	state.SMASlow = SMA(closes, e.smaSlowPeriod)

	if last < 1 {
		return state
	}
	ts := candles[last].Timestamp

	// EMA(fast) vs SMA(medium)
	if dir, ok := detectCross(
		emaFast[last-1], emaFast[last],
		at(closes, e.smaMediumPeriod, last-1), state.SMAMedium,
	); ok {
		state.Crossovers = append(state.Crossovers, models.Crossover{
			Fast:      fmt.Sprintf("EMA(%d)", e.emaFastPeriod),
			Slow:      fmt.Sprintf("SMA(%d)", e.smaMediumPeriod),
			Direction: dir,
			Timestamp: ts,
		})
	}

	// SMA(medium) vs SMA(slow)
	if dir, ok := detectCross(
		at(closes, e.smaMediumPeriod, last-1), state.SMAMedium,
		at(closes, e.smaSlowPeriod, last-1), state.SMASlow,
	); ok {
		state.Crossovers = append(state.Crossovers, models.Crossover{
			Fast:      fmt.Sprintf("SMA(%d)", e.smaMediumPeriod),
			Slow:      fmt.Sprintf("SMA(%d)", e.smaSlowPeriod),
			Direction: dir,
			Timestamp: ts,
		})
	}
	return state
}

func at(values []float64, period, idx int) models.IndicatorValue {
	v, ok := smaAt(values, period, idx)
	return models.IndicatorValue{Value: v, Valid: ok}
}

// detectCross fires only on the transition candle: the previous fast value
// on or below (above) the slow one, and the current strictly above (below).
// Persisting divergence after a crossing emits nothing.
func detectCross(prevFast, curFast, prevSlow, curSlow models.IndicatorValue) (models.CrossDirection, bool) {
	if !prevFast.Valid || !curFast.Valid || !prevSlow.Valid || !curSlow.Valid {
		return "", false
	}
	if prevFast.Value <= prevSlow.Value && curFast.Value > curSlow.Value {
		return models.CrossBullish, true
	}
	if prevFast.Value >= prevSlow.Value && curFast.Value < curSlow.Value {
		return models.CrossBearish, true
	}
	return "", false
}

var _ domsvc.IndicatorEngine = (*Engine)(nil)
