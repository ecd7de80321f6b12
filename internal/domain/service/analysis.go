package service

import (
	"VolumeScope/internal/domain/models"
)

// HistogramBuilder bins a candle window into price levels weighted by volume.
type HistogramBuilder interface {
	Build(candles []models.Candle) (*models.VolumeProfile, error)
}

// ValueAreaCalculator selects the point of control and expands the value
// area around it to the configured volume fraction.
type ValueAreaCalculator interface {
	Apply(profile *models.VolumeProfile, lastClose float64) error
}

// LevelClassifier labels profile levels as high/low-volume nodes and splits
// high-volume nodes into support and resistance around the current price.
type LevelClassifier interface {
	Classify(profile *models.VolumeProfile, currentPrice float64) models.LevelClassification
}

// IndicatorEngine computes moving averages over closes and detects
// crossover transitions between them.
type IndicatorEngine interface {
	Compute(candles []models.Candle) models.IndicatorState
}

// FusionEngine combines profile levels, classification, and indicators into
// deduplicated, cooldown-gated signals. It is pure: the returned state is a
// new value and the prior state is never mutated.
type FusionEngine interface {
	Fuse(in models.FusionInput, prev models.FusionState) models.FusionResult
}
