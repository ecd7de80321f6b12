package profile

import (
	"fmt"
	"math"

	"VolumeScope/internal/domain/models"
	domsvc "VolumeScope/internal/domain/service"
)

// substituteVolume stands in for candles reporting zero volume so the candle
// still contributes its price range to the histogram. Profiles built with it
// are marked Approximated.
const substituteVolume = 1.0

// Builder bins candles into price levels weighted by volume.
type Builder struct {
	minimalStep float64
	numLevels   int // explicit override; 0 means adaptive
	minLevels   int
	maxLevels   int
	noiseFloor  float64 // fraction of total volume below which levels are dropped
}

// NewBuilder creates a histogram builder from analysis settings.
func NewBuilder(s models.Settings) *Builder {
	return &Builder{
		minimalStep: s.MinimalStep,
		numLevels:   s.NumLevels,
		minLevels:   s.MinLevels,
		maxLevels:   s.MaxLevels,
		noiseFloor:  s.NoiseFloorFraction,
	}
}

// Build computes the volume histogram for a candle window. An empty window
// yields a valid empty profile, not an error.
func (b *Builder) Build(candles []models.Candle) (*models.VolumeProfile, error) {
	if len(candles) == 0 {
		return &models.VolumeProfile{}, nil
	}

	minLow := math.Inf(1)
	maxHigh := math.Inf(-1)
	for _, c := range candles {
		if c.Low < minLow {
			minLow = c.Low
		}
		if c.High > maxHigh {
			maxHigh = c.High
		}
	}
	priceRange := maxHigh - minLow
	if priceRange < 0 {
		return nil, fmt.Errorf("histogram: negative price range %f", priceRange)
	}

	numLevels := b.levelCount(priceRange)
	if priceRange == 0 {
		// All candles printed one price; the whole window is one bucket.
		numLevels = 1
	}
	levelSize := priceRange / float64(numLevels)

	volumes := make([]float64, numLevels)
	touches := make([]int, numLevels)
	approximated := false
	total := 0.0

	for _, c := range candles {
		vol := c.Volume
		if vol == 0 {
			vol = substituteVolume
			approximated = true
		}
		total += vol

		start := b.bucketIndex(c.Low, minLow, levelSize, numLevels)
		end := b.bucketIndex(c.High, minLow, levelSize, numLevels)
		span := end - start + 1
		perLevel := vol / float64(span)
		for i := start; i <= end; i++ {
			volumes[i] += perLevel
			touches[i]++
		}
	}

	floor := total * b.noiseFloor
	levels := make([]models.PriceLevel, 0, numLevels)
	for i := 0; i < numLevels; i++ {
		if volumes[i] <= 0 || volumes[i] < floor {
			continue
		}
		lo := minLow + float64(i)*levelSize
		hi := lo + levelSize
		if priceRange == 0 {
			hi = maxHigh
		}
		levels = append(levels, models.PriceLevel{
			PriceLow:  lo,
			PriceHigh: hi,
			Volume:    volumes[i],
			Touches:   touches[i],
		})
	}

	return &models.VolumeProfile{
		Levels:       levels,
		TotalVolume:  total,
		Approximated: approximated,
	}, nil
}

// levelCount applies the adaptive rule clamp(range/minimalStep, min, max)
// unless an explicit count is configured.
func (b *Builder) levelCount(priceRange float64) int {
	if b.numLevels > 0 {
		return b.numLevels
	}
	n := int(math.Floor(priceRange / b.minimalStep))
	if n < b.minLevels {
		n = b.minLevels
	}
	if n > b.maxLevels {
		n = b.maxLevels
	}
	return n
}

func (b *Builder) bucketIndex(price, minLow, levelSize float64, numLevels int) int {
	if levelSize <= 0 {
		return 0
	}
	idx := int((price - minLow) / levelSize)
	if idx < 0 {
		idx = 0
	}
	if idx >= numLevels {
		idx = numLevels - 1
	}
	return idx
}

var _ domsvc.HistogramBuilder = (*Builder)(nil)
