package profile

import (
	"math"
	"sort"

	"VolumeScope/internal/domain/models"
	domsvc "VolumeScope/internal/domain/service"
)

const (
	hvnFraction   = 0.20 // top share of levels by volume
	lvnFraction   = 0.30 // bottom share of levels with volume > 0
	maxNearLevels = 3    // support/resistance levels kept per side
)

// Classifier labels profile levels as high/low-volume nodes and derives
// support/resistance sets relative to the current price.
type Classifier struct{}

// NewClassifier creates a level classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// Classify computes HVN/LVN sets and the nearest support/resistance levels.
func (c *Classifier) Classify(profile *models.VolumeProfile, currentPrice float64) models.LevelClassification {
	var out models.LevelClassification
	if profile == nil || len(profile.Levels) == 0 {
		return out
	}

	byVolume := make([]models.PriceLevel, len(profile.Levels))
	copy(byVolume, profile.Levels)
	sort.Slice(byVolume, func(i, j int) bool { return byVolume[i].Volume > byVolume[j].Volume })

	n := len(byVolume)
	hvnCount := int(float64(n) * hvnFraction)
	if hvnCount < 1 {
		hvnCount = 1
	}
	hvnThreshold := byVolume[hvnCount-1].Volume

	lvnCount := int(float64(n) * lvnFraction)
	var lvnThreshold float64
	if lvnCount > 0 {
		lvnThreshold = byVolume[n-lvnCount].Volume
	}

	// Preserve price ordering in the output sets.
	for _, lvl := range profile.Levels {
		if lvl.Volume >= hvnThreshold {
			out.HVNs = append(out.HVNs, lvl)
			continue
		}
		if lvnCount > 0 && lvl.Volume > 0 && lvl.Volume <= lvnThreshold {
			out.LVNs = append(out.LVNs, lvl)
		}
	}

	out.Support = nearestSide(out.HVNs, currentPrice, func(p float64) bool { return p < currentPrice })
	out.Resistance = nearestSide(out.HVNs, currentPrice, func(p float64) bool { return p > currentPrice })
	return out
}

// nearestSide filters levels to one side of the current price and keeps the
// closest maxNearLevels, nearest first.
func nearestSide(levels []models.PriceLevel, currentPrice float64, side func(float64) bool) []models.PriceLevel {
	picked := make([]models.PriceLevel, 0, len(levels))
	for _, lvl := range levels {
		if side(lvl.Price()) {
			picked = append(picked, lvl)
		}
	}
	sort.Slice(picked, func(i, j int) bool {
		return math.Abs(picked[i].Price()-currentPrice) < math.Abs(picked[j].Price()-currentPrice)
	})
	if len(picked) > maxNearLevels {
		picked = picked[:maxNearLevels]
	}
	return picked
}

var _ domsvc.LevelClassifier = (*Classifier)(nil)
