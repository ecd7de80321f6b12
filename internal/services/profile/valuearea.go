package profile

import (
	"fmt"
	"math"

	"VolumeScope/internal/domain/models"
	domsvc "VolumeScope/internal/domain/service"
)

// ValueArea finds the point of control and expands around it until the
// accumulated volume reaches the configured fraction of total volume.
type ValueArea struct {
	targetFraction float64
}

// NewValueArea creates a value-area calculator from analysis settings.
func NewValueArea(s models.Settings) *ValueArea {
	return &ValueArea{targetFraction: s.ValueAreaFraction}
}

// Apply sets POC, ValueAreaHigh, and ValueAreaLow on the profile in place.
// A profile without levels is left untouched (nil POC is a valid state for
// an empty window).
func (v *ValueArea) Apply(profile *models.VolumeProfile, lastClose float64) error {
	if profile == nil {
		return fmt.Errorf("value area: nil profile")
	}
	if len(profile.Levels) == 0 {
		return nil
	}

	pocIdx := v.pickPOC(profile.Levels, lastClose)
	poc := profile.Levels[pocIdx]
	profile.POC = &poc

	lowIdx, highIdx := v.expand(profile.Levels, pocIdx, profile.TotalVolume)
	low := profile.Levels[lowIdx]
	high := profile.Levels[highIdx]
	profile.ValueAreaLow = &low
	profile.ValueAreaHigh = &high
	return nil
}

// pickPOC returns the index of the max-volume level. Volume ties break
// toward the level whose price is closest to the last close so results do
// not depend on bucket iteration order.
func (v *ValueArea) pickPOC(levels []models.PriceLevel, lastClose float64) int {
	best := 0
	for i := 1; i < len(levels); i++ {
		switch {
		case levels[i].Volume > levels[best].Volume:
			best = i
		case levels[i].Volume == levels[best].Volume:
			di := math.Abs(levels[i].Price() - lastClose)
			db := math.Abs(levels[best].Price() - lastClose)
			if di < db {
				best = i
			}
		}
	}
	return best
}

// expand grows the value area from the POC outward, stepping toward the
// neighbor with more volume (ties step downward), until the accumulated
// volume reaches targetFraction of total or both sides are exhausted.
func (v *ValueArea) expand(levels []models.PriceLevel, pocIdx int, totalVolume float64) (lowIdx, highIdx int) {
	lowIdx, highIdx = pocIdx, pocIdx
	accumulated := levels[pocIdx].Volume
	target := v.targetFraction * totalVolume

	for accumulated < target {
		canDown := lowIdx > 0
		canUp := highIdx < len(levels)-1
		if !canDown && !canUp {
			break
		}

		downVol := math.Inf(-1)
		if canDown {
			downVol = levels[lowIdx-1].Volume
		}
		upVol := math.Inf(-1)
		if canUp {
			upVol = levels[highIdx+1].Volume
		}

		if downVol >= upVol {
			lowIdx--
			accumulated += downVol
		} else {
			highIdx++
			accumulated += upVol
		}
	}
	return lowIdx, highIdx
}

var _ domsvc.ValueAreaCalculator = (*ValueArea)(nil)
