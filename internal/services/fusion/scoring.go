package fusion

import (
	"fmt"

	"github.com/google/uuid"

	"VolumeScope/internal/domain/models"
)

// maxConfidence caps the summed signal weights.
const maxConfidence = 100.0

// signalWeights maps (category, strength) to its confidence contribution.
// Strengths outside the table (low, developing) contribute nothing.
var signalWeights = map[models.SignalCategory]map[models.SignalStrength]float64{
	models.CategoryEntry: {models.StrengthHigh: 25, models.StrengthMedium: 15},
	models.CategoryExit:  {models.StrengthHigh: 20, models.StrengthMedium: 10},
	models.CategoryAlert: {models.StrengthHigh: 15, models.StrengthMedium: 10},
}

// scoreSignals sums per-signal weights, capped at maxConfidence.
func scoreSignals(signals []models.Signal) float64 {
	total := 0.0
	for _, s := range signals {
		total += signalWeights[s.Category][s.Strength]
	}
	if total > maxConfidence {
		total = maxConfidence
	}
	return total
}

// idNamespace seeds deterministic, content-derived signal IDs so identical
// inputs reproduce identical signal sequences byte for byte.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("volumescope/signal"))

func signalID(key string, ts int64) string {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s@%d", key, ts))).String()
}

// proximityStrength grades a proximity hit by how deep inside the threshold
// the price sits: the closer half of the band is High, the rest Medium.
func proximityStrength(distance, threshold float64) models.SignalStrength {
	if distance < threshold/2 {
		return models.StrengthHigh
	}
	return models.StrengthMedium
}

// concentrationStrength grades a level by its volume relative to the POC.
func concentrationStrength(levelVolume, pocVolume float64) models.SignalStrength {
	if pocVolume <= 0 {
		return models.StrengthLow
	}
	ratio := levelVolume / pocVolume
	switch {
	case ratio >= 0.75:
		return models.StrengthHigh
	case ratio >= 0.40:
		return models.StrengthMedium
	default:
		return models.StrengthLow
	}
}
