package models

import "time"

// LevelClassification labels the profile's levels relative to volume
// distribution and the current price.
type LevelClassification struct {
	HVNs       []PriceLevel // high-volume nodes, top 20% by volume
	LVNs       []PriceLevel // low-volume nodes (gaps), bottom 30% with volume > 0
	Support    []PriceLevel // HVNs below current price, nearest first, max 3
	Resistance []PriceLevel // HVNs above current price, nearest first, max 3
}

// FusionInput bundles everything the fusion engine reads. All fields are
// treated as immutable.
type FusionInput struct {
	Symbol       string
	Profile      *VolumeProfile
	Levels       LevelClassification
	Indicators   IndicatorState
	CurrentPrice float64
	Timestamp    time.Time // latest candle timestamp; cooldowns key off this
	Settings     Settings
}

// FusionResult is the output of one fusion pass.
type FusionResult struct {
	Signals    []Signal
	Confidence float64 // summed signal weights, capped at 100
	State      FusionState
}
