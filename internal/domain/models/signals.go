package models

import "time"

// SignalCategory is a closed set; consumers can exhaustively switch on it.
type SignalCategory string

const (
	CategoryEntry SignalCategory = "entry"
	CategoryExit  SignalCategory = "exit"
	CategoryAlert SignalCategory = "alert"
)

// SignalStrength grades a signal. Developing marks signals produced while
// the long-window indicators have not yet accumulated enough samples; it is
// an explicit state, not an approximation of Low.
type SignalStrength string

const (
	StrengthLow        SignalStrength = "low"
	StrengthMedium     SignalStrength = "medium"
	StrengthHigh       SignalStrength = "high"
	StrengthDeveloping SignalStrength = "developing"
)

// SignalDirection is the price direction a signal anticipates.
type SignalDirection string

const (
	DirectionBullish SignalDirection = "bullish"
	DirectionBearish SignalDirection = "bearish"
	DirectionNeutral SignalDirection = "neutral"
)

// Signal subtypes emitted by the fusion engine.
const (
	SubtypePOCProximity        = "POC_PROXIMITY"
	SubtypeVAHProximity        = "VAH_PROXIMITY"
	SubtypeVALProximity        = "VAL_PROXIMITY"
	SubtypeSupportProximity    = "SUPPORT_PROXIMITY"
	SubtypeResistanceProximity = "RESISTANCE_PROXIMITY"
	SubtypePOCBreakBullish     = "POC_BREAK_BULLISH"
	SubtypePOCBreakBearish     = "POC_BREAK_BEARISH"
	SubtypeMACrossBullish      = "MA_CROSS_BULLISH"
	SubtypeMACrossBearish      = "MA_CROSS_BEARISH"
)

// Signal is one fused, deduplicated trading signal. Transient: retained
// only in a capped history for display and journaling.
type Signal struct {
	ID              string
	Category        SignalCategory
	Subtype         string
	Direction       SignalDirection
	Strength        SignalStrength
	Price           float64
	Target          float64 // 0 when not applicable
	Stop            float64 // 0 when not applicable
	SourceTimestamp time.Time
}

// AlertRecord tracks a fired alert key for dedupe and cooldown gating.
// Cooldown expiry is measured against candle timestamps, not wall clock.
type AlertRecord struct {
	Key           string
	Signal        Signal
	FiredAt       time.Time
	CooldownUntil time.Time
}

// FusionState is the fusion engine's only carried state, threaded
// explicitly through each recompute call instead of living in a global.
type FusionState struct {
	Fired map[string]AlertRecord
}

// NewFusionState returns an empty state.
func NewFusionState() FusionState {
	return FusionState{Fired: make(map[string]AlertRecord)}
}

// Clone deep-copies the state so a recompute never mutates its input.
func (s FusionState) Clone() FusionState {
	out := FusionState{Fired: make(map[string]AlertRecord, len(s.Fired))}
	for k, v := range s.Fired {
		out.Fired[k] = v
	}
	return out
}
