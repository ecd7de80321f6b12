package fusion

import (
	"fmt"
	"math"
	"strings"

	"VolumeScope/internal/domain/models"
	domsvc "VolumeScope/internal/domain/service"
)

// Engine fuses profile levels, classification, and indicator state into
// deduplicated, cooldown-gated signals. It carries no state of its own:
// everything it remembers between calls lives in the FusionState threaded
// through Fuse, so two calls with identical inputs yield identical outputs.
type Engine struct{}

// NewEngine creates a fusion engine.
func NewEngine() *Engine { return &Engine{} }

// candidate is a signal before dedupe/cooldown gating.
type candidate struct {
	target string // third component of the alert key
	signal models.Signal
}

// Fuse runs all signal rules against the input and gates the results
// through the per-key cooldown state machine. Cooldowns compare candle
// timestamps, never the wall clock, so replays are reproducible.
func (e *Engine) Fuse(in models.FusionInput, prev models.FusionState) models.FusionResult {
	next := prev.Clone()
	if next.Fired == nil {
		next.Fired = make(map[string]models.AlertRecord)
	}

	var emitted []models.Signal
	for _, cand := range e.collect(in) {
		key := alertKey(cand.signal.Category, cand.signal.Subtype, cand.target)
		if rec, ok := next.Fired[key]; ok && !in.Timestamp.After(rec.CooldownUntil) {
			continue // still cooling down for this key
		}

		sig := cand.signal
		sig.ID = signalID(key, in.Timestamp.UnixMilli())
		sig.SourceTimestamp = in.Timestamp
		emitted = append(emitted, sig)
		next.Fired[key] = models.AlertRecord{
			Key:           key,
			Signal:        sig,
			FiredAt:       in.Timestamp,
			CooldownUntil: in.Timestamp.Add(in.Settings.AlertCooldown),
		}
	}

	return models.FusionResult{
		Signals:    emitted,
		Confidence: scoreSignals(emitted),
		State:      next,
	}
}

// collect evaluates every rule in a fixed order so output ordering is
// stable: POC/value-area proximity, level proximity, directional breaks,
// then moving-average crossovers.
func (e *Engine) collect(in models.FusionInput) []candidate {
	var out []candidate
	if in.CurrentPrice <= 0 {
		return out
	}
	out = append(out, e.proximity(in)...)
	out = append(out, e.levelProximity(in)...)
	out = append(out, e.directional(in)...)
	out = append(out, e.crossovers(in)...)
	return out
}

// proximity emits alerts when price approaches POC, VAH, or VAL.
func (e *Engine) proximity(in models.FusionInput) []candidate {
	p := in.Profile
	if p == nil || p.POC == nil {
		return nil
	}
	var out []candidate

	if dist := relDistance(in.CurrentPrice, p.POC.Price()); dist < in.Settings.POCDistance {
		out = append(out, candidate{
			target: in.Symbol,
			signal: models.Signal{
				Category:  models.CategoryAlert,
				Subtype:   models.SubtypePOCProximity,
				Direction: models.DirectionNeutral,
				Strength:  developing(in, models.StrengthHigh),
				Price:     p.POC.Price(),
			},
		})
	}
	if !p.HasValueArea() {
		return out
	}

	if dist := relDistance(in.CurrentPrice, p.ValueAreaHigh.Price()); dist < in.Settings.ValueAreaDistance {
		out = append(out, candidate{
			target: in.Symbol,
			signal: models.Signal{
				Category:  models.CategoryExit,
				Subtype:   models.SubtypeVAHProximity,
				Direction: models.DirectionBearish,
				Strength:  developing(in, proximityStrength(dist, in.Settings.ValueAreaDistance)),
				Price:     p.ValueAreaHigh.Price(),
			},
		})
	}
	if dist := relDistance(in.CurrentPrice, p.ValueAreaLow.Price()); dist < in.Settings.ValueAreaDistance {
		out = append(out, candidate{
			target: in.Symbol,
			signal: models.Signal{
				Category:  models.CategoryEntry,
				Subtype:   models.SubtypeVALProximity,
				Direction: models.DirectionBullish,
				Strength:  developing(in, proximityStrength(dist, in.Settings.ValueAreaDistance)),
				Price:     p.ValueAreaLow.Price(),
			},
		})
	}
	return out
}

// levelProximity emits alerts when price approaches a classified support or
// resistance node. Each level is its own alert key, so distinct levels can
// fire independently while one level stays deduplicated.
func (e *Engine) levelProximity(in models.FusionInput) []candidate {
	if in.Profile == nil || in.Profile.POC == nil {
		return nil
	}
	var out []candidate
	pocVol := in.Profile.POC.Volume

	emit := func(lvl models.PriceLevel, subtype string, dir models.SignalDirection) {
		dist := relDistance(in.CurrentPrice, lvl.Price())
		if dist >= in.Settings.LevelDistance {
			return
		}
		out = append(out, candidate{
			target: levelTarget(in.Symbol, lvl),
			signal: models.Signal{
				Category:  models.CategoryAlert,
				Subtype:   subtype,
				Direction: dir,
				Strength:  developing(in, concentrationStrength(lvl.Volume, pocVol)),
				Price:     lvl.Price(),
			},
		})
	}

	for _, lvl := range in.Levels.Support {
		emit(lvl, models.SubtypeSupportProximity, models.DirectionBullish)
	}
	for _, lvl := range in.Levels.Resistance {
		emit(lvl, models.SubtypeResistanceProximity, models.DirectionBearish)
	}
	return out
}

// directional emits entry signals when price breaks out of the POC bucket,
// with the opposite value-area bound as target and an offset stop.
func (e *Engine) directional(in models.FusionInput) []candidate {
	p := in.Profile
	if p == nil || !p.HasValueArea() {
		return nil
	}
	poc := p.POC

	var sig models.Signal
	switch {
	case in.CurrentPrice > poc.PriceHigh:
		sig = models.Signal{
			Category:  models.CategoryEntry,
			Subtype:   models.SubtypePOCBreakBullish,
			Direction: models.DirectionBullish,
			Strength:  e.breakStrength(in, models.DirectionBullish),
			Price:     in.CurrentPrice,
			Target:    p.ValueAreaHigh.Price(),
			Stop:      poc.Price() * (1 - in.Settings.StopOffset),
		}
	case in.CurrentPrice < poc.PriceLow:
		sig = models.Signal{
			Category:  models.CategoryEntry,
			Subtype:   models.SubtypePOCBreakBearish,
			Direction: models.DirectionBearish,
			Strength:  e.breakStrength(in, models.DirectionBearish),
			Price:     in.CurrentPrice,
			Target:    p.ValueAreaLow.Price(),
			Stop:      poc.Price() * (1 + in.Settings.StopOffset),
		}
	default:
		return nil // price inside the POC bucket; no break
	}
	return []candidate{{target: in.Symbol, signal: sig}}
}

// breakStrength grades a POC break by trend agreement: High when the fast
// average sits on the break's side of the medium one, Medium otherwise,
// Developing while the long window has insufficient data.
func (e *Engine) breakStrength(in models.FusionInput, dir models.SignalDirection) models.SignalStrength {
	ind := in.Indicators
	if !ind.TrendReady() {
		return models.StrengthDeveloping
	}
	if !ind.EMAFast.Valid || !ind.SMAMedium.Valid {
		return models.StrengthMedium
	}
	agrees := ind.EMAFast.Value > ind.SMAMedium.Value
	if dir == models.DirectionBearish {
		agrees = ind.EMAFast.Value < ind.SMAMedium.Value
	}
	if agrees {
		return models.StrengthHigh
	}
	return models.StrengthMedium
}

// crossovers translates moving-average crossings into entry/exit signals.
// Crossings already fire once per transition in the indicator engine; the
// cooldown key here only prevents duplicates across identical recomputes.
func (e *Engine) crossovers(in models.FusionInput) []candidate {
	var out []candidate
	for _, x := range in.Indicators.Crossovers {
		pair := x.Fast + "/" + x.Slow
		slowIsLong := strings.Contains(x.Slow, fmt.Sprintf("(%d)", in.Settings.SMASlowPeriod))

		strength := models.StrengthMedium
		if slowIsLong {
			strength = models.StrengthHigh
		} else if !in.Indicators.TrendReady() {
			strength = models.StrengthDeveloping
		}

		sig := models.Signal{
			Price: in.CurrentPrice,
		}
		switch x.Direction {
		case models.CrossBullish:
			sig.Category = models.CategoryEntry
			sig.Subtype = models.SubtypeMACrossBullish
			sig.Direction = models.DirectionBullish
		case models.CrossBearish:
			sig.Category = models.CategoryExit
			sig.Subtype = models.SubtypeMACrossBearish
			sig.Direction = models.DirectionBearish
		default:
			continue
		}
		sig.Strength = strength
		out = append(out, candidate{target: in.Symbol + ":" + pair, signal: sig})
	}
	return out
}

// developing downgrades a strength to the explicit developing state while
// the long-window indicator has insufficient data.
func developing(in models.FusionInput, s models.SignalStrength) models.SignalStrength {
	if !in.Indicators.TrendReady() {
		return models.StrengthDeveloping
	}
	return s
}

func alertKey(cat models.SignalCategory, subtype, target string) string {
	return string(cat) + "|" + subtype + "|" + target
}

func levelTarget(symbol string, lvl models.PriceLevel) string {
	return fmt.Sprintf("%s:%.8f", symbol, lvl.PriceLow)
}

func relDistance(price, level float64) float64 {
	return math.Abs(price-level) / price
}

var _ domsvc.FusionEngine = (*Engine)(nil)
