package fusion

import (
	"reflect"
	"testing"
	"time"

	"VolumeScope/internal/domain/models"
)

func lvl(low, high, vol float64) models.PriceLevel {
	return models.PriceLevel{PriceLow: low, PriceHigh: high, Volume: vol}
}

func readyIndicators() models.IndicatorState {
	return models.IndicatorState{
		EMAFast:   models.IndicatorValue{Value: 101, Valid: true},
		SMAMedium: models.IndicatorValue{Value: 100, Valid: true},
		SMASlow:   models.IndicatorValue{Value: 99, Valid: true},
	}
}

func baseInput(price float64, ts time.Time) models.FusionInput {
	levels := []models.PriceLevel{
		lvl(98, 99, 50),
		lvl(99, 100, 200),
		lvl(100, 101, 80),
	}
	poc := levels[1]
	val := levels[0]
	vah := levels[2]
	return models.FusionInput{
		Symbol: "BTCUSDT",
		Profile: &models.VolumeProfile{
			Levels:        levels,
			POC:           &poc,
			ValueAreaLow:  &val,
			ValueAreaHigh: &vah,
			TotalVolume:   330,
		},
		Indicators:   readyIndicators(),
		CurrentPrice: price,
		Timestamp:    ts,
		Settings:     models.DefaultSettings(),
	}
}

func TestFusePOCProximityAlert(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := baseInput(99.55, ts) // POC midpoint 99.5, well within 0.2%

	res := NewEngine().Fuse(in, models.NewFusionState())
	var found *models.Signal
	for i, s := range res.Signals {
		if s.Subtype == models.SubtypePOCProximity {
			found = &res.Signals[i]
		}
	}
	if found == nil {
		t.Fatalf("no POC proximity alert in %+v", res.Signals)
	}
	if found.Category != models.CategoryAlert || found.Strength != models.StrengthHigh {
		t.Fatalf("unexpected alert grading: %+v", found)
	}
	if found.SourceTimestamp != ts {
		t.Fatalf("signal must carry the candle timestamp")
	}
	if found.ID == "" {
		t.Fatalf("signal must carry a deterministic id")
	}
}

func TestFuseCooldownGate(t *testing.T) {
	e := NewEngine()
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cooldown := models.DefaultSettings().AlertCooldown

	res1 := e.Fuse(baseInput(99.55, t0), models.NewFusionState())
	if len(res1.Signals) == 0 {
		t.Fatalf("expected initial emission")
	}

	// Exactly at expiry the key is still cooling down.
	res2 := e.Fuse(baseInput(99.55, t0.Add(cooldown)), res1.State)
	for _, s := range res2.Signals {
		if s.Subtype == models.SubtypePOCProximity {
			t.Fatalf("signal re-emitted at cooldown boundary")
		}
	}

	// One step past expiry it fires again.
	res3 := e.Fuse(baseInput(99.55, t0.Add(cooldown+time.Millisecond)), res2.State)
	found := false
	for _, s := range res3.Signals {
		if s.Subtype == models.SubtypePOCProximity {
			found = true
		}
	}
	if !found {
		t.Fatalf("signal not re-emitted after cooldown expiry")
	}
}

func TestFuseDoesNotMutatePriorState(t *testing.T) {
	prev := models.NewFusionState()
	_ = NewEngine().Fuse(baseInput(99.55, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)), prev)
	if len(prev.Fired) != 0 {
		t.Fatalf("prior state mutated: %+v", prev.Fired)
	}
}

func TestFuseDeterministic(t *testing.T) {
	e := NewEngine()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := e.Fuse(baseInput(99.55, ts), models.NewFusionState())
	b := e.Fuse(baseInput(99.55, ts), models.NewFusionState())
	if !reflect.DeepEqual(a.Signals, b.Signals) {
		t.Fatalf("identical inputs produced different signals:\n%+v\n%+v", a.Signals, b.Signals)
	}
	if a.Confidence != b.Confidence {
		t.Fatalf("confidence differs: %f vs %f", a.Confidence, b.Confidence)
	}
}

func TestFuseDirectionalBreakBullish(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := baseInput(102, ts) // above POC bucket [99,100)

	res := NewEngine().Fuse(in, models.NewFusionState())
	var brk *models.Signal
	for i, s := range res.Signals {
		if s.Subtype == models.SubtypePOCBreakBullish {
			brk = &res.Signals[i]
		}
	}
	if brk == nil {
		t.Fatalf("no bullish break in %+v", res.Signals)
	}
	if brk.Category != models.CategoryEntry || brk.Direction != models.DirectionBullish {
		t.Fatalf("unexpected break shape: %+v", brk)
	}
	if brk.Target != in.Profile.ValueAreaHigh.Price() {
		t.Fatalf("target = %f, want VAH midpoint", brk.Target)
	}
	wantStop := in.Profile.POC.Price() * (1 - in.Settings.StopOffset)
	if brk.Stop != wantStop {
		t.Fatalf("stop = %f, want %f", brk.Stop, wantStop)
	}
	// Fast above medium agrees with a bullish break.
	if brk.Strength != models.StrengthHigh {
		t.Fatalf("strength = %s, want high on trend agreement", brk.Strength)
	}
}

func TestFuseDevelopingWhileTrendNotReady(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := baseInput(99.55, ts)
	in.Indicators.SMASlow = models.IndicatorValue{} // long window not filled

	res := NewEngine().Fuse(in, models.NewFusionState())
	if len(res.Signals) == 0 {
		t.Fatalf("expected signals")
	}
	for _, s := range res.Signals {
		if s.Subtype == models.SubtypePOCProximity && s.Strength != models.StrengthDeveloping {
			t.Fatalf("strength = %s, want developing", s.Strength)
		}
	}
	// Developing signals contribute nothing to confidence.
	if res.Confidence != 0 {
		t.Fatalf("confidence = %f, want 0 for developing-only output", res.Confidence)
	}
}

func TestFuseSkipsWithoutPrice(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := baseInput(0, ts)
	res := NewEngine().Fuse(in, models.NewFusionState())
	if len(res.Signals) != 0 {
		t.Fatalf("signals emitted without a price: %+v", res.Signals)
	}
}

func TestScoreSignalsCapped(t *testing.T) {
	var sigs []models.Signal
	for i := 0; i < 6; i++ {
		sigs = append(sigs, models.Signal{Category: models.CategoryEntry, Strength: models.StrengthHigh})
	}
	if got := scoreSignals(sigs); got != maxConfidence {
		t.Fatalf("score = %f, want capped at %f", got, maxConfidence)
	}
}

func TestScoreSignalsWeights(t *testing.T) {
	// entry/high 25 + exit/medium 10 + alert/high 15; low and developing add 0
	sigs := []models.Signal{
		{Category: models.CategoryEntry, Strength: models.StrengthHigh},
		{Category: models.CategoryExit, Strength: models.StrengthMedium},
		{Category: models.CategoryAlert, Strength: models.StrengthHigh},
		{Category: models.CategoryAlert, Strength: models.StrengthLow},
		{Category: models.CategoryEntry, Strength: models.StrengthDeveloping},
	}
	if got := scoreSignals(sigs); got != 50 {
		t.Fatalf("score = %f, want 50", got)
	}
}

func TestSignalIDDeterministic(t *testing.T) {
	a := signalID("alert|POC_PROXIMITY|BTCUSDT", 1700000000000)
	b := signalID("alert|POC_PROXIMITY|BTCUSDT", 1700000000000)
	c := signalID("alert|POC_PROXIMITY|BTCUSDT", 1700000000001)
	if a != b {
		t.Fatalf("same content produced different ids: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("different timestamps collided: %s", a)
	}
}
