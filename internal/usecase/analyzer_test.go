package usecase

import (
	"context"
	"reflect"
	"testing"
	"time"

	"VolumeScope/internal/domain/models"
	icache "VolumeScope/internal/service/cache"
)

func fixtureCandles(n int) []models.Candle {
	prices := []float64{100, 101, 99, 98, 105, 103, 104, 102, 106, 101}
	out := make([]models.Candle, 0, n)
	for i := 0; i < n; i++ {
		p := prices[i%len(prices)]
		out = append(out, models.Candle{
			Timestamp: time.Date(2025, 2, 1, 0, i, 0, 0, time.UTC),
			Open:      p, High: p + 1, Low: p - 1, Close: p,
			Volume: 1000 + float64(i%7)*100,
		})
	}
	return out
}

func TestRecomputeEmptyWindow(t *testing.T) {
	a := NewAnalyzer(nil, 0)
	res, err := a.Recompute(context.Background(), "BTCUSDT", nil, models.DefaultSettings(), models.NewFusionState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Profile == nil || len(res.Profile.Levels) != 0 {
		t.Fatalf("empty window must yield an empty profile, got %+v", res.Profile)
	}
	if len(res.Signals) != 0 {
		t.Fatalf("empty window emitted signals: %+v", res.Signals)
	}
}

func TestRecomputeDeterministic(t *testing.T) {
	candles := fixtureCandles(60)
	settings := models.DefaultSettings()

	a := NewAnalyzer(nil, 0)
	b := NewAnalyzer(nil, 0)
	r1, err := a.Recompute(context.Background(), "BTCUSDT", candles, settings, models.NewFusionState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := b.Recompute(context.Background(), "BTCUSDT", candles, settings, models.NewFusionState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r1.Signals, r2.Signals) {
		t.Fatalf("same input produced different signals:\n%+v\n%+v", r1.Signals, r2.Signals)
	}
	if !reflect.DeepEqual(r1.Profile, r2.Profile) {
		t.Fatalf("same input produced different profiles")
	}
	if r1.Confidence != r2.Confidence {
		t.Fatalf("confidence differs: %f vs %f", r1.Confidence, r2.Confidence)
	}
}

func TestRecomputeMemoization(t *testing.T) {
	candles := fixtureCandles(40)
	settings := models.DefaultSettings()
	a := NewAnalyzer(icache.NewTTLCache(), time.Minute)

	r1, err := a.Recompute(context.Background(), "BTCUSDT", candles, settings, models.NewFusionState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := a.Recompute(context.Background(), "BTCUSDT", candles, settings, models.NewFusionState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1 != r2 {
		t.Fatalf("memo miss on identical window")
	}

	// Appending a candle changes the key.
	more := append(append([]models.Candle{}, candles...), models.Candle{
		Timestamp: time.Date(2025, 2, 1, 2, 0, 0, 0, time.UTC),
		Open:      100, High: 101, Low: 99, Close: 100, Volume: 500,
	})
	r3, err := a.Recompute(context.Background(), "BTCUSDT", more, settings, models.NewFusionState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r3 == r1 {
		t.Fatalf("memo hit despite a new candle")
	}
}

func TestRecomputeSettingsChangeInvalidatesMemo(t *testing.T) {
	candles := fixtureCandles(40)
	a := NewAnalyzer(icache.NewTTLCache(), time.Minute)

	s1 := models.DefaultSettings()
	r1, err := a.Recompute(context.Background(), "BTCUSDT", candles, s1, models.NewFusionState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s2 := s1
	s2.ValueAreaFraction = 0.8
	r2, err := a.Recompute(context.Background(), "BTCUSDT", candles, s2, models.NewFusionState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1 == r2 {
		t.Fatalf("memo hit despite changed settings")
	}
}

func TestRecomputeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAnalyzer(nil, 0)
	if _, err := a.Recompute(ctx, "BTCUSDT", fixtureCandles(10), models.DefaultSettings(), models.NewFusionState()); err == nil {
		t.Fatalf("expected context error")
	}
}
