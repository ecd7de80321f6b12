package profile

import (
	"math"
	"testing"
	"time"

	"VolumeScope/internal/domain/models"
)

func mkCandle(i int, o, h, l, c, v float64) models.Candle {
	return models.Candle{
		Timestamp: time.Date(2025, 1, 1, 0, i, 0, 0, time.UTC),
		Open:      o, High: h, Low: l, Close: c, Volume: v,
	}
}

func testSettings() models.Settings {
	s := models.DefaultSettings()
	s.NoiseFloorFraction = 0
	return s
}

func TestBuildEmptyWindow(t *testing.T) {
	b := NewBuilder(testSettings())
	p, err := b.Build(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatalf("expected profile")
	}
	if len(p.Levels) != 0 || p.POC != nil || p.TotalVolume != 0 {
		t.Fatalf("expected empty profile, got %+v", p)
	}
}

func TestBuildVolumeConservation(t *testing.T) {
	s := testSettings()
	s.NumLevels = 5
	b := NewBuilder(s)

	candles := []models.Candle{
		mkCandle(0, 100, 101, 99, 100, 1000),
		mkCandle(1, 100, 102, 100, 101, 800),
		mkCandle(2, 101, 101, 98, 99, 1200),
		mkCandle(3, 99, 100, 97, 98, 600),
		mkCandle(4, 98, 106, 98, 105, 900),
	}
	p, err := b.Build(candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalVolume != 4500 {
		t.Fatalf("total volume = %f, want 4500", p.TotalVolume)
	}
	sum := 0.0
	for _, lvl := range p.Levels {
		sum += lvl.Volume
	}
	if math.Abs(sum-p.TotalVolume) > 1e-9 {
		t.Fatalf("level volumes sum %f, total %f", sum, p.TotalVolume)
	}
	if p.Approximated {
		t.Fatalf("no zero-volume candles, profile should not be approximated")
	}
}

func TestBuildExplicitLevelCount(t *testing.T) {
	s := testSettings()
	s.NumLevels = 5
	b := NewBuilder(s)

	// One candle spanning the full range distributes evenly.
	p, err := b.Build([]models.Candle{mkCandle(0, 100, 110, 100, 105, 100)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Levels) != 5 {
		t.Fatalf("levels = %d, want 5", len(p.Levels))
	}
	for _, lvl := range p.Levels {
		if math.Abs(lvl.Volume-20) > 1e-9 {
			t.Fatalf("uneven distribution: %+v", lvl)
		}
		if lvl.Touches != 1 {
			t.Fatalf("touches = %d, want 1", lvl.Touches)
		}
	}
}

func TestBuildAdaptiveLevelCountClamped(t *testing.T) {
	s := testSettings()
	s.MinimalStep = 0.5
	s.MinLevels = 2
	s.MaxLevels = 10
	b := NewBuilder(s)

	// range 10 / step 0.5 = 20 levels, clamped to 10
	p, err := b.Build([]models.Candle{mkCandle(0, 100, 110, 100, 105, 100)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Levels) != 10 {
		t.Fatalf("levels = %d, want max clamp 10", len(p.Levels))
	}
}

func TestBuildFiveCandleWindow(t *testing.T) {
	s := testSettings()
	s.NumLevels = 5
	s.ValueAreaFraction = 0.7

	closes := []float64{100, 101, 99, 98, 105}
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = mkCandle(i, c, c, c, c, 1000)
	}
	p, err := NewBuilder(s).Build(candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NewValueArea(s).Apply(p, closes[len(closes)-1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 98 and 99 land in the bottom bucket; every other close is alone.
	if p.POC == nil {
		t.Fatalf("expected POC")
	}
	for _, lvl := range p.Levels {
		if lvl != *p.POC && lvl.Volume >= p.POC.Volume {
			t.Fatalf("POC %+v is not the unique maximum, rival %+v", p.POC, lvl)
		}
	}
	if !p.POC.Contains(98) || p.POC.Volume != 2000 {
		t.Fatalf("POC = %+v, want the 2000-volume bottom bucket", p.POC)
	}
	if !p.HasValueArea() {
		t.Fatalf("expected full value area")
	}
	if p.ValueAreaHigh.Price() < 101 || p.ValueAreaLow.Price() > 101 {
		t.Fatalf("value area [%f, %f] must straddle 101",
			p.ValueAreaLow.Price(), p.ValueAreaHigh.Price())
	}
}

func TestBuildZeroVolumeApproximated(t *testing.T) {
	b := NewBuilder(testSettings())
	p, err := b.Build([]models.Candle{
		mkCandle(0, 100, 101, 99, 100, 0),
		mkCandle(1, 100, 101, 99, 100, 500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Approximated {
		t.Fatalf("expected approximated profile")
	}
	if p.TotalVolume != 501 {
		t.Fatalf("total volume = %f, want substitute 1.0 included", p.TotalVolume)
	}
}

func TestBuildNoiseFloorFilter(t *testing.T) {
	s := testSettings()
	s.NumLevels = 2
	s.NoiseFloorFraction = 0.25
	b := NewBuilder(s)

	// Lower bucket gets 1000, upper bucket 10: 10 < 0.25*1010 drops it.
	p, err := b.Build([]models.Candle{
		mkCandle(0, 100, 101, 100, 100, 1000),
		mkCandle(1, 109, 110, 109, 110, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Levels) != 1 {
		t.Fatalf("levels = %d, want noise-filtered 1", len(p.Levels))
	}
	if p.TotalVolume != 1010 {
		t.Fatalf("total volume must be computed before filtering, got %f", p.TotalVolume)
	}
}

func TestBuildSinglePriceWindow(t *testing.T) {
	b := NewBuilder(testSettings())
	p, err := b.Build([]models.Candle{
		mkCandle(0, 100, 100, 100, 100, 300),
		mkCandle(1, 100, 100, 100, 100, 200),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Levels) != 1 {
		t.Fatalf("levels = %d, want single bucket", len(p.Levels))
	}
	if p.Levels[0].Volume != 500 {
		t.Fatalf("bucket volume = %f, want 500", p.Levels[0].Volume)
	}
	if !p.Levels[0].Contains(100) {
		t.Fatalf("bucket %+v should contain the traded price", p.Levels[0])
	}
}
