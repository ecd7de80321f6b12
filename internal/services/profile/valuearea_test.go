package profile

import (
	"testing"

	"VolumeScope/internal/domain/models"
)

func mkProfile(volumes ...float64) *models.VolumeProfile {
	levels := make([]models.PriceLevel, len(volumes))
	total := 0.0
	for i, v := range volumes {
		levels[i] = models.PriceLevel{
			PriceLow:  100 + float64(i),
			PriceHigh: 101 + float64(i),
			Volume:    v,
		}
		total += v
	}
	return &models.VolumeProfile{Levels: levels, TotalVolume: total}
}

func TestApplyPOCIsMaxVolume(t *testing.T) {
	p := mkProfile(10, 50, 200, 30, 5)
	if err := NewValueArea(testSettings()).Apply(p, 102); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.POC == nil {
		t.Fatalf("expected POC")
	}
	for _, lvl := range p.Levels {
		if lvl.Volume > p.POC.Volume {
			t.Fatalf("level %+v louder than POC %+v", lvl, p.POC)
		}
	}
	if p.POC.Volume != 200 {
		t.Fatalf("POC volume = %f, want 200", p.POC.Volume)
	}
}

func TestApplyPOCTieBreaksTowardLastClose(t *testing.T) {
	p := mkProfile(100, 10, 10, 10, 100)
	// Last close near the upper tied level.
	if err := NewValueArea(testSettings()).Apply(p, 104.6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.POC.PriceLow != 104 {
		t.Fatalf("POC at %f, want tie broken toward close", p.POC.PriceLow)
	}
}

func TestApplyValueAreaOrderingAndCoverage(t *testing.T) {
	s := testSettings()
	s.ValueAreaFraction = 0.7
	p := mkProfile(5, 30, 100, 40, 20, 5)
	if err := NewValueArea(s).Apply(p, 102.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.HasValueArea() {
		t.Fatalf("expected full value area")
	}
	if p.ValueAreaLow.Price() > p.POC.Price() || p.POC.Price() > p.ValueAreaHigh.Price() {
		t.Fatalf("ordering violated: VAL=%f POC=%f VAH=%f",
			p.ValueAreaLow.Price(), p.POC.Price(), p.ValueAreaHigh.Price())
	}

	covered := 0.0
	for _, lvl := range p.Levels {
		if lvl.PriceLow >= p.ValueAreaLow.PriceLow && lvl.PriceLow <= p.ValueAreaHigh.PriceLow {
			covered += lvl.Volume
		}
	}
	if covered < 0.7*p.TotalVolume {
		t.Fatalf("value area covers %f of %f, want >= 70%%", covered, p.TotalVolume)
	}
}

func TestApplyExpansionTieStepsDown(t *testing.T) {
	s := testSettings()
	s.ValueAreaFraction = 0.6
	// POC in the middle with equal neighbors: the first step must go down.
	p := mkProfile(10, 40, 100, 40, 10)
	if err := NewValueArea(s).Apply(p, 102.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 100 + 40 (down) = 140 >= 0.6*200; area is [101,103)
	if p.ValueAreaLow.PriceLow != 101 {
		t.Fatalf("VAL at %f, want downward tie step", p.ValueAreaLow.PriceLow)
	}
	if p.ValueAreaHigh.PriceLow != 102 {
		t.Fatalf("VAH at %f, want POC bucket", p.ValueAreaHigh.PriceLow)
	}
}

func TestApplyEmptyProfileIsNoop(t *testing.T) {
	p := &models.VolumeProfile{}
	if err := NewValueArea(testSettings()).Apply(p, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.POC != nil || p.HasValueArea() {
		t.Fatalf("empty profile must stay empty")
	}
}

func TestApplyNilProfile(t *testing.T) {
	if err := NewValueArea(testSettings()).Apply(nil, 100); err == nil {
		t.Fatalf("expected error for nil profile")
	}
}
