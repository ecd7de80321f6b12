package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(42, 100, 1000)
	b := NewGenerator(42, 100, 1000)
	ts := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		t1 := ts.Add(time.Duration(i) * time.Minute)
		ca := a.Next(t1)
		cb := b.Next(t1)
		if ca != cb {
			t.Fatalf("walks diverged at %d: %+v vs %+v", i, ca, cb)
		}
		if err := ca.Validate(); err != nil {
			t.Fatalf("generated candle invalid: %v (%+v)", err, ca)
		}
	}
}

func TestGeneratorSeedContinuesWalk(t *testing.T) {
	g := NewGenerator(7, 100, 1000)
	g.Seed(250)
	c := g.Next(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	if c.Open != 250 {
		t.Fatalf("open = %f, want walk continued from seeded price", c.Open)
	}
}

func TestLoadFixtureArrayForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.json")
	data := `[[1700000000, 100, 101, 99, 100.5, 1000], [1700000060000, 100.5, 102, 100, 101, 900]]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	candles, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("candles = %d, want 2", len(candles))
	}
	if candles[0].Timestamp.Unix() != 1700000000 {
		t.Fatalf("seconds timestamp parsed as %v", candles[0].Timestamp)
	}
	if candles[1].Timestamp.UnixMilli() != 1700000060000 {
		t.Fatalf("millis timestamp parsed as %v", candles[1].Timestamp)
	}
}

func TestLoadFixtureObjectForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.json")
	data := `[{"t": 1700000000, "o": 100, "h": 101, "l": 99, "c": 100.5, "v": 1000}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	candles, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 || candles[0].Close != 100.5 {
		t.Fatalf("unexpected candles: %+v", candles)
	}
}

func TestLoadFixtureRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.json")
	// high below low
	data := `[[1700000000, 100, 99, 101, 100.5, 1000]]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected read error")
	}
}
