package models

import "testing"

func TestDefaultSettingsValid(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if s.ValueAreaFraction != 0.7 {
		t.Fatalf("value_area_fraction = %f, want 0.7", s.ValueAreaFraction)
	}
	if s.MinLevels != 50 || s.MaxLevels != 200 {
		t.Fatalf("level bounds = %d..%d, want 50..200", s.MinLevels, s.MaxLevels)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	s := Settings{ValueAreaFraction: 0.8}
	if err := s.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ValueAreaFraction != 0.8 {
		t.Fatalf("explicit value overwritten: %f", s.ValueAreaFraction)
	}
	if s.MinimalStep != 0.5 || s.EMAFastPeriod != 12 {
		t.Fatalf("zero fields not defaulted: %+v", s)
	}
}

func TestValidateRejectsInvertedLevelBounds(t *testing.T) {
	s := DefaultSettings()
	s.MinLevels = 300
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for min_levels > max_levels")
	}
}

func TestValidateRejectsUnorderedPeriods(t *testing.T) {
	s := DefaultSettings()
	s.EMAFastPeriod = 60
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for fast period >= medium period")
	}

	s = DefaultSettings()
	s.SMASlowPeriod = 40
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for medium period >= slow period")
	}
}

func TestHashDiffersAcrossSettings(t *testing.T) {
	a := DefaultSettings()
	b := DefaultSettings()
	b.POCDistance = 0.01
	if a.Hash() == b.Hash() {
		t.Fatalf("hash collision across distinct settings")
	}
	if a.Hash() != DefaultSettings().Hash() {
		t.Fatalf("hash unstable for equal settings")
	}
}
