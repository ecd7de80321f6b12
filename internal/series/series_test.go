package series

import (
	"math"
	"testing"
	"time"

	"VolumeScope/internal/domain/models"
)

func candleAt(sec int64, close float64) models.Candle {
	return models.Candle{
		Timestamp: time.Unix(sec, 0).UTC(),
		Open:      close - 1,
		High:      close + 2,
		Low:       close - 2,
		Close:     close,
		Volume:    1000,
	}
}

func TestAppendAndLen(t *testing.T) {
	s := New(10)
	for i := 0; i < 5; i++ {
		if err := s.Append(candleAt(int64(i*60), 100+float64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if s.Len() != 5 {
		t.Fatalf("expected len 5, got %d", s.Len())
	}
	last, ok := s.Last()
	if !ok || last.Close != 104 {
		t.Fatalf("unexpected last candle %+v ok=%v", last, ok)
	}
}

func TestAppendRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*models.Candle)
	}{
		{"nan close", func(c *models.Candle) { c.Close = math.NaN() }},
		{"inf high", func(c *models.Candle) { c.High = math.Inf(1) }},
		{"negative volume", func(c *models.Candle) { c.Volume = -1 }},
		{"high below low", func(c *models.Candle) { c.High = c.Low - 1 }},
		{"high below body", func(c *models.Candle) { c.High = c.Close - 0.5; c.Low = c.Close - 10; c.Open = c.Close - 9 }},
		{"zero timestamp", func(c *models.Candle) { c.Timestamp = time.Time{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(10)
			if err := s.Append(candleAt(0, 100)); err != nil {
				t.Fatalf("seed append: %v", err)
			}
			bad := candleAt(60, 101)
			tc.mut(&bad)
			if err := s.Append(bad); err == nil {
				t.Fatalf("expected rejection")
			}
			if s.Len() != 1 {
				t.Fatalf("series mutated on rejection: len=%d", s.Len())
			}
		})
	}
}

func TestAppendRejectsNonIncreasingTimestamp(t *testing.T) {
	s := New(10)
	if err := s.Append(candleAt(60, 100)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(candleAt(60, 101)); err == nil {
		t.Fatalf("expected equal timestamp rejection")
	}
	if err := s.Append(candleAt(0, 101)); err == nil {
		t.Fatalf("expected older timestamp rejection")
	}
	if s.Len() != 1 {
		t.Fatalf("series mutated on rejection: len=%d", s.Len())
	}
}

func TestEvictionAtCapacity(t *testing.T) {
	s := New(3)
	for i := 0; i < 5; i++ {
		if err := s.Append(candleAt(int64(i*60), 100+float64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("expected len 3, got %d", s.Len())
	}
	snap := s.Snapshot()
	if snap[0].Close != 102 || snap[2].Close != 104 {
		t.Fatalf("unexpected window after eviction: %+v", snap)
	}
}

func TestSetCapacity(t *testing.T) {
	s := New(5)
	for i := 0; i < 5; i++ {
		if err := s.Append(candleAt(int64(i*60), 100+float64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	// Shrinking trims oldest candles.
	s.SetCapacity(3)
	if s.Len() != 3 || s.Capacity() != 3 {
		t.Fatalf("after shrink: len=%d cap=%d", s.Len(), s.Capacity())
	}
	snap := s.Snapshot()
	if snap[0].Close != 102 || snap[2].Close != 104 {
		t.Fatalf("unexpected window after shrink: %+v", snap)
	}

	// Growing keeps the window and raises the eviction bound.
	s.SetCapacity(4)
	if err := s.Append(candleAt(5*60, 105)); err != nil {
		t.Fatalf("append after grow: %v", err)
	}
	if s.Len() != 4 {
		t.Fatalf("expected len 4 after grow, got %d", s.Len())
	}
	if first := s.Snapshot()[0]; first.Close != 102 {
		t.Fatalf("grow evicted a candle: %+v", first)
	}

	// Non-positive capacity is ignored.
	s.SetCapacity(0)
	if s.Capacity() != 4 {
		t.Fatalf("capacity changed on invalid input: %d", s.Capacity())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(5)
	if err := s.Append(candleAt(0, 100)); err != nil {
		t.Fatalf("append: %v", err)
	}
	snap := s.Snapshot()
	snap[0].Close = -1
	again := s.Snapshot()
	if again[0].Close != 100 {
		t.Fatalf("snapshot aliased internal state")
	}
}

func TestCloses(t *testing.T) {
	s := New(5)
	want := []float64{100, 101, 99}
	for i, c := range want {
		if err := s.Append(candleAt(int64(i*60), c)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	got := s.Closes()
	if len(got) != len(want) {
		t.Fatalf("expected %d closes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("close[%d]: expected %f got %f", i, want[i], got[i])
		}
	}
}
