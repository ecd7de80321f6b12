package series

import (
	"fmt"

	"VolumeScope/internal/domain/models"
)

// Series is a bounded, time-ordered window of candles. Appends validate at
// the boundary and fail closed: a rejected candle leaves the window
// untouched. The series is not goroutine-safe; callers serialize updates.
type Series struct {
	capacity int
	candles  []models.Candle
}

// DefaultCapacity is the window size used when none is configured.
const DefaultCapacity = 200

// New creates an empty series with the given capacity.
func New(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Series{
		capacity: capacity,
		candles:  make([]models.Candle, 0, capacity),
	}
}

// Append validates and appends a candle, evicting the oldest when the
// window is full. Timestamps must be strictly increasing.
func (s *Series) Append(c models.Candle) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("append rejected: %w", err)
	}
	if n := len(s.candles); n > 0 {
		last := s.candles[n-1].Timestamp
		if !c.Timestamp.After(last) {
			return fmt.Errorf("append rejected: timestamp %s not after %s", c.Timestamp, last)
		}
	}
	if len(s.candles) == s.capacity {
		copy(s.candles, s.candles[1:])
		s.candles = s.candles[:s.capacity-1]
	}
	s.candles = append(s.candles, c)
	return nil
}

// SetCapacity resizes the window, evicting oldest candles when shrinking.
func (s *Series) SetCapacity(capacity int) {
	if capacity <= 0 || capacity == s.capacity {
		return
	}
	if over := len(s.candles) - capacity; over > 0 {
		s.candles = append(s.candles[:0], s.candles[over:]...)
	}
	s.capacity = capacity
}

// Len returns the current window length.
func (s *Series) Len() int { return len(s.candles) }

// Capacity returns the configured window size.
func (s *Series) Capacity() int { return s.capacity }

// Snapshot returns a defensive copy of the window. Downstream components
// never share mutable state with the series.
func (s *Series) Snapshot() []models.Candle {
	out := make([]models.Candle, len(s.candles))
	copy(out, s.candles)
	return out
}

// Last returns the most recent candle, if any.
func (s *Series) Last() (models.Candle, bool) {
	if len(s.candles) == 0 {
		return models.Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// Closes returns the close prices of the window, oldest first.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.Close
	}
	return out
}
