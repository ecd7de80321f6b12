package feed

import (
	"math"
	"math/rand"
	"time"

	"VolumeScope/internal/domain/models"
)

// Generator produces a synthetic OHLCV random walk. It is seeded, so a
// given seed always replays the same candle sequence; the analysis core
// itself stays free of randomness.
type Generator struct {
	rng     *rand.Rand
	price   float64
	baseVol float64
}

// NewGenerator creates a generator starting at startPrice.
func NewGenerator(seed int64, startPrice, baseVolume float64) *Generator {
	if startPrice <= 0 {
		startPrice = 100
	}
	if baseVolume <= 0 {
		baseVolume = 1000
	}
	return &Generator{
		rng:     rand.New(rand.NewSource(seed)),
		price:   startPrice,
		baseVol: baseVolume,
	}
}

// Next produces the candle for the given timestamp, continuing the walk.
func (g *Generator) Next(ts time.Time) models.Candle {
	open := g.price
	delta := g.rng.NormFloat64() * 0.003 // ~0.3% per-candle sigma
	close := open * (1 + delta)

	upperWick := math.Abs(g.rng.NormFloat64()) * 0.001
	lowerWick := math.Abs(g.rng.NormFloat64()) * 0.001
	high := math.Max(open, close) * (1 + upperWick)
	low := math.Min(open, close) * (1 - lowerWick)

	volume := g.baseVol * (0.5 + g.rng.Float64())

	g.price = close
	return models.Candle{
		Timestamp: ts,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}
}

// Seed resets the walk to a new starting price, used when history warmed
// the series and the walk must continue from its last close.
func (g *Generator) Seed(price float64) {
	if price > 0 {
		g.price = price
	}
}
