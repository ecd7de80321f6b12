package models

// PriceLevel is a single histogram bucket of the volume profile.
type PriceLevel struct {
	PriceLow  float64
	PriceHigh float64
	Volume    float64
	Touches   int // distinct candles contributing volume to this bucket
}

// Price returns the bucket midpoint, used for distance and ordering checks.
func (l PriceLevel) Price() float64 {
	return (l.PriceLow + l.PriceHigh) / 2
}

// Contains reports whether p falls inside the bucket's price range.
func (l PriceLevel) Contains(p float64) bool {
	return p >= l.PriceLow && p <= l.PriceHigh
}

// VolumeProfile is the price-binned volume histogram for a candle window,
// with its point of control and value-area bounds.
//
// Levels are ordered by ascending price. An empty window produces a valid
// profile with no levels and a nil POC.
type VolumeProfile struct {
	Levels        []PriceLevel
	POC           *PriceLevel
	ValueAreaHigh *PriceLevel
	ValueAreaLow  *PriceLevel
	TotalVolume   float64

	// Approximated is set when at least one candle carried zero volume and
	// a substitute unit volume was used instead of dropping the candle.
	Approximated bool
}

// HasValueArea reports whether POC and both value-area bounds are present.
func (p *VolumeProfile) HasValueArea() bool {
	return p.POC != nil && p.ValueAreaHigh != nil && p.ValueAreaLow != nil
}
