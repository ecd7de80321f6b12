package feed

import (
	"context"
	"time"

	"VolumeScope/internal/domain/models"
	domrepo "VolumeScope/internal/domain/repository"
	applogger "VolumeScope/pkg/logger"
)

// Provider supplies candles for one symbol with the demo-data fallback
// chain the dashboard relies on: stored history first, then a fixture
// file, then the synthetic walk. Live candles always come from the walk;
// retry and fallback policy is entirely this package's concern.
type Provider struct {
	symbol      string
	tf          domrepo.Timeframe
	interval    time.Duration
	store       domrepo.CandleStore // optional
	fixturePath string              // optional
	gen         *Generator
	logger      *applogger.Logger
}

// NewProvider creates a feed provider.
func NewProvider(
	symbol string,
	tf domrepo.Timeframe,
	interval time.Duration,
	store domrepo.CandleStore,
	fixturePath string,
	gen *Generator,
	logger *applogger.Logger,
) *Provider {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Provider{
		symbol:      symbol,
		tf:          tf,
		interval:    interval,
		store:       store,
		fixturePath: fixturePath,
		gen:         gen,
		logger:      logger,
	}
}

// Symbol returns the symbol this provider feeds.
func (p *Provider) Symbol() string { return p.symbol }

// History returns up to n warm-up candles following the fallback chain.
// All failures are logged and fall through; an empty slice is a valid
// answer (cold start).
func (p *Provider) History(ctx context.Context, n int) []models.Candle {
	if p.store != nil {
		candles, err := p.store.GetLatestN(ctx, p.symbol, n, p.tf)
		if err != nil {
			p.logger.Warn("candle store history unavailable", applogger.String("symbol", p.symbol), applogger.Error(err))
		} else if len(candles) > 0 {
			return candles
		}
	}
	if p.fixturePath != "" {
		candles, err := LoadFixture(p.fixturePath)
		if err != nil {
			p.logger.Warn("fixture history unavailable", applogger.String("symbol", p.symbol), applogger.Error(err))
		} else if len(candles) > 0 {
			if len(candles) > n {
				candles = candles[len(candles)-n:]
			}
			return candles
		}
	}
	return nil
}

// Run emits one synthetic candle per interval until ctx is done. When
// history warmed the series, seed the generator with the last close first
// so the walk continues without a price gap.
func (p *Provider) Run(ctx context.Context) <-chan models.SymbolCandle {
	out := make(chan models.SymbolCandle, 16)
	go func() {
		defer close(out)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c := p.gen.Next(now.UTC().Truncate(time.Second))
				select {
				case out <- models.SymbolCandle{Symbol: p.symbol, Candle: c}:
				default:
					// consumer stalled; skip rather than block the ticker
				}
			}
		}
	}()
	return out
}

// SeedFromHistory positions the generator after warm-up.
func (p *Provider) SeedFromHistory(candles []models.Candle) {
	if len(candles) > 0 {
		p.gen.Seed(candles[len(candles)-1].Close)
	}
}
