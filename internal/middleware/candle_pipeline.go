package middleware

import (
	"context"
	"fmt"
	"sync"

	"VolumeScope/internal/domain/models"
	domrepo "VolumeScope/internal/domain/repository"
	"VolumeScope/internal/service/ratelimit"
)

// Sink is the minimal downstream interface the pipeline needs.
type Sink interface {
	Ingest(ctx context.Context, symbol string, c models.Candle) error
}

// CandlePipeline sits between the feed and the analysis service. It
// throttles per symbol, does a cheap shape check before the series gets
// involved, and decouples feed ticks from recompute latency through a
// bounded buffer. Overflow drops the candle with a metric rather than
// blocking the feed.
type CandlePipeline struct {
	sink    Sink
	metrics domrepo.Metrics
	limiter *ratelimit.Limiter

	maxRPS  float64
	bufSize int
	bufCh   chan models.SymbolCandle
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
}

type PipelineOption func(*CandlePipeline)

// WithMaxRPS sets the max candles per second per symbol.
func WithMaxRPS(n float64) PipelineOption {
	return func(p *CandlePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the decoupling buffer size.
func WithBufferSize(n int) PipelineOption {
	return func(p *CandlePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewCandlePipeline creates a new pipeline.
func NewCandlePipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *CandlePipeline {
	p := &CandlePipeline{
		sink:    sink,
		metrics: metrics,
		limiter: ratelimit.New(),
		maxRPS:  10,
		bufSize: 1000,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan models.SymbolCandle, p.bufSize)
	return p
}

// Start launches the background consumer that drains the buffer into the
// sink.
func (p *CandlePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case sc := <-p.bufCh:
				if err := p.sink.Ingest(ctx, sc.Symbol, sc.Candle); err != nil {
					// Series rejections are permanent; count and move on.
					p.metrics.RecordError("pipeline_ingest")
				}
			}
		}
	}()
}

// Stop stops the background consumer.
func (p *CandlePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	close(p.stopCh)
}

// Process throttles and enqueues a candle. It never blocks the caller.
func (p *CandlePipeline) Process(sc models.SymbolCandle) error {
	if sc.Symbol == "" {
		p.metrics.RecordError("pipeline_validate")
		return fmt.Errorf("pipeline: empty symbol")
	}
	if !p.limiter.Allow(sc.Symbol, p.maxRPS, p.maxRPS) {
		p.metrics.RecordError("pipeline_throttle")
		return nil // throttled; drop silently
	}
	select {
	case p.bufCh <- sc:
	default:
		p.metrics.RecordError("pipeline_buffer_full")
	}
	return nil
}
