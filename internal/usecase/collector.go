package usecase

import (
	"context"
	"sync"
	"time"

	"VolumeScope/internal/domain/models"
	domrepo "VolumeScope/internal/domain/repository"
	mid "VolumeScope/internal/middleware"
	"VolumeScope/internal/services/feed"
	applogger "VolumeScope/pkg/logger"
)

// CandleCollector drives the live loop: it warms each symbol from history,
// consumes feed candles through the pipeline into the analysis service,
// and batches accepted candles into the candle store.
type CandleCollector struct {
	feeds   []*feed.Provider
	pipe    *mid.CandlePipeline
	svc     *AnalysisService
	store   domrepo.CandleStore // nil disables persistence
	tf      domrepo.Timeframe
	metrics domrepo.Metrics
	logger  *applogger.Logger

	warmupN int
	batchSz int
	batchTO time.Duration

	mu  sync.Mutex
	buf map[string][]models.Candle

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCandleCollector creates a collector over one or more feed providers.
func NewCandleCollector(
	feeds []*feed.Provider,
	pipe *mid.CandlePipeline,
	svc *AnalysisService,
	store domrepo.CandleStore,
	tf domrepo.Timeframe,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	warmupN, batchSz int,
	batchTO time.Duration,
) *CandleCollector {
	if warmupN <= 0 {
		warmupN = 200
	}
	if batchSz <= 0 {
		batchSz = 100
	}
	if batchTO <= 0 {
		batchTO = 5 * time.Second
	}
	return &CandleCollector{
		feeds:   feeds,
		pipe:    pipe,
		svc:     svc,
		store:   store,
		tf:      tf,
		metrics: metrics,
		logger:  logger,
		warmupN: warmupN,
		batchSz: batchSz,
		batchTO: batchTO,
		buf:     make(map[string][]models.Candle),
	}
}

// Start warms each symbol and launches the consume loops.
func (c *CandleCollector) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	for _, p := range c.feeds {
		history := p.History(ctx, c.warmupN)
		if len(history) > 0 {
			accepted, err := c.svc.Warm(ctx, p.Symbol(), history)
			if err != nil {
				c.logger.Warn("warmup recompute failed", applogger.String("symbol", p.Symbol()), applogger.Error(err))
			}
			p.SeedFromHistory(history)
			c.logger.Info("series warmed",
				applogger.String("symbol", p.Symbol()),
				applogger.Int("candles", accepted),
			)
		}
	}

	c.pipe.Start(ctx)

	for _, p := range c.feeds {
		ch := p.Run(ctx)
		c.wg.Add(1)
		go c.consume(ctx, ch)
	}

	c.wg.Add(1)
	go c.flushLoop(ctx)
	return nil
}

func (c *CandleCollector) consume(ctx context.Context, ch <-chan models.SymbolCandle) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case sc, ok := <-ch:
			if !ok {
				return
			}
			if err := c.pipe.Process(sc); err != nil {
				c.metrics.RecordError("collector_process")
				continue
			}
			c.buffer(sc)
		}
	}
}

func (c *CandleCollector) buffer(sc models.SymbolCandle) {
	if c.store == nil {
		return
	}
	c.mu.Lock()
	c.buf[sc.Symbol] = append(c.buf[sc.Symbol], sc.Candle)
	full := len(c.buf[sc.Symbol]) >= c.batchSz
	c.mu.Unlock()
	if full {
		c.flush(context.Background())
	}
}

func (c *CandleCollector) flushLoop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.batchTO)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.flush(context.Background()) // final drain
			return
		case <-ticker.C:
			c.flush(ctx)
		}
	}
}

// flush writes buffered candles per symbol. Failures keep nothing: the
// store is history, the live series already has the candles.
func (c *CandleCollector) flush(ctx context.Context) {
	if c.store == nil {
		return
	}
	c.mu.Lock()
	pending := c.buf
	c.buf = make(map[string][]models.Candle)
	c.mu.Unlock()

	for symbol, candles := range pending {
		if len(candles) == 0 {
			continue
		}
		if err := c.store.StoreBatch(ctx, symbol, c.tf, candles); err != nil {
			c.metrics.RecordError("store_batch")
			c.logger.Warn("candle store batch failed",
				applogger.String("symbol", symbol),
				applogger.Int("candles", len(candles)),
				applogger.Error(err),
			)
		}
	}
}

// Shutdown stops the pipeline and waits for consume loops to drain.
func (c *CandleCollector) Shutdown(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	c.pipe.Stop()
	done := make(chan struct{})
	go func() { c.wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
