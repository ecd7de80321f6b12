package di

import (
	"context"
	"fmt"
	"time"

	"VolumeScope/internal/domain/repository"
	"VolumeScope/internal/handler/api"
	mid "VolumeScope/internal/middleware"
	internalrepo "VolumeScope/internal/repository"
	icache "VolumeScope/internal/service/cache"
	"VolumeScope/internal/services/feed"
	"VolumeScope/internal/usecase"
	pkgcache "VolumeScope/pkg/cache"
	pkgch "VolumeScope/pkg/clickhouse"
	"VolumeScope/pkg/config"
	xhttp "VolumeScope/pkg/http"
	pkgkafka "VolumeScope/pkg/kafka"
	applogger "VolumeScope/pkg/logger"
	"VolumeScope/pkg/metrics"
	"VolumeScope/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{Level: "info", Format: "json", Output: "stdout"}
	if cfg.Environment == "development" {
		lc.Level = "debug"
		lc.Format = "console"
	}
	return applogger.New(lc)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (symbol String, tf String, ts DateTime64(3), open Float64, high Float64, low Float64, close Float64, volume Float64) ENGINE=MergeTree ORDER BY (symbol, tf, ts)", candleTable(cfg)),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id String, symbol String, category String, subtype String, direction String, strength String, price Float64, target Float64, stop Float64, ts DateTime64(3)) ENGINE=MergeTree ORDER BY (symbol, ts)", signalTable(cfg)),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

func candleTable(cfg *config.Config) string {
	t := cfg.ClickHouse.CandleTable
	if t == "" {
		t = "candles"
	}
	return cfg.ClickHouse.Database + "." + t
}

func signalTable(cfg *config.Config) string {
	t := cfg.ClickHouse.SignalTable
	if t == "" {
		t = "signals"
	}
	return cfg.ClickHouse.Database + "." + t
}

// ProvideCandleStore creates ClickHouse candle storage, or nil when
// ClickHouse is disabled.
func ProvideCandleStore(chClient *pkgch.Client, cfg *config.Config) repository.CandleStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseCandleStore(chClient.DB(), candleTable(cfg))
}

// ProvideSignalJournal creates the configured signal journal backend.
func ProvideSignalJournal(cfg *config.Config, chClient *pkgch.Client) (repository.SignalJournal, error) {
	switch cfg.Journal.Type {
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
			pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
			pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
			pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaSignalJournal(producer, cfg.Kafka.Topic), nil
	case "clickhouse":
		if chClient == nil {
			return nil, fmt.Errorf("clickhouse journal requires clickhouse enabled")
		}
		return internalrepo.NewClickHouseSignalJournal(chClient.DB(), signalTable(cfg)), nil
	default:
		return internalrepo.NopSignalJournal{}, nil
	}
}

// ProvideCacheService creates the settings cache backend: layered Redis when
// enabled, otherwise in-memory only.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideSettingsStore creates the cache-backed settings store.
func ProvideSettingsStore(c pkgcache.Service) repository.SettingsStore {
	return internalrepo.NewCacheSettingsStore(c)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideAnalyzer creates the analysis pipeline with a memo cache.
func ProvideAnalyzer(cfg *config.Config) *usecase.Analyzer {
	return usecase.NewAnalyzer(icache.NewTTLCache(), cfg.Analysis.MemoTTL)
}

// ProvideAnalysisService creates the per-symbol analysis service.
func ProvideAnalysisService(
	analyzer *usecase.Analyzer,
	journal repository.SignalJournal,
	store repository.SettingsStore,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.AnalysisService {
	return usecase.NewAnalysisService(analyzer, journal, store, m, logger, cfg.Analysis.Settings)
}

// ProvideTimeframe resolves the configured feed timeframe.
func ProvideTimeframe(cfg *config.Config) repository.Timeframe {
	return repository.NormalizeTimeframe(cfg.Feed.Timeframe)
}

// ProvideFeeds creates one feed provider per configured symbol. Each symbol
// gets its own generator so walks stay independent and reproducible.
func ProvideFeeds(
	cfg *config.Config,
	store repository.CandleStore,
	tf repository.Timeframe,
	logger *applogger.Logger,
) []*feed.Provider {
	feeds := make([]*feed.Provider, 0, len(cfg.Feed.Symbols))
	for i, symbol := range cfg.Feed.Symbols {
		gen := feed.NewGenerator(cfg.Feed.Seed+int64(i), cfg.Feed.StartPrice, cfg.Feed.BaseVolume)
		feeds = append(feeds, feed.NewProvider(symbol, tf, cfg.Feed.Interval, store, cfg.Feed.FixturePath, gen, logger))
	}
	return feeds
}

// ProvidePipeline creates the feed-to-analysis pipeline.
func ProvidePipeline(svc *usecase.AnalysisService, m repository.Metrics, cfg *config.Config) *mid.CandlePipeline {
	var opts []mid.PipelineOption
	if cfg.Feed.MaxRPS > 0 {
		opts = append(opts, mid.WithMaxRPS(cfg.Feed.MaxRPS))
	}
	if cfg.Feed.BufferSize > 0 {
		opts = append(opts, mid.WithBufferSize(cfg.Feed.BufferSize))
	}
	return mid.NewCandlePipeline(svc, m, opts...)
}

// ProvideCollector creates the candle collector.
func ProvideCollector(
	feeds []*feed.Provider,
	pipe *mid.CandlePipeline,
	svc *usecase.AnalysisService,
	store repository.CandleStore,
	tf repository.Timeframe,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.CandleCollector {
	return usecase.NewCandleCollector(
		feeds, pipe, svc, store, tf, m, logger,
		cfg.Feed.WarmupN,
		cfg.Journal.BatchSize,
		cfg.Journal.BatchTimeout,
	)
}

// ProvideCandlesUseCase creates the stored-history use case, or nil when the
// candle store is disabled.
func ProvideCandlesUseCase(store repository.CandleStore) *usecase.CandlesUseCase {
	if store == nil {
		return nil
	}
	return usecase.NewCandlesUseCase(store)
}

// ProvideHandler creates the Echo API handler.
func ProvideHandler(
	logger *applogger.Logger,
	svc *usecase.AnalysisService,
	candles *usecase.CandlesUseCase,
	tf repository.Timeframe,
) xhttp.Handler {
	return api.NewAnalysisHandler(logger, svc, candles, tf)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.CandleCollector,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	journal repository.SignalJournal,
	cacheSvc pkgcache.Service,
) *server.App {
	return server.New(cfg, logger, collector, handler, chClient, journal, cacheSvc)
}
