package repository

import (
	"context"

	"VolumeScope/internal/domain/models"
)

// CandleStore persists and serves OHLCV history. The analysis core never
// touches it directly; use cases read through it to warm the series.
type CandleStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreBatch(ctx context.Context, symbol string, tf Timeframe, candles []models.Candle) error
	GetLatestN(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}

// SignalJournal records emitted signals for later inspection. Journaling is
// best-effort; a journal failure never blocks or alters a recompute.
type SignalJournal interface {
	Record(ctx context.Context, symbol string, signals []models.Signal) error
	Close() error
}

// SettingsStore persists user-tuned analysis settings per symbol.
type SettingsStore interface {
	Load(ctx context.Context, symbol string) (models.Settings, bool, error)
	Save(ctx context.Context, symbol string, s models.Settings) error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordCandleIngested(symbol string)
	RecordSignalEmitted(symbol, category string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
