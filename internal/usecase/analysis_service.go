package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"VolumeScope/internal/domain/models"
	domrepo "VolumeScope/internal/domain/repository"
	mid "VolumeScope/internal/middleware"
	"VolumeScope/internal/series"
	applogger "VolumeScope/pkg/logger"
)

// symbolState is the per-symbol runtime the service serializes access to.
type symbolState struct {
	series   *series.Series
	settings models.Settings
	fusion   models.FusionState
	last     *AnalysisResult
	history  []models.Signal
}

// AnalysisService hosts the analysis pipeline for live symbols. It owns the
// candle series, threads the fusion state through recomputes, and keeps a
// capped signal history for display. All state mutation happens under one
// lock, satisfying the caller-serialization contract of the core.
type AnalysisService struct {
	analyzer *Analyzer
	journal  domrepo.SignalJournal
	store    domrepo.SettingsStore
	metrics  domrepo.Metrics
	logger   *applogger.Logger

	defaults models.Settings

	mu      sync.Mutex
	symbols map[string]*symbolState
}

// NewAnalysisService creates the service. journal and store may be nil when
// the corresponding backends are disabled.
func NewAnalysisService(
	analyzer *Analyzer,
	journal domrepo.SignalJournal,
	store domrepo.SettingsStore,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	defaults models.Settings,
) *AnalysisService {
	return &AnalysisService{
		analyzer: analyzer,
		journal:  journal,
		store:    store,
		metrics:  metrics,
		logger:   logger,
		defaults: defaults,
		symbols:  make(map[string]*symbolState),
	}
}

// Ingest appends one candle and recomputes. A malformed candle is rejected
// at the series boundary and leaves all state untouched. The result is
// published through Latest; callers that only feed candles need the error.
func (s *AnalysisService) Ingest(ctx context.Context, symbol string, c models.Candle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.symbol(ctx, symbol)
	if err := st.series.Append(c); err != nil {
		s.metrics.RecordError("ingest_reject")
		return fmt.Errorf("ingest %s: %w", symbol, err)
	}
	s.metrics.RecordCandleIngested(symbol)
	s.metrics.RecordLastPrice(symbol, c.Close)

	_, err := s.recomputeLocked(ctx, symbol, st)
	return err
}

// Warm seeds the series from stored history, skipping candles the series
// rejects, then recomputes once. Warm signals are not journaled.
func (s *AnalysisService) Warm(ctx context.Context, symbol string, candles []models.Candle) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.symbol(ctx, symbol)
	accepted := 0
	for _, c := range candles {
		if err := st.series.Append(c); err != nil {
			s.logger.Warn("warm candle skipped", applogger.String("symbol", symbol), applogger.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return 0, nil
	}

	res, err := s.analyzer.Recompute(ctx, symbol, st.series.Snapshot(), st.settings, st.fusion)
	if err != nil {
		return accepted, err
	}
	st.fusion = res.NextState
	st.last = res
	return accepted, nil
}

func (s *AnalysisService) recomputeLocked(ctx context.Context, symbol string, st *symbolState) (*AnalysisResult, error) {
	start := time.Now()
	res, err := s.analyzer.Recompute(ctx, symbol, st.series.Snapshot(), st.settings, st.fusion)
	if err != nil {
		s.metrics.RecordError("recompute")
		return nil, err
	}
	s.metrics.RecordLatency("recompute", time.Since(start).Seconds())

	st.fusion = res.NextState
	st.last = res
	if len(res.Signals) > 0 {
		st.history = append(st.history, res.Signals...)
		if over := len(st.history) - st.settings.HistoryLimit; over > 0 {
			st.history = st.history[over:]
		}
		for _, sig := range res.Signals {
			s.metrics.RecordSignalEmitted(symbol, string(sig.Category))
		}
		if s.journal != nil {
			if err := s.journal.Record(ctx, symbol, res.Signals); err != nil {
				s.metrics.RecordError("journal")
				s.logger.Warn("signal journal write failed", applogger.String("symbol", symbol), applogger.Error(err))
			}
		}
	}
	return res, nil
}

// Latest returns the last recompute result for a symbol.
func (s *AnalysisService) Latest(symbol string) (*AnalysisResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.symbols[symbol]
	if !ok || st.last == nil {
		return nil, false
	}
	return st.last, true
}

// History returns up to limit most recent signals, newest last.
func (s *AnalysisService) History(symbol string, limit int) []models.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.symbols[symbol]
	if !ok {
		return nil
	}
	h := st.history
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := make([]models.Signal, len(h))
	copy(out, h)
	return out
}

// Candles returns a snapshot of the live window, capped at n.
func (s *AnalysisService) Candles(symbol string, n int) []models.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.symbols[symbol]
	if !ok {
		return nil
	}
	snap := st.series.Snapshot()
	if n > 0 && len(snap) > n {
		snap = snap[len(snap)-n:]
	}
	return snap
}

// Settings returns the effective settings for a symbol.
func (s *AnalysisService) Settings(ctx context.Context, symbol string) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol(ctx, symbol).settings
}

// UpdateSettings validates, persists, and applies new settings. The next
// recompute picks them up; the memo key changes with the settings hash. A
// changed series capacity resizes the live window, trimming oldest candles.
func (s *AnalysisService) UpdateSettings(ctx context.Context, symbol string, next models.Settings) error {
	if err := next.Normalize(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.symbol(ctx, symbol)
	if next.SeriesCapacity != st.settings.SeriesCapacity {
		st.series.SetCapacity(next.SeriesCapacity)
	}
	st.settings = next
	if s.store != nil {
		if err := s.store.Save(ctx, symbol, next); err != nil {
			s.metrics.RecordError("settings_save")
			return fmt.Errorf("save settings %s: %w", symbol, err)
		}
	}
	return nil
}

// symbol returns (creating if needed) the per-symbol state. Stored settings
// win over configured defaults.
func (s *AnalysisService) symbol(ctx context.Context, symbol string) *symbolState {
	if st, ok := s.symbols[symbol]; ok {
		return st
	}
	settings := s.defaults
	if s.store != nil {
		if stored, ok, err := s.store.Load(ctx, symbol); err != nil {
			s.metrics.RecordError("settings_load")
			s.logger.Warn("settings load failed, using defaults", applogger.String("symbol", symbol), applogger.Error(err))
		} else if ok {
			settings = stored
		}
	}
	st := &symbolState{
		series:   series.New(settings.SeriesCapacity),
		settings: settings,
		fusion:   models.NewFusionState(),
	}
	s.symbols[symbol] = st
	return st
}

var _ mid.Sink = (*AnalysisService)(nil)
