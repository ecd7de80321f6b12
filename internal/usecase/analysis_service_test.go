package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"VolumeScope/internal/domain/models"
	mid "VolumeScope/internal/middleware"
	applogger "VolumeScope/pkg/logger"
)

type recordingMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{errors: make(map[string]int)}
}

func (m *recordingMetrics) RecordCandleIngested(string)        {}
func (m *recordingMetrics) RecordSignalEmitted(string, string) {}
func (m *recordingMetrics) RecordLastPrice(string, float64)    {}
func (m *recordingMetrics) RecordLatency(string, float64)      {}
func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *recordingMetrics) errCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func testService(t *testing.T) (*AnalysisService, *recordingMetrics) {
	t.Helper()
	logger, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	m := newRecordingMetrics()
	return NewAnalysisService(NewAnalyzer(nil, 0), nil, nil, m, logger, models.DefaultSettings()), m
}

func TestIngestPublishesThroughLatest(t *testing.T) {
	svc, m := testService(t)
	pipe := mid.NewCandlePipeline(svc, m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pipe.Start(ctx)
	defer pipe.Stop()

	if err := pipe.Process(models.SymbolCandle{
		Symbol: "BTCUSDT",
		Candle: models.Candle{
			Timestamp: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			Open:      100, High: 101, Low: 99, Close: 100.5, Volume: 1000,
		},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if res, ok := svc.Latest("BTCUSDT"); ok {
			if res.Profile == nil || res.Profile.TotalVolume != 1000 {
				t.Fatalf("unexpected result: %+v", res)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("candle never reached the service")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestIngestRejectsMalformedCandle(t *testing.T) {
	svc, m := testService(t)
	err := svc.Ingest(context.Background(), "BTCUSDT", models.Candle{
		Timestamp: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Open:      100, High: 99, Low: 101, Close: 100, Volume: 1000,
	})
	if err == nil {
		t.Fatalf("expected rejection for high < low")
	}
	if m.errCount("ingest_reject") != 1 {
		t.Fatalf("ingest_reject = %d, want 1", m.errCount("ingest_reject"))
	}
	if _, ok := svc.Latest("BTCUSDT"); ok {
		t.Fatalf("rejected candle must not publish a result")
	}
}

func TestUpdateSettingsResizesSeries(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	for _, c := range fixtureCandles(6) {
		if err := svc.Ingest(ctx, "BTCUSDT", c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	next := svc.Settings(ctx, "BTCUSDT")
	next.SeriesCapacity = 3
	if err := svc.UpdateSettings(ctx, "BTCUSDT", next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := svc.Candles("BTCUSDT", 0)
	if len(snap) != 3 {
		t.Fatalf("window holds %d candles after shrink, want 3", len(snap))
	}
	want := fixtureCandles(6)[3]
	if !snap[0].Timestamp.Equal(want.Timestamp) {
		t.Fatalf("oldest candle %v, want trim to %v", snap[0].Timestamp, want.Timestamp)
	}
}
