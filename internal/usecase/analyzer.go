package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"VolumeScope/internal/domain/models"
	icache "VolumeScope/internal/service/cache"
	"VolumeScope/internal/services/fusion"
	"VolumeScope/internal/services/indicators"
	"VolumeScope/internal/services/profile"
)

// AnalysisResult is the output of one recompute cycle.
type AnalysisResult struct {
	Profile    *models.VolumeProfile
	Levels     models.LevelClassification
	Indicators models.IndicatorState
	Signals    []models.Signal
	Confidence float64
	NextState  models.FusionState
}

// Analyzer runs the full candles → histogram → value area → classification
// → indicators → fusion pipeline. Recompute is pure apart from reading the
// optional memoization cache: same candles, settings, and prior fusion
// state always produce the same result.
type Analyzer struct {
	classifier *profile.Classifier
	fusion     *fusion.Engine

	memo    *icache.TTLCache // nil disables memoization
	memoTTL time.Duration
}

// NewAnalyzer creates an analyzer. Pass a nil cache to disable memoization.
func NewAnalyzer(memo *icache.TTLCache, memoTTL time.Duration) *Analyzer {
	if memoTTL <= 0 {
		memoTTL = time.Minute
	}
	return &Analyzer{
		classifier: profile.NewClassifier(),
		fusion:     fusion.NewEngine(),
		memo:       memo,
		memoTTL:    memoTTL,
	}
}

// Recompute runs the analysis pipeline over a candle window. An empty
// window yields a valid empty result, not an error.
func (a *Analyzer) Recompute(ctx context.Context, symbol string, candles []models.Candle, settings models.Settings, prev models.FusionState) (*AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := a.memoKey(symbol, candles, settings, prev)
	if a.memo != nil && key != "" {
		if v, ok := a.memo.Get(key); ok {
			if res, ok2 := v.(*AnalysisResult); ok2 {
				return res, nil
			}
		}
	}

	hist := profile.NewBuilder(settings)
	prof, err := hist.Build(candles)
	if err != nil {
		return nil, fmt.Errorf("recompute %s: %w", symbol, err)
	}

	var lastClose float64
	var lastTS time.Time
	if n := len(candles); n > 0 {
		lastClose = candles[n-1].Close
		lastTS = candles[n-1].Timestamp
	}

	if err := profile.NewValueArea(settings).Apply(prof, lastClose); err != nil {
		return nil, fmt.Errorf("recompute %s: %w", symbol, err)
	}

	levels := a.classifier.Classify(prof, lastClose)
	ind := indicators.NewEngine(settings).Compute(candles)

	fused := a.fusion.Fuse(models.FusionInput{
		Symbol:       symbol,
		Profile:      prof,
		Levels:       levels,
		Indicators:   ind,
		CurrentPrice: lastClose,
		Timestamp:    lastTS,
		Settings:     settings,
	}, prev)

	res := &AnalysisResult{
		Profile:    prof,
		Levels:     levels,
		Indicators: ind,
		Signals:    fused.Signals,
		Confidence: fused.Confidence,
		NextState:  fused.State,
	}
	if a.memo != nil && key != "" {
		a.memo.Set(key, res, a.memoTTL)
	}
	return res, nil
}

// memoKey identifies a recompute by series length, last timestamp, settings
// hash, and a fusion-state digest. Any appended candle or settings edit
// changes the key, which is all the invalidation the cache needs.
func (a *Analyzer) memoKey(symbol string, candles []models.Candle, settings models.Settings, prev models.FusionState) string {
	if len(candles) == 0 {
		return ""
	}
	last := candles[len(candles)-1].Timestamp.UnixMilli()
	return fmt.Sprintf("%s|%d|%d|%d|%d", symbol, len(candles), last, settings.Hash(), stateDigest(prev))
}

func stateDigest(s models.FusionState) uint64 {
	keys := make([]string, 0, len(s.Fired))
	for k := range s.Fired {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := fnv.New64a()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%d;", k, s.Fired[k].CooldownUntil.UnixMilli())
	}
	return h.Sum64()
}
