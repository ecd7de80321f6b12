package usecase

import (
	"context"
	"fmt"

	"VolumeScope/internal/domain/models"
	domrepo "VolumeScope/internal/domain/repository"
)

// CandlesUseCase provides business logic for retrieving candle history.
type CandlesUseCase struct {
	store domrepo.CandleStore
}

func NewCandlesUseCase(store domrepo.CandleStore) *CandlesUseCase {
	return &CandlesUseCase{store: store}
}

type GetCandlesParams struct {
	Symbol    string
	N         int
	Timeframe domrepo.Timeframe
}

type GetCandlesResult struct {
	Symbol    string
	Timeframe string
	Count     int
	Candles   []models.Candle
}

func (uc *CandlesUseCase) GetLatest(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.N <= 0 {
		p.N = 200
	}
	if p.N > 1000 {
		p.N = 1000
	}

	candles, err := uc.store.GetLatestN(ctx, p.Symbol, p.N, p.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}

	return &GetCandlesResult{
		Symbol:    p.Symbol,
		Timeframe: string(p.Timeframe),
		Count:     len(candles),
		Candles:   candles,
	}, nil
}
