package repository

import (
	"context"
	"errors"
	"fmt"

	"VolumeScope/internal/domain/models"
	"VolumeScope/internal/domain/repository"
	"VolumeScope/pkg/cache"
)

// CacheSettingsStore keeps per-symbol analysis settings in the cache
// service. Settings never expire; a restart with Redis keeps them, the
// in-memory backend loses them and falls back to defaults.
type CacheSettingsStore struct {
	cache cache.Service
}

// NewCacheSettingsStore creates a cache-backed settings store.
func NewCacheSettingsStore(c cache.Service) repository.SettingsStore {
	return &CacheSettingsStore{cache: c}
}

func settingsKey(symbol string) string {
	return fmt.Sprintf("settings:%s", symbol)
}

func (s *CacheSettingsStore) Load(ctx context.Context, symbol string) (models.Settings, bool, error) {
	var settings models.Settings
	err := s.cache.Get(ctx, settingsKey(symbol), &settings)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.Settings{}, false, nil
		}
		return models.Settings{}, false, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Normalize(); err != nil {
		// Stored blob predates a rule change; treat as absent.
		return models.Settings{}, false, nil
	}
	return settings, true, nil
}

func (s *CacheSettingsStore) Save(ctx context.Context, symbol string, settings models.Settings) error {
	if err := s.cache.Set(ctx, settingsKey(symbol), settings, 0); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

var _ repository.SettingsStore = (*CacheSettingsStore)(nil)
