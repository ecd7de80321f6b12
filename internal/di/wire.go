//go:build wireinject
// +build wireinject

package di

import (
	"VolumeScope/pkg/config"
	"VolumeScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCacheService,

		// Repositories
		ProvideCandleStore,
		ProvideSignalJournal,
		ProvideSettingsStore,

		// Use cases
		ProvideAnalyzer,
		ProvideAnalysisService,
		ProvideTimeframe,
		ProvideFeeds,
		ProvidePipeline,
		ProvideCollector,
		ProvideCandlesUseCase,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
