//go:build wireinject
// +build wireinject

package di

import (
	"StockSight/pkg/config"
	"StockSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideConsumers,
		ProvideRedisCache,
		ProvideBytesCache,

		// Repositories
		ProvideTickStorage,
		ProvideTickPublisher,
		ProvideAlertSink,
		ProvideFinnhubStream,
		ProvideYahooClient,
		ProvidePriceStore,
		ProvideNarrator,

		// Use cases
		ProvideTickProcessor,
		ProvideTickCollector,
		ProvideKafkaTicksHandler,
		ProvideKafkaAlertsHandler,
		ProvideSignalReportUseCase,
		ProvideReturnsUseCase,
		ProvideCandlesUseCase,
		ProvideValuationUseCase,
		ProvideRefreshQueue,
		ProvideWatchlistRefresher,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
