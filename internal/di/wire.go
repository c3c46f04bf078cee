//go:build wireinject
// +build wireinject

package di

import (
	"FinSignal/pkg/config"
	"FinSignal/pkg/server"

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
		ProvideRedisCache,
		ProvideCache,
		ProvideQueue,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideCandleStore,
		ProvideCandleSource,
		ProvideSignalStore,
		ProvideSignalPublisher,
		ProvideLatestStore,

		// Engine and use cases
		ProvideAnalysisConfig,
		ProvideEngine,
		ProvideSignalScanner,
		ProvideAutoScanner,
		ProvideScanJob,
		ProvideCandlesUseCase,
		ProvideKafkaCandlesHandler,

		// Transport
		ProvideHub,
		ProvideSignalsHandler,
		ProvideRateLimiter,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeScanner builds only what a one-shot scan needs.
func InitializeScanner(cfg *config.Config) (*Scanner, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideRedisCache,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideCandleStore,
		ProvideCandleSource,
		ProvideSignalStore,
		ProvideSignalPublisher,
		ProvideLatestStore,
		ProvideAnalysisConfig,
		ProvideEngine,
		ProvideHub,
		ProvideSignalScanner,
		wire.Struct(new(Scanner), "*"),
	)
	return &Scanner{}, nil
}
