//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"CountrySwipe/pkg/config"
	"CountrySwipe/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideTracing,
		ProvideMetrics,
		ProvideCache,
		ProvideHub,
		ProvideEventPublisher,

		// Chain and wallet
		ProvideWallet,
		ProvideChain,
		ProvideTracker,

		// Use cases
		ProvideSessionID,
		ProvideBackground,
		ProvideNewsSource,
		ProvideQueries,
		ProvidePollers,
		ProvideDispatcher,
		ProvideSession,
		ProvidePortfolioActions,

		// Application server
		ProvideHandlers,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
