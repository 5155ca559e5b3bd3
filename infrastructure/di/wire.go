//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
)

// ProviderSet lists every provider the container needs
var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideRepositories,
	ProvideEventPublisher,
	ProvideJWTValidator,
	ProvideTokenIssuer,
	ProvideVoteEngine,
	ProvideBookmarkManager,
	ProvideIdeaService,
	ProvideUserService,
	ProvideCommentService,
	ProvideHandler,
	ProvideContainer,
)

// InitializeContainer builds the full application container
func InitializeContainer() (*Container, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
