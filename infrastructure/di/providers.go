// Package di assembles the application object graph with google/wire.
package di

import (
	"context"
	"fmt"
	"net/http"

	"ideaboard/application/ports"
	"ideaboard/application/services"
	"ideaboard/infrastructure/config"
	"ideaboard/infrastructure/messaging/eventbridge"
	dynamostore "ideaboard/infrastructure/persistence/dynamodb"
	"ideaboard/infrastructure/persistence/memory"
	"ideaboard/interfaces/http/rest"
	"ideaboard/pkg/auth"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// Container holds the fully wired application
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Handler http.Handler

	Ideas    *services.IdeaService
	Users    *services.UserService
	Comments *services.CommentService
}

// ProvideConfig loads configuration from the environment
func ProvideConfig() (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger builds a zap logger matching the environment
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// repositories bundles the three persistence ports so one provider can
// switch the whole set on the configured backend
type repositories struct {
	ideas    ports.IdeaRepository
	users    ports.UserRepository
	comments ports.CommentRepository
}

// ProvideRepositories selects the persistence backend from config
func ProvideRepositories(cfg *config.Config, logger *zap.Logger) (*repositories, error) {
	switch cfg.Store {
	case config.StoreDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.AWSRegion),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := awsdynamodb.NewFromConfig(awsCfg)

		return &repositories{
			ideas:    dynamostore.NewIdeaRepository(client, cfg.DynamoDBTable, cfg.IndexName, cfg.GSI2IndexName, logger),
			users:    dynamostore.NewUserRepository(client, cfg.DynamoDBTable, cfg.IndexName, cfg.GSI2IndexName, logger),
			comments: dynamostore.NewCommentRepository(client, cfg.DynamoDBTable, cfg.IndexName, cfg.GSI2IndexName, logger),
		}, nil

	case config.StoreMemory:
		store := memory.NewStore()
		return &repositories{
			ideas:    store.IdeaRepository(),
			users:    store.UserRepository(),
			comments: store.CommentRepository(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

// ProvideIdeaRepository unwraps the idea port
func ProvideIdeaRepository(repos *repositories) ports.IdeaRepository { return repos.ideas }

// ProvideUserRepository unwraps the user port
func ProvideUserRepository(repos *repositories) ports.UserRepository { return repos.users }

// ProvideCommentRepository unwraps the comment port
func ProvideCommentRepository(repos *repositories) ports.CommentRepository { return repos.comments }

// ProvideEventPublisher builds the EventBridge publisher, or a noop
// publisher when no bus is configured
func ProvideEventPublisher(cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, error) {
	if cfg.EventBusName == "" {
		return eventbridge.NewNoopPublisher(logger), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := awseventbridge.NewFromConfig(awsCfg)

	return eventbridge.NewPublisher(client, cfg.EventBusName, logger), nil
}

// jwtSecret resolves the signing secret, falling back to a fixed
// development value outside production (Validate rejects the empty
// secret in production)
func jwtSecret(cfg *config.Config) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}
	return "development-secret-change-in-production"
}

// ProvideJWTValidator builds the token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: jwtSecret(cfg),
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideTokenIssuer builds the token issuer
func ProvideTokenIssuer(cfg *config.Config) (*auth.TokenIssuer, error) {
	return auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SecretKey: jwtSecret(cfg),
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideVoteEngine builds the vote engine
func ProvideVoteEngine(logger *zap.Logger) *services.VoteEngine {
	return services.NewVoteEngine(logger)
}

// ProvideBookmarkManager builds the bookmark manager
func ProvideBookmarkManager(logger *zap.Logger) *services.BookmarkManager {
	return services.NewBookmarkManager(logger)
}

// ProvideIdeaService builds the idea lifecycle service
func ProvideIdeaService(
	repos *repositories,
	votes *services.VoteEngine,
	bookmarks *services.BookmarkManager,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.IdeaService {
	return services.NewIdeaService(repos.ideas, repos.users, repos.comments, votes, bookmarks, publisher, logger)
}

// ProvideUserService builds the user service
func ProvideUserService(
	repos *repositories,
	tokens *auth.TokenIssuer,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.UserService {
	return services.NewUserService(repos.users, tokens, publisher, logger)
}

// ProvideCommentService builds the comment service
func ProvideCommentService(repos *repositories, logger *zap.Logger) *services.CommentService {
	return services.NewCommentService(repos.comments, repos.ideas, repos.users, logger)
}

// ProvideHandler builds the configured chi router
func ProvideHandler(
	cfg *config.Config,
	ideas *services.IdeaService,
	users *services.UserService,
	comments *services.CommentService,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) http.Handler {
	router := rest.NewRouter(
		ideas,
		users,
		comments,
		validator,
		auth.NewIPRateLimiter(cfg.IPRateLimit),
		auth.NewUserRateLimiter(cfg.UserRateLimit),
		cfg.EnableCORS,
		logger,
	)
	return router.Setup()
}

// ProvideContainer assembles the container
func ProvideContainer(
	cfg *config.Config,
	logger *zap.Logger,
	handler http.Handler,
	ideas *services.IdeaService,
	users *services.UserService,
	comments *services.CommentService,
) *Container {
	return &Container{
		Config:   cfg,
		Logger:   logger,
		Handler:  handler,
		Ideas:    ideas,
		Users:    users,
		Comments: comments,
	}
}
