package services

import (
	"context"
	"sync"
	"testing"

	"ideaboard/application/ports"
	"ideaboard/domain/core/entities"
	"ideaboard/domain/events"
	"ideaboard/infrastructure/persistence/memory"
	"ideaboard/pkg/auth"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// capturePublisher records published events for assertions
type capturePublisher struct {
	mu        sync.Mutex
	published []events.DomainEvent
}

func (p *capturePublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

func (p *capturePublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, batch...)
	return nil
}

func (p *capturePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.published))
	for _, e := range p.published {
		types = append(types, e.GetEventType())
	}
	return types
}

type testEnv struct {
	ideas     *IdeaService
	users     *UserService
	comments  *CommentService
	store     *memory.Store
	publisher *capturePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewStore()
	publisher := &capturePublisher{}

	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SecretKey: "test-secret",
		Issuer:    "ideaboard-test",
	})
	require.NoError(t, err)

	return &testEnv{
		ideas: NewIdeaService(
			store.IdeaRepository(),
			store.UserRepository(),
			store.CommentRepository(),
			NewVoteEngine(logger),
			NewBookmarkManager(logger),
			publisher,
			logger,
		),
		users:     NewUserService(store.UserRepository(), issuer, publisher, logger),
		comments:  NewCommentService(store.CommentRepository(), store.IdeaRepository(), store.UserRepository(), logger),
		store:     store,
		publisher: publisher,
	}
}

// seedUser stores a user directly and returns it
func seedUser(t *testing.T, env *testEnv, username string) *entities.User {
	t.Helper()

	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)

	user, err := entities.NewUser(username, hash)
	require.NoError(t, err)
	require.NoError(t, env.store.UserRepository().Save(context.Background(), user))
	return user
}

// seedIdea stores an idea authored by the given user
func seedIdea(t *testing.T, env *testEnv, authorID, title string) *entities.Idea {
	t.Helper()

	idea, err := entities.NewIdea(authorID, title, "a description of "+title)
	require.NoError(t, err)
	require.NoError(t, env.store.IdeaRepository().Save(context.Background(), idea))
	return idea
}

var _ ports.EventPublisher = (*capturePublisher)(nil)
