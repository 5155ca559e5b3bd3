package ports

import (
	"context"

	"ideaboard/domain/core/entities"
	"ideaboard/domain/events"
)

// ListPageSize is the fixed page size of the idea listing
const ListPageSize = 25

// IdeaLoadOptions selects which relations to hydrate alongside an idea.
// Relation loading is always explicit; repositories never load eagerly.
type IdeaLoadOptions struct {
	WithAuthor   bool
	WithComments bool
}

// IdeaRepository defines the interface for idea persistence.
// Implementations must serialize concurrent save operations for the same
// aggregate ID (conditional writes, locking, or equivalent) so that
// read-modify-write sequences on one idea do not interleave.
type IdeaRepository interface {
	// Save persists an idea (create or update)
	Save(ctx context.Context, idea *entities.Idea) error

	// GetByID retrieves an idea by its ID with the requested relations
	GetByID(ctx context.Context, id string, opts IdeaLoadOptions) (*entities.Idea, error)

	// List returns one page (1-based, ListPageSize items) of ideas.
	// newestFirst orders by creation time descending; otherwise storage
	// order applies. Each call recomputes from the store.
	List(ctx context.Context, page int, newestFirst bool) ([]*entities.Idea, error)

	// Delete removes an idea
	Delete(ctx context.Context, id string) error
}

// UserLoadOptions selects which relations to hydrate alongside a user
type UserLoadOptions struct {
	WithIdeas bool
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Save persists a user (create or update)
	Save(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID with the requested relations
	GetByID(ctx context.Context, id string, opts UserLoadOptions) (*entities.User, error)

	// GetByUsername retrieves a user by unique username
	GetByUsername(ctx context.Context, username string) (*entities.User, error)

	// List retrieves all users with the requested relations
	List(ctx context.Context, opts UserLoadOptions) ([]*entities.User, error)
}

// CommentRepository defines the interface for comment persistence
type CommentRepository interface {
	// Save persists a comment
	Save(ctx context.Context, comment *entities.Comment) error

	// GetByID retrieves a comment by its ID
	GetByID(ctx context.Context, id string) (*entities.Comment, error)

	// ListByIdea retrieves all comments on an idea in insertion order
	ListByIdea(ctx context.Context, ideaID string) ([]*entities.Comment, error)

	// ListByUser retrieves all comments authored by a user
	ListByUser(ctx context.Context, userID string) ([]*entities.Comment, error)

	// Delete removes a single comment
	Delete(ctx context.Context, id string) error

	// DeleteByIdea removes all comments owned by an idea
	DeleteByIdea(ctx context.Context, ideaID string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
