package services

import (
	"context"
	"time"

	"ideaboard/application/ports"
	"ideaboard/application/projections"
	"ideaboard/domain/core/entities"
	"ideaboard/domain/events"
	pkgerrors "ideaboard/pkg/errors"

	"go.uber.org/zap"
)

// IdeaPatch carries a partial update of an idea. Nil fields are left
// untouched.
type IdeaPatch struct {
	Title       *string
	Description *string
}

// DeleteResult acknowledges a successful deletion
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

// IdeaService orchestrates the idea lifecycle: CRUD with ownership
// enforcement, plus voting and bookmarking via the vote engine and
// bookmark manager. All dependencies are constructor-injected.
//
// Each mutating operation performs exactly one read of the affected
// aggregate followed by at most one write, with no interleaved external
// calls. Serialization of concurrent writes to the same aggregate is the
// repository's responsibility.
type IdeaService struct {
	ideas     ports.IdeaRepository
	users     ports.UserRepository
	comments  ports.CommentRepository
	votes     *VoteEngine
	bookmarks *BookmarkManager
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewIdeaService creates an idea service
func NewIdeaService(
	ideas ports.IdeaRepository,
	users ports.UserRepository,
	comments ports.CommentRepository,
	votes *VoteEngine,
	bookmarks *BookmarkManager,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *IdeaService {
	return &IdeaService{
		ideas:     ideas,
		users:     users,
		comments:  comments,
		votes:     votes,
		bookmarks: bookmarks,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns one page of ideas (page is 1-based, page size fixed at
// ports.ListPageSize). With newestFirst the page is ordered by creation
// time descending. The listing is recomputed per call; no cursor state
// survives between calls.
func (s *IdeaService) List(ctx context.Context, page int, newestFirst bool) ([]projections.IdeaView, error) {
	if page < 1 {
		page = 1
	}

	ideas, err := s.ideas.List(ctx, page, newestFirst)
	if err != nil {
		return nil, err
	}

	return projections.ProjectIdeas(ideas), nil
}

// Create posts a new idea owned by ownerID
func (s *IdeaService) Create(ctx context.Context, ownerID, title, description string) (projections.IdeaView, error) {
	owner, err := s.users.GetByID(ctx, ownerID, ports.UserLoadOptions{})
	if err != nil {
		return projections.IdeaView{}, err
	}

	idea, err := entities.NewIdea(owner.ID(), title, description)
	if err != nil {
		return projections.IdeaView{}, err
	}

	if err := s.ideas.Save(ctx, idea); err != nil {
		return projections.IdeaView{}, err
	}
	s.publishEvents(ctx, idea)

	s.logger.Info("idea created",
		zap.String("ideaID", idea.ID()),
		zap.String("authorID", owner.ID()),
	)

	idea.AttachAuthor(owner)
	return projections.ProjectIdea(idea), nil
}

// Read returns a single idea with author and comments loaded
func (s *IdeaService) Read(ctx context.Context, id string) (projections.IdeaView, error) {
	idea, err := s.ideas.GetByID(ctx, id, ports.IdeaLoadOptions{WithAuthor: true, WithComments: true})
	if err != nil {
		return projections.IdeaView{}, err
	}

	return projections.ProjectIdea(idea), nil
}

// Update applies a partial patch to an idea owned by requesterID
func (s *IdeaService) Update(ctx context.Context, id, requesterID string, patch IdeaPatch) (projections.IdeaView, error) {
	idea, err := s.ideas.GetByID(ctx, id, ports.IdeaLoadOptions{WithAuthor: true})
	if err != nil {
		return projections.IdeaView{}, err
	}

	if !idea.IsOwnedBy(requesterID) {
		return projections.IdeaView{}, pkgerrors.NewUnauthorizedError("You do not own this idea")
	}

	if err := idea.UpdateContent(patch.Title, patch.Description); err != nil {
		return projections.IdeaView{}, err
	}

	if err := s.ideas.Save(ctx, idea); err != nil {
		return projections.IdeaView{}, err
	}
	s.publishEvents(ctx, idea)

	return projections.ProjectIdea(idea), nil
}

// Delete removes an idea owned by requesterID and cascades deletion of
// its comments
func (s *IdeaService) Delete(ctx context.Context, id, requesterID string) (DeleteResult, error) {
	idea, err := s.ideas.GetByID(ctx, id, ports.IdeaLoadOptions{})
	if err != nil {
		return DeleteResult{}, err
	}

	if !idea.IsOwnedBy(requesterID) {
		return DeleteResult{}, pkgerrors.NewUnauthorizedError("You do not own this idea")
	}

	if err := s.comments.DeleteByIdea(ctx, id); err != nil {
		return DeleteResult{}, err
	}

	if err := s.ideas.Delete(ctx, id); err != nil {
		return DeleteResult{}, err
	}

	if err := s.publisher.Publish(ctx, events.NewIdeaDeleted(idea.ID(), idea.AuthorID(), time.Now())); err != nil {
		s.logger.Warn("failed to publish idea deletion", zap.Error(err), zap.String("ideaID", id))
	}

	s.logger.Info("idea deleted",
		zap.String("ideaID", id),
		zap.String("requesterID", requesterID),
	)

	return DeleteResult{Deleted: true}, nil
}

// Upvote applies an up vote by userID to the idea. Voting is open to any
// authenticated user, the idea's author included.
func (s *IdeaService) Upvote(ctx context.Context, id, userID string) (projections.IdeaView, error) {
	return s.vote(ctx, id, userID, entities.VoteUp)
}

// Downvote applies a down vote by userID to the idea
func (s *IdeaService) Downvote(ctx context.Context, id, userID string) (projections.IdeaView, error) {
	return s.vote(ctx, id, userID, entities.VoteDown)
}

func (s *IdeaService) vote(ctx context.Context, id, userID string, direction entities.VoteDirection) (projections.IdeaView, error) {
	idea, err := s.ideas.GetByID(ctx, id, ports.IdeaLoadOptions{WithAuthor: true})
	if err != nil {
		return projections.IdeaView{}, err
	}

	voter, err := s.users.GetByID(ctx, userID, ports.UserLoadOptions{})
	if err != nil {
		return projections.IdeaView{}, err
	}

	state, err := s.votes.Apply(idea, voter.ID(), direction)
	if err != nil {
		return projections.IdeaView{}, err
	}

	if err := s.ideas.Save(ctx, idea); err != nil {
		return projections.IdeaView{}, err
	}
	s.publishEvents(ctx, idea)

	s.logger.Info("vote applied",
		zap.String("ideaID", id),
		zap.String("voterID", userID),
		zap.String("direction", string(direction)),
		zap.String("result", string(state)),
	)

	return projections.ProjectIdea(idea), nil
}

// Bookmark adds the idea to the user's bookmarks and returns the updated
// user view (token suppressed)
func (s *IdeaService) Bookmark(ctx context.Context, id, userID string) (projections.UserView, error) {
	return s.toggleBookmark(ctx, id, userID, true)
}

// Unbookmark removes the idea from the user's bookmarks
func (s *IdeaService) Unbookmark(ctx context.Context, id, userID string) (projections.UserView, error) {
	return s.toggleBookmark(ctx, id, userID, false)
}

func (s *IdeaService) toggleBookmark(ctx context.Context, id, userID string, add bool) (projections.UserView, error) {
	// The idea must resolve even though the user aggregate carries the
	// membership: bookmarking a missing idea is NotFound, not a no-op.
	idea, err := s.ideas.GetByID(ctx, id, ports.IdeaLoadOptions{})
	if err != nil {
		return projections.UserView{}, err
	}

	user, err := s.users.GetByID(ctx, userID, ports.UserLoadOptions{})
	if err != nil {
		return projections.UserView{}, err
	}

	if add {
		err = s.bookmarks.Bookmark(user, idea.ID())
	} else {
		err = s.bookmarks.Unbookmark(user, idea.ID())
	}
	if err != nil {
		return projections.UserView{}, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		return projections.UserView{}, err
	}
	s.publishUserEvents(ctx, user)

	return projections.ProjectUserWithBookmarks(user), nil
}

func (s *IdeaService) publishEvents(ctx context.Context, idea *entities.Idea) {
	pending := idea.UncommittedEvents()
	if len(pending) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(ctx, pending); err != nil {
		s.logger.Warn("failed to publish idea events", zap.Error(err), zap.String("ideaID", idea.ID()))
		return
	}
	idea.MarkEventsCommitted()
}

func (s *IdeaService) publishUserEvents(ctx context.Context, user *entities.User) {
	pending := user.UncommittedEvents()
	if len(pending) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(ctx, pending); err != nil {
		s.logger.Warn("failed to publish user events", zap.Error(err), zap.String("userID", user.ID()))
		return
	}
	user.MarkEventsCommitted()
}
