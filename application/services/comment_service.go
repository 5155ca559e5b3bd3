package services

import (
	"context"

	"ideaboard/application/ports"
	"ideaboard/application/projections"
	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"

	"go.uber.org/zap"
)

// CommentService handles comments on ideas. Comments are owned by the
// idea (deleting the idea cascades) and authored by a user (only the
// author may delete their comment).
type CommentService struct {
	comments ports.CommentRepository
	ideas    ports.IdeaRepository
	users    ports.UserRepository
	logger   *zap.Logger
}

// NewCommentService creates a comment service
func NewCommentService(
	comments ports.CommentRepository,
	ideas ports.IdeaRepository,
	users ports.UserRepository,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		ideas:    ideas,
		users:    users,
		logger:   logger,
	}
}

// ListByIdea returns all comments on an idea with authors attached
func (s *CommentService) ListByIdea(ctx context.Context, ideaID string) ([]projections.CommentView, error) {
	if _, err := s.ideas.GetByID(ctx, ideaID, ports.IdeaLoadOptions{}); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	if err := s.attachAuthors(ctx, comments); err != nil {
		return nil, err
	}

	return projections.ProjectComments(comments), nil
}

// ListByUser returns all comments authored by a user
func (s *CommentService) ListByUser(ctx context.Context, userID string) ([]projections.CommentView, error) {
	comments, err := s.comments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.attachAuthors(ctx, comments); err != nil {
		return nil, err
	}

	return projections.ProjectComments(comments), nil
}

// Get returns a single comment with its author attached
func (s *CommentService) Get(ctx context.Context, id string) (projections.CommentView, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return projections.CommentView{}, err
	}

	if err := s.attachAuthors(ctx, []*entities.Comment{comment}); err != nil {
		return projections.CommentView{}, err
	}

	return projections.ProjectComment(comment), nil
}

// Create posts a comment on an idea
func (s *CommentService) Create(ctx context.Context, ideaID, authorID, body string) (projections.CommentView, error) {
	idea, err := s.ideas.GetByID(ctx, ideaID, ports.IdeaLoadOptions{})
	if err != nil {
		return projections.CommentView{}, err
	}

	author, err := s.users.GetByID(ctx, authorID, ports.UserLoadOptions{})
	if err != nil {
		return projections.CommentView{}, err
	}

	comment, err := entities.NewComment(idea.ID(), author.ID(), body)
	if err != nil {
		return projections.CommentView{}, err
	}

	if err := s.comments.Save(ctx, comment); err != nil {
		return projections.CommentView{}, err
	}

	s.logger.Info("comment created",
		zap.String("commentID", comment.ID()),
		zap.String("ideaID", ideaID),
		zap.String("authorID", authorID),
	)

	comment.AttachAuthor(author)
	return projections.ProjectComment(comment), nil
}

// Delete removes a comment authored by requesterID
func (s *CommentService) Delete(ctx context.Context, id, requesterID string) (projections.CommentView, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return projections.CommentView{}, err
	}

	if !comment.IsOwnedBy(requesterID) {
		return projections.CommentView{}, pkgerrors.NewUnauthorizedError("You do not own this comment")
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return projections.CommentView{}, err
	}

	s.logger.Info("comment deleted",
		zap.String("commentID", id),
		zap.String("requesterID", requesterID),
	)

	return projections.ProjectComment(comment), nil
}

// attachAuthors loads and attaches the author relation for each comment
func (s *CommentService) attachAuthors(ctx context.Context, comments []*entities.Comment) error {
	loaded := make(map[string]*entities.User)

	for _, comment := range comments {
		author, ok := loaded[comment.AuthorID()]
		if !ok {
			var err error
			author, err = s.users.GetByID(ctx, comment.AuthorID(), ports.UserLoadOptions{})
			if err != nil {
				return err
			}
			loaded[comment.AuthorID()] = author
		}
		comment.AttachAuthor(author)
	}

	return nil
}
