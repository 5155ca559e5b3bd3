package services

import (
	"context"

	"ideaboard/application/ports"
	"ideaboard/application/projections"
	"ideaboard/domain/core/entities"
	"ideaboard/pkg/auth"
	pkgerrors "ideaboard/pkg/errors"

	"go.uber.org/zap"
)

// UserService handles registration, login and user listing. Passwords
// are bcrypt-hashed before they reach the user entity; tokens are issued
// only on the register and login paths.
type UserService struct {
	users     ports.UserRepository
	tokens    *auth.TokenIssuer
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewUserService creates a user service
func NewUserService(
	users ports.UserRepository,
	tokens *auth.TokenIssuer,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger,
	}
}

// Register creates a new account and returns the user view with token
func (s *UserService) Register(ctx context.Context, username, password string) (projections.UserView, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return projections.UserView{}, err
	}
	if existing != nil {
		return projections.UserView{}, pkgerrors.NewConflictError("Username already taken")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return projections.UserView{}, pkgerrors.NewInternalError("failed to hash password").WithCause(err)
	}

	user, err := entities.NewUser(username, hash)
	if err != nil {
		return projections.UserView{}, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		return projections.UserView{}, err
	}

	if err := s.publisher.PublishBatch(ctx, user.UncommittedEvents()); err != nil {
		s.logger.Warn("failed to publish registration", zap.Error(err), zap.String("userID", user.ID()))
	} else {
		user.MarkEventsCommitted()
	}

	token, err := s.tokens.IssueToken(user.ID(), user.Username())
	if err != nil {
		return projections.UserView{}, pkgerrors.NewInternalError("failed to issue token").WithCause(err)
	}

	s.logger.Info("user registered", zap.String("userID", user.ID()), zap.String("username", username))

	return projections.ProjectUser(user).WithToken(token), nil
}

// Login authenticates a username/password pair and returns the user view
// with a fresh token. Unknown usernames and wrong passwords fail the same
// way.
func (s *UserService) Login(ctx context.Context, username, password string) (projections.UserView, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return projections.UserView{}, pkgerrors.NewInvalidCredentialsError()
		}
		return projections.UserView{}, err
	}

	if err := auth.ComparePassword(user.PasswordHash(), password); err != nil {
		return projections.UserView{}, pkgerrors.NewInvalidCredentialsError()
	}

	token, err := s.tokens.IssueToken(user.ID(), user.Username())
	if err != nil {
		return projections.UserView{}, pkgerrors.NewInternalError("failed to issue token").WithCause(err)
	}

	s.logger.Info("user logged in", zap.String("userID", user.ID()))

	return projections.ProjectUser(user).WithToken(token), nil
}

// List returns all users with their authored ideas, projected without
// tokens
func (s *UserService) List(ctx context.Context) ([]projections.UserView, error) {
	users, err := s.users.List(ctx, ports.UserLoadOptions{WithIdeas: true})
	if err != nil {
		return nil, err
	}

	views := make([]projections.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, projections.ProjectUser(user))
	}
	return views, nil
}
