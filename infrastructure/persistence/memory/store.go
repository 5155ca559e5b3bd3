// Package memory provides mutex-guarded in-memory repositories. They back
// the test suites and local development; the mutex gives the same
// per-aggregate write serialization the DynamoDB implementation gets from
// conditional writes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ideaboard/application/ports"
	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"
)

// Store holds all records behind a single lock. Entities are persisted as
// plain records and reconstructed on read, so callers never share mutable
// state with the store.
type Store struct {
	mu        sync.RWMutex
	ideas     map[string]*ideaRecord
	ideaOrder []string
	users     map[string]*userRecord
	userOrder []string
	comments  map[string]*commentRecord
	// per idea, comment IDs in insertion order
	ideaComments map[string][]string
}

type ideaRecord struct {
	id          string
	authorID    string
	title       string
	description string
	votes       map[string]entities.VoteDirection
	createdAt   time.Time
	updatedAt   time.Time
	version     int
}

type userRecord struct {
	id           string
	username     string
	passwordHash string
	bookmarks    []string
	createdAt    time.Time
	version      int
}

type commentRecord struct {
	id        string
	ideaID    string
	authorID  string
	body      string
	createdAt time.Time
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		ideas:        make(map[string]*ideaRecord),
		users:        make(map[string]*userRecord),
		comments:     make(map[string]*commentRecord),
		ideaComments: make(map[string][]string),
	}
}

// IdeaRepository returns the idea repository backed by this store
func (s *Store) IdeaRepository() ports.IdeaRepository { return &ideaRepository{store: s} }

// UserRepository returns the user repository backed by this store
func (s *Store) UserRepository() ports.UserRepository { return &userRepository{store: s} }

// CommentRepository returns the comment repository backed by this store
func (s *Store) CommentRepository() ports.CommentRepository { return &commentRepository{store: s} }

// ideaRepository implements ports.IdeaRepository

type ideaRepository struct {
	store *Store
}

func (r *ideaRepository) Save(ctx context.Context, idea *entities.Idea) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ideas[idea.ID()]; !exists {
		s.ideaOrder = append(s.ideaOrder, idea.ID())
	}

	s.ideas[idea.ID()] = &ideaRecord{
		id:          idea.ID(),
		authorID:    idea.AuthorID(),
		title:       idea.Title(),
		description: idea.Description(),
		votes:       idea.Votes(),
		createdAt:   idea.CreatedAt(),
		updatedAt:   idea.UpdatedAt(),
		version:     idea.Version(),
	}
	return nil
}

func (r *ideaRepository) GetByID(ctx context.Context, id string, opts ports.IdeaLoadOptions) (*entities.Idea, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.ideas[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("idea")
	}

	idea := rec.reconstruct()

	if opts.WithAuthor {
		author, ok := s.users[rec.authorID]
		if !ok {
			return nil, pkgerrors.NewNotFoundError("user")
		}
		idea.AttachAuthor(author.reconstruct())
	}

	if opts.WithComments {
		idea.AttachComments(s.commentsForIdea(id))
	}

	return idea, nil
}

func (r *ideaRepository) List(ctx context.Context, page int, newestFirst bool) ([]*entities.Idea, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.ideaOrder))
	copy(ids, s.ideaOrder)

	if newestFirst {
		sort.SliceStable(ids, func(a, b int) bool {
			return s.ideas[ids[a]].createdAt.After(s.ideas[ids[b]].createdAt)
		})
	}

	start := (page - 1) * ports.ListPageSize
	if start >= len(ids) {
		return []*entities.Idea{}, nil
	}
	end := start + ports.ListPageSize
	if end > len(ids) {
		end = len(ids)
	}

	ideas := make([]*entities.Idea, 0, end-start)
	for _, id := range ids[start:end] {
		idea := s.ideas[id].reconstruct()
		if author, ok := s.users[s.ideas[id].authorID]; ok {
			idea.AttachAuthor(author.reconstruct())
		}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}

func (r *ideaRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ideas[id]; !ok {
		return pkgerrors.NewNotFoundError("idea")
	}

	delete(s.ideas, id)
	for idx, existing := range s.ideaOrder {
		if existing == id {
			s.ideaOrder = append(s.ideaOrder[:idx], s.ideaOrder[idx+1:]...)
			break
		}
	}
	return nil
}

// userRepository implements ports.UserRepository

type userRepository struct {
	store *Store
}

func (r *userRepository) Save(ctx context.Context, user *entities.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Usernames are unique at the store; the DynamoDB implementation
	// enforces this with a claim item written in the same transaction
	for _, rec := range s.users {
		if rec.username == user.Username() && rec.id != user.ID() {
			return pkgerrors.NewConflictError("Username already taken")
		}
	}

	if _, exists := s.users[user.ID()]; !exists {
		s.userOrder = append(s.userOrder, user.ID())
	}

	s.users[user.ID()] = &userRecord{
		id:           user.ID(),
		username:     user.Username(),
		passwordHash: user.PasswordHash(),
		bookmarks:    user.Bookmarks(),
		createdAt:    user.CreatedAt(),
		version:      user.Version(),
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string, opts ports.UserLoadOptions) (*entities.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("user")
	}

	user := rec.reconstruct()
	if opts.WithIdeas {
		user.AttachIdeas(s.ideasByAuthor(id))
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.users {
		if rec.username == username {
			return rec.reconstruct(), nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("user")
}

func (r *userRepository) List(ctx context.Context, opts ports.UserLoadOptions) ([]*entities.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*entities.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		user := s.users[id].reconstruct()
		if opts.WithIdeas {
			user.AttachIdeas(s.ideasByAuthor(id))
		}
		users = append(users, user)
	}
	return users, nil
}

// commentRepository implements ports.CommentRepository

type commentRepository struct {
	store *Store
}

func (r *commentRepository) Save(ctx context.Context, comment *entities.Comment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.comments[comment.ID()]; !exists {
		s.ideaComments[comment.IdeaID()] = append(s.ideaComments[comment.IdeaID()], comment.ID())
	}

	s.comments[comment.ID()] = &commentRecord{
		id:        comment.ID(),
		ideaID:    comment.IdeaID(),
		authorID:  comment.AuthorID(),
		body:      comment.Body(),
		createdAt: comment.CreatedAt(),
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*entities.Comment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.comments[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("comment")
	}
	return rec.reconstruct(), nil
}

func (r *commentRepository) ListByIdea(ctx context.Context, ideaID string) ([]*entities.Comment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.commentsForIdea(ideaID), nil
}

func (r *commentRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Comment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := []*entities.Comment{}
	for _, ideaID := range s.ideaOrder {
		for _, commentID := range s.ideaComments[ideaID] {
			if rec := s.comments[commentID]; rec != nil && rec.authorID == userID {
				comments = append(comments, rec.reconstruct())
			}
		}
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.comments[id]
	if !ok {
		return pkgerrors.NewNotFoundError("comment")
	}

	delete(s.comments, id)
	ids := s.ideaComments[rec.ideaID]
	for idx, existing := range ids {
		if existing == id {
			s.ideaComments[rec.ideaID] = append(ids[:idx], ids[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *commentRepository) DeleteByIdea(ctx context.Context, ideaID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, commentID := range s.ideaComments[ideaID] {
		delete(s.comments, commentID)
	}
	delete(s.ideaComments, ideaID)
	return nil
}

// reconstruction helpers; callers must hold at least the read lock

func (rec *ideaRecord) reconstruct() *entities.Idea {
	votes := make(map[string]entities.VoteDirection, len(rec.votes))
	for k, v := range rec.votes {
		votes[k] = v
	}
	return entities.ReconstructIdea(
		rec.id, rec.authorID, rec.title, rec.description,
		votes, rec.createdAt, rec.updatedAt, rec.version,
	)
}

func (rec *userRecord) reconstruct() *entities.User {
	bookmarks := make([]string, len(rec.bookmarks))
	copy(bookmarks, rec.bookmarks)
	return entities.ReconstructUser(
		rec.id, rec.username, rec.passwordHash,
		bookmarks, rec.createdAt, rec.version,
	)
}

func (rec *commentRecord) reconstruct() *entities.Comment {
	return entities.ReconstructComment(rec.id, rec.ideaID, rec.authorID, rec.body, rec.createdAt)
}

func (s *Store) commentsForIdea(ideaID string) []*entities.Comment {
	comments := []*entities.Comment{}
	for _, commentID := range s.ideaComments[ideaID] {
		if rec := s.comments[commentID]; rec != nil {
			comments = append(comments, rec.reconstruct())
		}
	}
	return comments
}

func (s *Store) ideasByAuthor(userID string) []*entities.Idea {
	ideas := []*entities.Idea{}
	for _, ideaID := range s.ideaOrder {
		if rec := s.ideas[ideaID]; rec.authorID == userID {
			ideas = append(ideas, rec.reconstruct())
		}
	}
	return ideas
}
