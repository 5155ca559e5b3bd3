package entities

import (
	"time"

	"ideaboard/domain/events"
	pkgerrors "ideaboard/pkg/errors"

	"github.com/google/uuid"
)

// User is an account on the board. The bookmark list records membership
// only: an idea's lifetime is independent of who bookmarked it.
type User struct {
	id           string
	username     string
	passwordHash string
	createdAt    time.Time
	bookmarks    []string
	version      int

	// Explicitly loaded back-reference to authored ideas; nil unless requested
	ideas []*Idea

	events []events.DomainEvent
}

// NewUser creates a new user. The password must already be hashed; this
// entity never sees plaintext credentials.
func NewUser(username, passwordHash string) (*User, error) {
	if username == "" {
		return nil, pkgerrors.NewValidationError("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, pkgerrors.NewValidationError("password hash cannot be empty")
	}

	now := time.Now()
	user := &User{
		id:           uuid.New().String(),
		username:     username,
		passwordHash: passwordHash,
		createdAt:    now,
		bookmarks:    []string{},
		version:      1,
		events:       []events.DomainEvent{},
	}

	user.addEvent(events.NewUserRegistered(user.id, username, now))

	return user, nil
}

// ReconstructUser rebuilds a user from repository data. A nil bookmark
// list is lazily initialized to empty.
func ReconstructUser(
	id, username, passwordHash string,
	bookmarks []string,
	createdAt time.Time,
	version int,
) *User {
	if bookmarks == nil {
		bookmarks = []string{}
	}
	return &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		createdAt:    createdAt,
		bookmarks:    bookmarks,
		version:      version,
		events:       []events.DomainEvent{},
	}
}

// ID returns the user's unique identifier
func (u *User) ID() string { return u.id }

// Username returns the unique username
func (u *User) Username() string { return u.username }

// PasswordHash returns the stored hash. Only the login flow and the
// repositories read it; projections never serialize it.
func (u *User) PasswordHash() string { return u.passwordHash }

// CreatedAt returns when the account was created
func (u *User) CreatedAt() time.Time { return u.createdAt }

// Version returns the aggregate version for optimistic locking
func (u *User) Version() int { return u.version }

// Bookmarks returns a copy of the bookmarked idea IDs in insertion order
func (u *User) Bookmarks() []string {
	bookmarks := make([]string, len(u.bookmarks))
	copy(bookmarks, u.bookmarks)
	return bookmarks
}

// HasBookmark reports whether the idea is in the user's bookmark set
func (u *User) HasBookmark(ideaID string) bool {
	for _, id := range u.bookmarks {
		if id == ideaID {
			return true
		}
	}
	return false
}

// AddBookmark appends an idea to the bookmark list. Membership checks are
// the bookmark manager's responsibility.
func (u *User) AddBookmark(ideaID string) {
	u.bookmarks = append(u.bookmarks, ideaID)
	u.version++
	u.addEvent(events.NewIdeaBookmarked(u.id, ideaID, time.Now()))
}

// RemoveBookmark removes the single entry matching ideaID by identity
func (u *User) RemoveBookmark(ideaID string) {
	for idx, id := range u.bookmarks {
		if id == ideaID {
			u.bookmarks = append(u.bookmarks[:idx], u.bookmarks[idx+1:]...)
			u.version++
			u.addEvent(events.NewIdeaUnbookmarked(u.id, ideaID, time.Now()))
			return
		}
	}
}

// AttachIdeas sets the explicitly loaded authored-ideas relation
func (u *User) AttachIdeas(ideas []*Idea) { u.ideas = ideas }

// Ideas returns the loaded authored ideas, or nil when not requested
func (u *User) Ideas() []*Idea { return u.ideas }

// UncommittedEvents returns events raised since the last save
func (u *User) UncommittedEvents() []events.DomainEvent { return u.events }

// MarkEventsCommitted clears the uncommitted events
func (u *User) MarkEventsCommitted() { u.events = []events.DomainEvent{} }

func (u *User) addEvent(event events.DomainEvent) {
	u.events = append(u.events, event)
}
