package entities

import (
	"time"

	pkgerrors "ideaboard/pkg/errors"

	"github.com/google/uuid"
)

// Comment belongs to an idea and is owned by its author. Deleting the
// idea cascades to its comments; deleting a comment requires the
// requester to be the author.
type Comment struct {
	id        string
	ideaID    string
	authorID  string
	body      string
	createdAt time.Time

	author *User
}

// NewComment creates a new comment with validation
func NewComment(ideaID, authorID, body string) (*Comment, error) {
	if ideaID == "" {
		return nil, pkgerrors.NewValidationError("ideaID cannot be empty")
	}
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("authorID cannot be empty")
	}
	if body == "" {
		return nil, pkgerrors.NewValidationError("comment cannot be empty")
	}

	return &Comment{
		id:        uuid.New().String(),
		ideaID:    ideaID,
		authorID:  authorID,
		body:      body,
		createdAt: time.Now(),
	}, nil
}

// ReconstructComment rebuilds a comment from repository data
func ReconstructComment(id, ideaID, authorID, body string, createdAt time.Time) *Comment {
	return &Comment{
		id:        id,
		ideaID:    ideaID,
		authorID:  authorID,
		body:      body,
		createdAt: createdAt,
	}
}

// ID returns the comment's unique identifier
func (c *Comment) ID() string { return c.id }

// IdeaID returns the owning idea's ID
func (c *Comment) IdeaID() string { return c.ideaID }

// AuthorID returns the comment author's ID
func (c *Comment) AuthorID() string { return c.authorID }

// Body returns the comment text
func (c *Comment) Body() string { return c.body }

// CreatedAt returns when the comment was posted
func (c *Comment) CreatedAt() time.Time { return c.createdAt }

// IsOwnedBy reports whether the given user authored the comment
func (c *Comment) IsOwnedBy(userID string) bool { return c.authorID == userID }

// AttachAuthor sets the explicitly loaded author relation
func (c *Comment) AttachAuthor(author *User) { c.author = author }

// Author returns the loaded author, or nil when not requested
func (c *Comment) Author() *User { return c.author }
