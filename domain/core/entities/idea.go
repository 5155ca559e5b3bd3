package entities

import (
	"sort"
	"time"

	"ideaboard/domain/events"
	pkgerrors "ideaboard/pkg/errors"

	"github.com/google/uuid"
)

// VoteDirection is the direction of a cast vote
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// VoteState is the derived per-user vote state on an idea. It is computed
// from the vote table and never stored as an independent field.
type VoteState string

const (
	VoteStateNone VoteState = "none"
	VoteStateUp   VoteState = "up"
	VoteStateDown VoteState = "down"
)

// State converts a direction into the equivalent state
func (d VoteDirection) State() VoteState {
	if d == VoteDown {
		return VoteStateDown
	}
	return VoteStateUp
}

// Idea is the central aggregate of the board: a posted idea together with
// the votes it has received and the comments it owns.
//
// Votes are a single map keyed by voter ID holding one tri-state entry per
// user, so a voter holding both directions at once is unrepresentable.
type Idea struct {
	id          string
	authorID    string
	title       string
	description string
	votes       map[string]VoteDirection
	createdAt   time.Time
	updatedAt   time.Time
	version     int

	// Explicitly loaded relations; nil unless the caller asked for them
	author   *User
	comments []*Comment

	events []events.DomainEvent
}

// NewIdea creates a new idea with business rule validation
func NewIdea(authorID, title, description string) (*Idea, error) {
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("authorID cannot be empty")
	}
	if title == "" {
		return nil, pkgerrors.NewValidationError("idea cannot be empty")
	}
	if description == "" {
		return nil, pkgerrors.NewValidationError("description cannot be empty")
	}

	now := time.Now()
	idea := &Idea{
		id:          uuid.New().String(),
		authorID:    authorID,
		title:       title,
		description: description,
		votes:       make(map[string]VoteDirection),
		createdAt:   now,
		updatedAt:   now,
		version:     1,
		events:      []events.DomainEvent{},
	}

	idea.addEvent(events.NewIdeaCreated(idea.id, authorID, title, now))

	return idea, nil
}

// ReconstructIdea rebuilds an idea from repository data with preserved
// timestamps and version. No events are raised.
func ReconstructIdea(
	id, authorID, title, description string,
	votes map[string]VoteDirection,
	createdAt, updatedAt time.Time,
	version int,
) *Idea {
	if votes == nil {
		votes = make(map[string]VoteDirection)
	}
	return &Idea{
		id:          id,
		authorID:    authorID,
		title:       title,
		description: description,
		votes:       votes,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		version:     version,
		events:      []events.DomainEvent{},
	}
}

// ID returns the idea's unique identifier
func (i *Idea) ID() string { return i.id }

// AuthorID returns the owning user's ID
func (i *Idea) AuthorID() string { return i.authorID }

// Title returns the idea text
func (i *Idea) Title() string { return i.title }

// Description returns the idea description
func (i *Idea) Description() string { return i.description }

// CreatedAt returns when the idea was posted
func (i *Idea) CreatedAt() time.Time { return i.createdAt }

// UpdatedAt returns when the idea was last modified
func (i *Idea) UpdatedAt() time.Time { return i.updatedAt }

// Version returns the aggregate version for optimistic locking
func (i *Idea) Version() int { return i.version }

// IsOwnedBy reports whether the given user authored the idea
func (i *Idea) IsOwnedBy(userID string) bool { return i.authorID == userID }

// UpdateContent applies a partial update of title and/or description.
// Votes, comments and authorship are immutable through this path.
func (i *Idea) UpdateContent(title, description *string) error {
	changed := false

	if title != nil {
		if *title == "" {
			return pkgerrors.NewValidationError("idea cannot be empty")
		}
		if *title != i.title {
			i.title = *title
			changed = true
		}
	}
	if description != nil {
		if *description == "" {
			return pkgerrors.NewValidationError("description cannot be empty")
		}
		if *description != i.description {
			i.description = *description
			changed = true
		}
	}

	if changed {
		i.touch()
		i.addEvent(events.NewIdeaUpdated(i.id, i.updatedAt))
	}

	return nil
}

// VoteFor returns the voter's current state on this idea
func (i *Idea) VoteFor(userID string) VoteState {
	if d, ok := i.votes[userID]; ok {
		return d.State()
	}
	return VoteStateNone
}

// CastVote records a vote for a user with no existing vote. Transition
// policy (retract-before-recast) lives in the vote engine; callers must
// not cast over an existing entry.
func (i *Idea) CastVote(userID string, direction VoteDirection) error {
	if _, ok := i.votes[userID]; ok {
		return pkgerrors.NewInternalError("vote already present for user")
	}
	i.votes[userID] = direction
	i.touch()
	i.addEvent(events.NewVoteCast(i.id, userID, string(direction), i.updatedAt))
	return nil
}

// RetractVote removes a user's existing vote, whichever direction it holds
func (i *Idea) RetractVote(userID string) error {
	if _, ok := i.votes[userID]; !ok {
		return pkgerrors.NewInternalError("no vote present for user")
	}
	delete(i.votes, userID)
	i.touch()
	i.addEvent(events.NewVoteRetracted(i.id, userID, i.updatedAt))
	return nil
}

// Upvotes returns the number of up votes
func (i *Idea) Upvotes() int {
	return i.countVotes(VoteUp)
}

// Downvotes returns the number of down votes
func (i *Idea) Downvotes() int {
	return i.countVotes(VoteDown)
}

func (i *Idea) countVotes(direction VoteDirection) int {
	n := 0
	for _, d := range i.votes {
		if d == direction {
			n++
		}
	}
	return n
}

// Votes returns a copy of the vote table, keyed by voter ID. Used by
// repositories to persist the aggregate; never serialized outward.
func (i *Idea) Votes() map[string]VoteDirection {
	votes := make(map[string]VoteDirection, len(i.votes))
	for k, v := range i.votes {
		votes[k] = v
	}
	return votes
}

// VoterIDs returns the sorted IDs of users whose vote matches direction
func (i *Idea) VoterIDs(direction VoteDirection) []string {
	ids := []string{}
	for id, d := range i.votes {
		if d == direction {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// AttachAuthor sets the explicitly loaded author relation
func (i *Idea) AttachAuthor(author *User) { i.author = author }

// Author returns the loaded author, or nil when the relation was not requested
func (i *Idea) Author() *User { return i.author }

// AttachComments sets the explicitly loaded comments relation
func (i *Idea) AttachComments(comments []*Comment) { i.comments = comments }

// Comments returns the loaded comments, or nil when the relation was not requested
func (i *Idea) Comments() []*Comment { return i.comments }

// UncommittedEvents returns events raised since the last save
func (i *Idea) UncommittedEvents() []events.DomainEvent { return i.events }

// MarkEventsCommitted clears the uncommitted events
func (i *Idea) MarkEventsCommitted() { i.events = []events.DomainEvent{} }

func (i *Idea) addEvent(event events.DomainEvent) {
	i.events = append(i.events, event)
}

func (i *Idea) touch() {
	i.updatedAt = time.Now()
	i.version++
}
