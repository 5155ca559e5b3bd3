package events

import (
	"time"
)

// SourceIdeaboard identifies this service as the event source
const SourceIdeaboard = "ideaboard.api"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// Idea events

// IdeaCreated is raised when a new idea is posted
type IdeaCreated struct {
	BaseEvent
	IdeaID   string `json:"idea_id"`
	AuthorID string `json:"author_id"`
	Title    string `json:"title"`
}

// NewIdeaCreated creates an IdeaCreated event
func NewIdeaCreated(ideaID, authorID, title string, timestamp time.Time) IdeaCreated {
	return IdeaCreated{
		BaseEvent: BaseEvent{
			AggregateID: ideaID,
			EventType:   "idea.created",
			Timestamp:   timestamp,
		},
		IdeaID:   ideaID,
		AuthorID: authorID,
		Title:    title,
	}
}

// IdeaUpdated is raised when an idea's title or description changes
type IdeaUpdated struct {
	BaseEvent
	IdeaID string `json:"idea_id"`
}

// NewIdeaUpdated creates an IdeaUpdated event
func NewIdeaUpdated(ideaID string, timestamp time.Time) IdeaUpdated {
	return IdeaUpdated{
		BaseEvent: BaseEvent{
			AggregateID: ideaID,
			EventType:   "idea.updated",
			Timestamp:   timestamp,
		},
		IdeaID: ideaID,
	}
}

// IdeaDeleted is raised when an idea and its comments are removed
type IdeaDeleted struct {
	BaseEvent
	IdeaID   string `json:"idea_id"`
	AuthorID string `json:"author_id"`
}

// NewIdeaDeleted creates an IdeaDeleted event
func NewIdeaDeleted(ideaID, authorID string, timestamp time.Time) IdeaDeleted {
	return IdeaDeleted{
		BaseEvent: BaseEvent{
			AggregateID: ideaID,
			EventType:   "idea.deleted",
			Timestamp:   timestamp,
		},
		IdeaID:   ideaID,
		AuthorID: authorID,
	}
}

// Vote events

// VoteCast is raised when a user casts a vote from the neutral state
type VoteCast struct {
	BaseEvent
	IdeaID    string `json:"idea_id"`
	VoterID   string `json:"voter_id"`
	Direction string `json:"direction"`
}

// NewVoteCast creates a VoteCast event
func NewVoteCast(ideaID, voterID, direction string, timestamp time.Time) VoteCast {
	return VoteCast{
		BaseEvent: BaseEvent{
			AggregateID: ideaID,
			EventType:   "idea.vote_cast",
			Timestamp:   timestamp,
		},
		IdeaID:    ideaID,
		VoterID:   voterID,
		Direction: direction,
	}
}

// VoteRetracted is raised when a repeat vote removes the user's existing vote
type VoteRetracted struct {
	BaseEvent
	IdeaID  string `json:"idea_id"`
	VoterID string `json:"voter_id"`
}

// NewVoteRetracted creates a VoteRetracted event
func NewVoteRetracted(ideaID, voterID string, timestamp time.Time) VoteRetracted {
	return VoteRetracted{
		BaseEvent: BaseEvent{
			AggregateID: ideaID,
			EventType:   "idea.vote_retracted",
			Timestamp:   timestamp,
		},
		IdeaID:  ideaID,
		VoterID: voterID,
	}
}

// Bookmark events

// IdeaBookmarked is raised when a user bookmarks an idea
type IdeaBookmarked struct {
	BaseEvent
	UserID string `json:"user_id"`
	IdeaID string `json:"idea_id"`
}

// NewIdeaBookmarked creates an IdeaBookmarked event
func NewIdeaBookmarked(userID, ideaID string, timestamp time.Time) IdeaBookmarked {
	return IdeaBookmarked{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   "user.idea_bookmarked",
			Timestamp:   timestamp,
		},
		UserID: userID,
		IdeaID: ideaID,
	}
}

// IdeaUnbookmarked is raised when a user removes a bookmark
type IdeaUnbookmarked struct {
	BaseEvent
	UserID string `json:"user_id"`
	IdeaID string `json:"idea_id"`
}

// NewIdeaUnbookmarked creates an IdeaUnbookmarked event
func NewIdeaUnbookmarked(userID, ideaID string, timestamp time.Time) IdeaUnbookmarked {
	return IdeaUnbookmarked{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   "user.idea_unbookmarked",
			Timestamp:   timestamp,
		},
		UserID: userID,
		IdeaID: ideaID,
	}
}

// User events

// UserRegistered is raised when a new account is created
type UserRegistered struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// NewUserRegistered creates a UserRegistered event
func NewUserRegistered(userID, username string, timestamp time.Time) UserRegistered {
	return UserRegistered{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   "user.registered",
			Timestamp:   timestamp,
		},
		UserID:   userID,
		Username: username,
	}
}
