// Package projections converts internal entities into external-safe views.
// Projection is side-effect free: entities are never mutated and secrets
// (password hashes, raw voter lists) never reach a view.
package projections

import (
	"time"

	"ideaboard/domain/core/entities"
)

// IdeaView is the external shape of an idea. Vote membership is reduced
// to counts; the voter lists themselves are never serialized.
type IdeaView struct {
	ID          string        `json:"id"`
	Created     time.Time     `json:"created"`
	Updated     time.Time     `json:"updated"`
	Title       string        `json:"idea"`
	Description string        `json:"description"`
	Author      *UserView     `json:"author,omitempty"`
	Upvotes     int           `json:"upvotes"`
	Downvotes   int           `json:"downvotes"`
	Comments    []CommentView `json:"comments,omitempty"`
}

// UserView is the external shape of a user. The password hash is always
// stripped; the token appears only on registration and login responses.
type UserView struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Created   time.Time  `json:"created"`
	Token     string     `json:"token,omitempty"`
	Bookmarks []string   `json:"bookmarks,omitempty"`
	Ideas     []IdeaView `json:"ideas,omitempty"`
}

// CommentView is the external shape of a comment
type CommentView struct {
	ID      string    `json:"id"`
	IdeaID  string    `json:"idea"`
	Body    string    `json:"comment"`
	Created time.Time `json:"created"`
	Author  *UserView `json:"author,omitempty"`
}

// ProjectIdea converts an idea into its external view. Loaded relations
// (author, comments) are projected recursively, always without token.
func ProjectIdea(idea *entities.Idea) IdeaView {
	view := IdeaView{
		ID:          idea.ID(),
		Created:     idea.CreatedAt(),
		Updated:     idea.UpdatedAt(),
		Title:       idea.Title(),
		Description: idea.Description(),
		Upvotes:     idea.Upvotes(),
		Downvotes:   idea.Downvotes(),
	}

	if author := idea.Author(); author != nil {
		authorView := ProjectUser(author)
		view.Author = &authorView
	}

	if comments := idea.Comments(); comments != nil {
		view.Comments = ProjectComments(comments)
	}

	return view
}

// ProjectIdeas converts a list of ideas
func ProjectIdeas(ideas []*entities.Idea) []IdeaView {
	views := make([]IdeaView, 0, len(ideas))
	for _, idea := range ideas {
		views = append(views, ProjectIdea(idea))
	}
	return views
}

// ProjectUser converts a user into its external view, without token
func ProjectUser(user *entities.User) UserView {
	view := UserView{
		ID:       user.ID(),
		Username: user.Username(),
		Created:  user.CreatedAt(),
	}

	if bookmarks := user.Bookmarks(); len(bookmarks) > 0 {
		view.Bookmarks = bookmarks
	}

	if ideas := user.Ideas(); ideas != nil {
		view.Ideas = ProjectIdeas(ideas)
	}

	return view
}

// ProjectUserWithBookmarks is like ProjectUser but always carries the
// bookmark list, even when empty. Used by the bookmark operations, whose
// callers need to observe removals.
func ProjectUserWithBookmarks(user *entities.User) UserView {
	view := ProjectUser(user)
	view.Bookmarks = user.Bookmarks()
	return view
}

// WithToken returns a copy of the view carrying an authentication token.
// Only the registration and login flows call this.
func (v UserView) WithToken(token string) UserView {
	v.Token = token
	return v
}

// ProjectComment converts a comment into its external view
func ProjectComment(comment *entities.Comment) CommentView {
	view := CommentView{
		ID:      comment.ID(),
		IdeaID:  comment.IdeaID(),
		Body:    comment.Body(),
		Created: comment.CreatedAt(),
	}

	if author := comment.Author(); author != nil {
		authorView := ProjectUser(author)
		view.Author = &authorView
	}

	return view
}

// ProjectComments converts a list of comments
func ProjectComments(comments []*entities.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, ProjectComment(comment))
	}
	return views
}
