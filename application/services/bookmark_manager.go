package services

import (
	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"

	"go.uber.org/zap"
)

// BookmarkManager toggles membership of ideas in a user's bookmark list.
// Membership is tested against the loaded aggregate before mutating;
// duplicates and redundant removals fail with Conflict. Like the vote
// engine it performs no store calls itself.
type BookmarkManager struct {
	logger *zap.Logger
}

// NewBookmarkManager creates a bookmark manager
func NewBookmarkManager(logger *zap.Logger) *BookmarkManager {
	return &BookmarkManager{logger: logger}
}

// Bookmark adds the idea to the user's bookmark list
func (m *BookmarkManager) Bookmark(user *entities.User, ideaID string) error {
	if user.HasBookmark(ideaID) {
		return pkgerrors.NewConflictError("Idea already bookmarked")
	}

	user.AddBookmark(ideaID)

	m.logger.Debug("idea bookmarked",
		zap.String("userID", user.ID()),
		zap.String("ideaID", ideaID),
	)
	return nil
}

// Unbookmark removes the idea from the user's bookmark list
func (m *BookmarkManager) Unbookmark(user *entities.User, ideaID string) error {
	if !user.HasBookmark(ideaID) {
		return pkgerrors.NewConflictError("No bookmark registered")
	}

	user.RemoveBookmark(ideaID)

	m.logger.Debug("bookmark removed",
		zap.String("userID", user.ID()),
		zap.String("ideaID", ideaID),
	)
	return nil
}
