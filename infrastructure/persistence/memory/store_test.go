package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ideaboard/application/ports"
	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveUser(t *testing.T, store *Store, username string) *entities.User {
	t.Helper()
	user, err := entities.NewUser(username, "hashed")
	require.NoError(t, err)
	require.NoError(t, store.UserRepository().Save(context.Background(), user))
	return user
}

func saveIdea(t *testing.T, store *Store, authorID, title string, createdAt time.Time) *entities.Idea {
	t.Helper()
	idea := entities.ReconstructIdea(
		fmt.Sprintf("idea-%s", title), authorID, title, "desc",
		nil, createdAt, createdAt, 1,
	)
	require.NoError(t, store.IdeaRepository().Save(context.Background(), idea))
	return idea
}

func TestIdeaRepositoryRoundTrip(t *testing.T) {
	store := NewStore()
	author := saveUser(t, store, "alice")

	idea, err := entities.NewIdea(author.ID(), "title", "desc")
	require.NoError(t, err)
	require.NoError(t, idea.CastVote("voter-1", entities.VoteUp))
	require.NoError(t, store.IdeaRepository().Save(context.Background(), idea))

	loaded, err := store.IdeaRepository().GetByID(context.Background(), idea.ID(), ports.IdeaLoadOptions{WithAuthor: true})
	require.NoError(t, err)
	assert.Equal(t, idea.ID(), loaded.ID())
	assert.Equal(t, entities.VoteStateUp, loaded.VoteFor("voter-1"))
	require.NotNil(t, loaded.Author())
	assert.Equal(t, "alice", loaded.Author().Username())

	// Mutating the loaded copy does not leak into the store.
	require.NoError(t, loaded.RetractVote("voter-1"))
	reread, err := store.IdeaRepository().GetByID(context.Background(), idea.ID(), ports.IdeaLoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, entities.VoteStateUp, reread.VoteFor("voter-1"))
}

func TestIdeaRepositoryGetMissing(t *testing.T) {
	store := NewStore()

	_, err := store.IdeaRepository().GetByID(context.Background(), "missing", ports.IdeaLoadOptions{})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestIdeaRepositoryListPaging(t *testing.T) {
	store := NewStore()
	author := saveUser(t, store, "alice")

	base := time.Now()
	for i := 0; i < ports.ListPageSize+3; i++ {
		saveIdea(t, store, author.ID(), fmt.Sprintf("%02d", i), base.Add(time.Duration(i)*time.Second))
	}

	page1, err := store.IdeaRepository().List(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Len(t, page1, ports.ListPageSize)

	page2, err := store.IdeaRepository().List(context.Background(), 2, false)
	require.NoError(t, err)
	assert.Len(t, page2, 3)

	// Storage order preserves insertion.
	assert.Equal(t, "00", page1[0].Title())
}

func TestIdeaRepositoryListNewestFirst(t *testing.T) {
	store := NewStore()
	author := saveUser(t, store, "alice")

	base := time.Now()
	saveIdea(t, store, author.ID(), "oldest", base.Add(-2*time.Hour))
	saveIdea(t, store, author.ID(), "newest", base)
	saveIdea(t, store, author.ID(), "middle", base.Add(-1*time.Hour))

	ideas, err := store.IdeaRepository().List(context.Background(), 1, true)
	require.NoError(t, err)
	require.Len(t, ideas, 3)
	assert.Equal(t, "newest", ideas[0].Title())
	assert.Equal(t, "middle", ideas[1].Title())
	assert.Equal(t, "oldest", ideas[2].Title())
}

func TestIdeaRepositoryDelete(t *testing.T) {
	store := NewStore()
	author := saveUser(t, store, "alice")
	idea := saveIdea(t, store, author.ID(), "title", time.Now())

	require.NoError(t, store.IdeaRepository().Delete(context.Background(), idea.ID()))

	_, err := store.IdeaRepository().GetByID(context.Background(), idea.ID(), ports.IdeaLoadOptions{})
	assert.True(t, pkgerrors.IsNotFound(err))

	assert.True(t, pkgerrors.IsNotFound(store.IdeaRepository().Delete(context.Background(), idea.ID())))
}

func TestUserRepositoryGetByUsername(t *testing.T) {
	store := NewStore()
	user := saveUser(t, store, "alice")

	found, err := store.UserRepository().GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID(), found.ID())

	_, err = store.UserRepository().GetByUsername(context.Background(), "nobody")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUserRepositoryListWithIdeas(t *testing.T) {
	store := NewStore()
	alice := saveUser(t, store, "alice")
	saveUser(t, store, "bob")
	saveIdea(t, store, alice.ID(), "hers", time.Now())

	users, err := store.UserRepository().List(context.Background(), ports.UserLoadOptions{WithIdeas: true})
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "alice", users[0].Username())
	assert.Len(t, users[0].Ideas(), 1)
	assert.Empty(t, users[1].Ideas())
}

func TestCommentRepositoryLifecycle(t *testing.T) {
	store := NewStore()
	author := saveUser(t, store, "alice")
	idea := saveIdea(t, store, author.ID(), "title", time.Now())

	first, err := entities.NewComment(idea.ID(), author.ID(), "first")
	require.NoError(t, err)
	second, err := entities.NewComment(idea.ID(), author.ID(), "second")
	require.NoError(t, err)
	require.NoError(t, store.CommentRepository().Save(context.Background(), first))
	require.NoError(t, store.CommentRepository().Save(context.Background(), second))

	listed, err := store.CommentRepository().ListByIdea(context.Background(), idea.ID())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID(), listed[0].ID())

	require.NoError(t, store.CommentRepository().Delete(context.Background(), first.ID()))
	listed, err = store.CommentRepository().ListByIdea(context.Background(), idea.ID())
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, store.CommentRepository().DeleteByIdea(context.Background(), idea.ID()))
	listed, err = store.CommentRepository().ListByIdea(context.Background(), idea.ID())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestUserRepositorySaveRejectsDuplicateUsername(t *testing.T) {
	store := NewStore()
	saveUser(t, store, "alice")

	// A second account racing past the service-level lookup still cannot
	// take the same username at the store
	dup, err := entities.NewUser("alice", "hashed")
	require.NoError(t, err)

	err = store.UserRepository().Save(context.Background(), dup)
	require.True(t, pkgerrors.IsConflict(err))
	var appErr *pkgerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Username already taken", appErr.Message)

	users, err := store.UserRepository().List(context.Background(), ports.UserLoadOptions{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepositorySaveAllowsOwnUpdate(t *testing.T) {
	store := NewStore()
	user := saveUser(t, store, "alice")

	// Re-saving the same account, e.g. after a bookmark change, is not a
	// uniqueness violation
	user.AddBookmark("idea-1")
	require.NoError(t, store.UserRepository().Save(context.Background(), user))

	loaded, err := store.UserRepository().GetByID(context.Background(), user.ID(), ports.UserLoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"idea-1"}, loaded.Bookmarks())
}
