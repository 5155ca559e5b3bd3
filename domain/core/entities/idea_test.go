package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdea(t *testing.T) {
	idea, err := NewIdea("author-1", "Solar roads", "Pave roads with panels")
	require.NoError(t, err)

	assert.NotEmpty(t, idea.ID())
	assert.Equal(t, "author-1", idea.AuthorID())
	assert.Equal(t, "Solar roads", idea.Title())
	assert.Equal(t, 1, idea.Version())
	assert.Equal(t, 0, idea.Upvotes())
	assert.Equal(t, 0, idea.Downvotes())
	assert.Len(t, idea.UncommittedEvents(), 1)
}

func TestNewIdeaValidation(t *testing.T) {
	tests := []struct {
		name        string
		authorID    string
		title       string
		description string
	}{
		{"empty author", "", "title", "desc"},
		{"empty title", "author", "", "desc"},
		{"empty description", "author", "title", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIdea(tt.authorID, tt.title, tt.description)
			assert.Error(t, err)
		})
	}
}

func TestIdeaVoteStates(t *testing.T) {
	idea, err := NewIdea("author-1", "title", "desc")
	require.NoError(t, err)

	assert.Equal(t, VoteStateNone, idea.VoteFor("voter-1"))

	require.NoError(t, idea.CastVote("voter-1", VoteUp))
	assert.Equal(t, VoteStateUp, idea.VoteFor("voter-1"))
	assert.Equal(t, 1, idea.Upvotes())
	assert.Equal(t, 0, idea.Downvotes())

	// Casting over an existing vote is a programming error
	assert.Error(t, idea.CastVote("voter-1", VoteDown))

	require.NoError(t, idea.RetractVote("voter-1"))
	assert.Equal(t, VoteStateNone, idea.VoteFor("voter-1"))
	assert.Equal(t, 0, idea.Upvotes())

	// Retracting an absent vote fails
	assert.Error(t, idea.RetractVote("voter-1"))
}

func TestIdeaVoteCountsIndependentVoters(t *testing.T) {
	idea, err := NewIdea("author-1", "title", "desc")
	require.NoError(t, err)

	require.NoError(t, idea.CastVote("a", VoteUp))
	require.NoError(t, idea.CastVote("b", VoteUp))
	require.NoError(t, idea.CastVote("c", VoteDown))

	assert.Equal(t, 2, idea.Upvotes())
	assert.Equal(t, 1, idea.Downvotes())
	assert.Equal(t, []string{"a", "b"}, idea.VoterIDs(VoteUp))
	assert.Equal(t, []string{"c"}, idea.VoterIDs(VoteDown))
}

func TestIdeaUpdateContent(t *testing.T) {
	idea, err := NewIdea("author-1", "old title", "old desc")
	require.NoError(t, err)
	idea.MarkEventsCommitted()
	v := idea.Version()

	newTitle := "new title"
	require.NoError(t, idea.UpdateContent(&newTitle, nil))
	assert.Equal(t, "new title", idea.Title())
	assert.Equal(t, "old desc", idea.Description())
	assert.Equal(t, v+1, idea.Version())
	assert.Len(t, idea.UncommittedEvents(), 1)

	empty := ""
	assert.Error(t, idea.UpdateContent(&empty, nil))
	assert.Error(t, idea.UpdateContent(nil, &empty))
}

func TestIdeaUpdateContentNoop(t *testing.T) {
	idea, err := NewIdea("author-1", "title", "desc")
	require.NoError(t, err)
	idea.MarkEventsCommitted()
	v := idea.Version()

	same := "title"
	require.NoError(t, idea.UpdateContent(&same, nil))
	assert.Equal(t, v, idea.Version())
	assert.Empty(t, idea.UncommittedEvents())
}

func TestIdeaOwnership(t *testing.T) {
	idea, err := NewIdea("author-1", "title", "desc")
	require.NoError(t, err)

	assert.True(t, idea.IsOwnedBy("author-1"))
	assert.False(t, idea.IsOwnedBy("someone-else"))
}

func TestReconstructIdeaNilVotes(t *testing.T) {
	now := time.Now()
	idea := ReconstructIdea("id-1", "author-1", "title", "desc", nil, now, now, 3)

	assert.Equal(t, VoteStateNone, idea.VoteFor("anyone"))
	assert.Equal(t, 3, idea.Version())
	assert.Empty(t, idea.UncommittedEvents())
}

func TestUserBookmarks(t *testing.T) {
	user, err := NewUser("alice", "hashed")
	require.NoError(t, err)

	assert.False(t, user.HasBookmark("idea-1"))
	assert.Empty(t, user.Bookmarks())

	user.AddBookmark("idea-1")
	user.AddBookmark("idea-2")
	assert.True(t, user.HasBookmark("idea-1"))
	assert.Equal(t, []string{"idea-1", "idea-2"}, user.Bookmarks())

	user.RemoveBookmark("idea-1")
	assert.False(t, user.HasBookmark("idea-1"))
	assert.Equal(t, []string{"idea-2"}, user.Bookmarks())
}

func TestReconstructUserNilBookmarks(t *testing.T) {
	user := ReconstructUser("id-1", "alice", "hash", nil, time.Now(), 1)
	assert.NotNil(t, user.Bookmarks())
	assert.Empty(t, user.Bookmarks())
}

func TestNewComment(t *testing.T) {
	comment, err := NewComment("idea-1", "author-1", "nice idea")
	require.NoError(t, err)

	assert.NotEmpty(t, comment.ID())
	assert.Equal(t, "idea-1", comment.IdeaID())
	assert.Equal(t, "author-1", comment.AuthorID())
	assert.True(t, comment.IsOwnedBy("author-1"))
	assert.False(t, comment.IsOwnedBy("other"))

	_, err = NewComment("idea-1", "author-1", "")
	assert.Error(t, err)
}
