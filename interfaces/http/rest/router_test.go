package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ideaboard/application/services"
	"ideaboard/infrastructure/messaging/eventbridge"
	"ideaboard/infrastructure/persistence/memory"
	"ideaboard/pkg/auth"
	"ideaboard/pkg/common"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewStore()
	publisher := eventbridge.NewNoopPublisher(logger)

	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SecretKey: "test-secret",
		Issuer:    "ideaboard-test",
	})
	require.NoError(t, err)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "ideaboard-test",
	})
	require.NoError(t, err)

	ideaService := services.NewIdeaService(
		store.IdeaRepository(),
		store.UserRepository(),
		store.CommentRepository(),
		services.NewVoteEngine(logger),
		services.NewBookmarkManager(logger),
		publisher,
		logger,
	)
	userService := services.NewUserService(store.UserRepository(), issuer, publisher, logger)
	commentService := services.NewCommentService(
		store.CommentRepository(), store.IdeaRepository(), store.UserRepository(), logger)

	router := NewRouter(
		ideaService,
		userService,
		commentService,
		validator,
		auth.NewIPRateLimiter(10000),
		auth.NewUserRateLimiter(10000),
		false,
		logger,
	)
	return router.Setup()
}

func doJSON(t *testing.T, mux *chi.Mux, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) common.APIResponse {
	t.Helper()
	var resp common.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func dataMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	resp := decodeResponse(t, rec)
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "expected object data, got %T", resp.Data)
	return m
}

// registerUser registers via the API and returns the user ID and token
func registerUser(t *testing.T, mux *chi.Mux, username string) (string, string) {
	t.Helper()

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := dataMap(t, rec)
	return data["id"].(string), data["token"].(string)
}

// createIdea posts an idea and returns its ID
func createIdea(t *testing.T, mux *chi.Mux, token, title string) string {
	t.Helper()

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/ideas", token, map[string]string{
		"idea":        title,
		"description": "a description of " + title,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return dataMap(t, rec)["id"].(string)
}

func TestHealthEndpoints(t *testing.T) {
	mux := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndLoginFlow(t *testing.T) {
	mux := newTestRouter(t)

	_, token := registerUser(t, mux, "alice")
	assert.NotEmpty(t, token)

	// Duplicate registration conflicts.
	rec := doJSON(t, mux, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Login succeeds with the right password.
	rec = doJSON(t, mux, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, dataMap(t, rec)["token"])

	// Wrong password and unknown user both come back 400.
	rec = doJSON(t, mux, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong password here",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	mux := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMutationsRequireAuth(t *testing.T) {
	mux := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/ideas", "", map[string]string{
		"idea":        "title",
		"description": "desc",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/v1/ideas", "not-a-valid-token", map[string]string{
		"idea":        "title",
		"description": "desc",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdeaCRUDFlow(t *testing.T) {
	mux := newTestRouter(t)
	_, token := registerUser(t, mux, "alice")

	ideaID := createIdea(t, mux, token, "Solar roads")

	// Public read.
	rec := doJSON(t, mux, http.MethodGet, "/api/v1/ideas/"+ideaID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, rec)
	assert.Equal(t, "Solar roads", data["idea"])
	author := data["author"].(map[string]interface{})
	assert.Equal(t, "alice", author["username"])
	_, hasToken := author["token"]
	assert.False(t, hasToken, "author projection must not carry a token")

	// Update.
	rec = doJSON(t, mux, http.MethodPut, "/api/v1/ideas/"+ideaID, token, map[string]string{
		"idea": "Solar highways",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Solar highways", dataMap(t, rec)["idea"])

	// Delete.
	rec = doJSON(t, mux, http.MethodDelete, "/api/v1/ideas/"+ideaID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, dataMap(t, rec)["deleted"])

	rec = doJSON(t, mux, http.MethodGet, "/api/v1/ideas/"+ideaID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIdeaOwnershipEnforced(t *testing.T) {
	mux := newTestRouter(t)
	_, aliceToken := registerUser(t, mux, "alice")
	_, malloryToken := registerUser(t, mux, "mallory")

	ideaID := createIdea(t, mux, aliceToken, "Solar roads")

	rec := doJSON(t, mux, http.MethodPut, "/api/v1/ideas/"+ideaID, malloryToken, map[string]string{
		"idea": "hijacked",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/api/v1/ideas/"+ideaID, malloryToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unmodified.
	rec = doJSON(t, mux, http.MethodGet, "/api/v1/ideas/"+ideaID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Solar roads", dataMap(t, rec)["idea"])
}

func TestVoteScenario(t *testing.T) {
	mux := newTestRouter(t)
	_, aliceToken := registerUser(t, mux, "alice")
	_, bobToken := registerUser(t, mux, "bob")

	ideaID := createIdea(t, mux, aliceToken, "Solar roads")

	// Bob upvotes.
	rec := doJSON(t, mux, http.MethodPost, "/api/v1/ideas/"+ideaID+"/upvote", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), dataMap(t, rec)["upvotes"])

	// Repeat upvote retracts.
	rec = doJSON(t, mux, http.MethodPost, "/api/v1/ideas/"+ideaID+"/upvote", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), dataMap(t, rec)["upvotes"])

	// Upvote again, then a downvote only retracts.
	doJSON(t, mux, http.MethodPost, "/api/v1/ideas/"+ideaID+"/upvote", bobToken, nil)
	rec = doJSON(t, mux, http.MethodPost, "/api/v1/ideas/"+ideaID+"/downvote", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, rec)
	assert.Equal(t, float64(0), data["upvotes"])
	assert.Equal(t, float64(0), data["downvotes"])

	// A second downvote casts.
	rec = doJSON(t, mux, http.MethodPost, "/api/v1/ideas/"+ideaID+"/downvote", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), dataMap(t, rec)["downvotes"])
}

func TestBookmarkScenario(t *testing.T) {
	mux := newTestRouter(t)
	_, aliceToken := registerUser(t, mux, "alice")
	_, bobToken := registerUser(t, mux, "bob")

	ideaID := createIdea(t, mux, aliceToken, "Solar roads")

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/ideas/"+ideaID+"/bookmark", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, rec)
	bookmarks := data["bookmarks"].([]interface{})
	require.Len(t, bookmarks, 1)
	assert.Equal(t, ideaID, bookmarks[0])

	// Duplicate bookmark conflicts with the exact message.
	rec = doJSON(t, mux, http.MethodPost, "/api/v1/ideas/"+ideaID+"/bookmark", bobToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Idea already bookmarked", decodeResponse(t, rec).Error.Message)

	// Remove, then removing again conflicts.
	rec = doJSON(t, mux, http.MethodDelete, "/api/v1/ideas/"+ideaID+"/bookmark", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/api/v1/ideas/"+ideaID+"/bookmark", bobToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "No bookmark registered", decodeResponse(t, rec).Error.Message)
}

func TestListPagination(t *testing.T) {
	mux := newTestRouter(t)
	_, token := registerUser(t, mux, "alice")

	for i := 0; i < 30; i++ {
		createIdea(t, mux, token, fmt.Sprintf("idea %02d", i))
	}

	rec := doJSON(t, mux, http.MethodGet, "/api/v1/ideas", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Len(t, resp.Data.([]interface{}), 25)

	rec = doJSON(t, mux, http.MethodGet, "/api/v1/ideas?page=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse(t, rec)
	assert.Len(t, resp.Data.([]interface{}), 5)
}

func TestListNewest(t *testing.T) {
	mux := newTestRouter(t)
	_, token := registerUser(t, mux, "alice")

	for i := 0; i < 3; i++ {
		createIdea(t, mux, token, fmt.Sprintf("idea %d", i))
	}

	rec := doJSON(t, mux, http.MethodGet, "/api/v1/ideas/newest", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	items := decodeResponse(t, rec).Data.([]interface{})
	require.Len(t, items, 3)

	var previous time.Time
	for idx, item := range items {
		created, err := time.Parse(time.RFC3339Nano, item.(map[string]interface{})["created"].(string))
		require.NoError(t, err)
		if idx > 0 {
			assert.False(t, created.After(previous), "created timestamps must be non-increasing")
		}
		previous = created
	}
}

func TestCommentFlow(t *testing.T) {
	mux := newTestRouter(t)
	_, aliceToken := registerUser(t, mux, "alice")
	bobID, bobToken := registerUser(t, mux, "bob")

	ideaID := createIdea(t, mux, aliceToken, "Solar roads")

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/comments/idea/"+ideaID, bobToken, map[string]string{
		"comment": "great idea",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	commentID := dataMap(t, rec)["id"].(string)

	// Public reads.
	rec = doJSON(t, mux, http.MethodGet, "/api/v1/comments/idea/"+ideaID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeResponse(t, rec).Data.([]interface{}), 1)

	rec = doJSON(t, mux, http.MethodGet, "/api/v1/comments/user/"+bobID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeResponse(t, rec).Data.([]interface{}), 1)

	// Only the author may delete.
	rec = doJSON(t, mux, http.MethodDelete, "/api/v1/comments/"+commentID, aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/api/v1/comments/"+commentID, bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/v1/comments/"+commentID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersListOmitsSecrets(t *testing.T) {
	mux := newTestRouter(t)
	_, token := registerUser(t, mux, "alice")
	createIdea(t, mux, token, "Solar roads")

	rec := doJSON(t, mux, http.MethodGet, "/api/v1/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	users := decodeResponse(t, rec).Data.([]interface{})
	require.Len(t, users, 1)

	user := users[0].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	_, hasToken := user["token"]
	assert.False(t, hasToken)
	_, hasHash := user["passwordHash"]
	assert.False(t, hasHash)
	assert.Len(t, user["ideas"].([]interface{}), 1)
}
