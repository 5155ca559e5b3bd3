package handlers

import (
	"net/http"

	"ideaboard/application/services"
	"ideaboard/pkg/auth"
	"ideaboard/pkg/common"
	apperrors "ideaboard/pkg/errors"
	"ideaboard/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodySize caps JSON request bodies
const maxBodySize = 1 << 20 // 1MB

// IdeaHandler handles idea CRUD, voting and bookmarking endpoints
type IdeaHandler struct {
	ideas  *services.IdeaService
	logger *zap.Logger
}

// NewIdeaHandler creates a new IdeaHandler
func NewIdeaHandler(ideas *services.IdeaService, logger *zap.Logger) *IdeaHandler {
	return &IdeaHandler{ideas: ideas, logger: logger}
}

// CreateIdeaRequest is the payload for posting a new idea
type CreateIdeaRequest struct {
	Idea        string `json:"idea" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"required,min=1,max=5000"`
}

// UpdateIdeaRequest is a partial patch; absent fields are left untouched
type UpdateIdeaRequest struct {
	Idea        *string `json:"idea,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
}

// List handles GET /ideas and GET /ideas/newest
func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListNewest handles GET /ideas/newest
func (h *IdeaHandler) ListNewest(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *IdeaHandler) list(w http.ResponseWriter, r *http.Request, newestFirst bool) {
	page := common.ExtractPage(r)

	views, err := h.ideas.List(r.Context(), page, newestFirst)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, views)
}

// Get handles GET /ideas/{ideaID}
func (h *IdeaHandler) Get(w http.ResponseWriter, r *http.Request) {
	ideaID := chi.URLParam(r, "ideaID")

	view, err := h.ideas.Read(r.Context(), ideaID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}

// Create handles POST /ideas
func (h *IdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, apperrors.NewUnauthorizedError(""))
		return
	}

	var req CreateIdeaRequest
	if err := common.ParseJSONBody(r, &req, maxBodySize); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	view, err := h.ideas.Create(r.Context(), user.UserID, req.Idea, req.Description)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, view)
}

// Update handles PUT /ideas/{ideaID}
func (h *IdeaHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, apperrors.NewUnauthorizedError(""))
		return
	}
	ideaID := chi.URLParam(r, "ideaID")

	var req UpdateIdeaRequest
	if err := common.ParseJSONBody(r, &req, maxBodySize); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	view, err := h.ideas.Update(r.Context(), ideaID, user.UserID, services.IdeaPatch{
		Title:       req.Idea,
		Description: req.Description,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}

// Delete handles DELETE /ideas/{ideaID}
func (h *IdeaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, apperrors.NewUnauthorizedError(""))
		return
	}
	ideaID := chi.URLParam(r, "ideaID")

	result, err := h.ideas.Delete(r.Context(), ideaID, user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// Upvote handles POST /ideas/{ideaID}/upvote
func (h *IdeaHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, apperrors.NewUnauthorizedError(""))
		return
	}
	ideaID := chi.URLParam(r, "ideaID")

	view, err := h.ideas.Upvote(r.Context(), ideaID, user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}

// Downvote handles POST /ideas/{ideaID}/downvote
func (h *IdeaHandler) Downvote(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, apperrors.NewUnauthorizedError(""))
		return
	}
	ideaID := chi.URLParam(r, "ideaID")

	view, err := h.ideas.Downvote(r.Context(), ideaID, user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}

// Bookmark handles POST /ideas/{ideaID}/bookmark
func (h *IdeaHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, apperrors.NewUnauthorizedError(""))
		return
	}
	ideaID := chi.URLParam(r, "ideaID")

	view, err := h.ideas.Bookmark(r.Context(), ideaID, user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}

// Unbookmark handles DELETE /ideas/{ideaID}/bookmark
func (h *IdeaHandler) Unbookmark(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, apperrors.NewUnauthorizedError(""))
		return
	}
	ideaID := chi.URLParam(r, "ideaID")

	view, err := h.ideas.Unbookmark(r.Context(), ideaID, user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}
