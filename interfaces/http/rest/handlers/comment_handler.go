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

// CommentHandler handles comment endpoints
type CommentHandler struct {
	comments *services.CommentService
	logger   *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// CreateCommentRequest is the payload for posting a comment
type CreateCommentRequest struct {
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}

// ListByIdea handles GET /comments/idea/{ideaID}
func (h *CommentHandler) ListByIdea(w http.ResponseWriter, r *http.Request) {
	ideaID := chi.URLParam(r, "ideaID")

	views, err := h.comments.ListByIdea(r.Context(), ideaID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, views)
}

// ListByUser handles GET /comments/user/{userID}
func (h *CommentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	views, err := h.comments.ListByUser(r.Context(), userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, views)
}

// Get handles GET /comments/{commentID}
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")

	view, err := h.comments.Get(r.Context(), commentID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}

// Create handles POST /comments/idea/{ideaID}
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, apperrors.NewUnauthorizedError(""))
		return
	}
	ideaID := chi.URLParam(r, "ideaID")

	var req CreateCommentRequest
	if err := common.ParseJSONBody(r, &req, maxBodySize); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	view, err := h.comments.Create(r.Context(), ideaID, user.UserID, req.Comment)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, view)
}

// Delete handles DELETE /comments/{commentID}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, apperrors.NewUnauthorizedError(""))
		return
	}
	commentID := chi.URLParam(r, "commentID")

	view, err := h.comments.Delete(r.Context(), commentID, user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}
