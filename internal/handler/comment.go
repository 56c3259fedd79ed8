package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tahmid/trackroom/internal/auth"
	"github.com/tahmid/trackroom/internal/service"
)

// CommentHandler serves comments on projects and tracks. Reads take the
// caller identity when present so the response can carry the per-comment
// can_edit/can_delete flags; writes require it.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type createCommentRequest struct {
	ProjectID        string   `json:"project_id"`
	TrackID          string   `json:"track_id"`
	TimestampSeconds *float64 `json:"timestamp_seconds"`
	Content          string   `json:"content" validate:"required,max=2000"`
}

// HandleCreate posts a comment on a project or a track (exactly one).
//
// POST /api/v1/comments
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), userID, service.CreateCommentInput{
		ProjectID:        req.ProjectID,
		TrackID:          req.TrackID,
		TimestampSeconds: req.TimestampSeconds,
		Content:          req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// HandleList returns a target's comments, newest first, each annotated with
// the author display name and the caller's capabilities on it.
//
// GET /api/v1/comments?project_id=... | ?track_id=...
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	views, err := h.comments.List(r.Context(), userID,
		r.URL.Query().Get("project_id"),
		r.URL.Query().Get("track_id"),
		limit, offset,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

type updateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// HandleUpdate edits a comment's content, author-only.
//
// PATCH /api/v1/comments/{id}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Update(r.Context(), userID, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// HandleDelete removes a comment — its author or the target's creator.
//
// DELETE /api/v1/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.comments.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
