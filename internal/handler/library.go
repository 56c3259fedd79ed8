package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tahmid/trackroom/internal/auth"
	"github.com/tahmid/trackroom/internal/service"
)

// LibraryHandler serves the caller's saved-projects library. Every route is
// behind RequireAuth; the library is private.
type LibraryHandler struct {
	library *service.LibraryService
	logger  *slog.Logger
}

func NewLibraryHandler(library *service.LibraryService, logger *slog.Logger) *LibraryHandler {
	return &LibraryHandler{library: library, logger: logger}
}

type addLibraryRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
}

// HandleAdd saves a project to the caller's library. Saving twice is a
// no-op that returns the existing entry.
//
// POST /api/v1/library
func (h *LibraryHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req addLibraryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.library.Add(r.Context(), userID, req.ProjectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// HandleList returns the caller's library, pinned entries first.
//
// GET /api/v1/library
func (h *LibraryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	entries, err := h.library.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

type setPinnedRequest struct {
	Pinned bool `json:"pinned"`
}

// HandleSetPinned pins or unpins a library entry.
//
// PATCH /api/v1/library/{projectID}
func (h *LibraryHandler) HandleSetPinned(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req setPinnedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.library.SetPinned(r.Context(), userID, chi.URLParam(r, "projectID"), req.Pinned); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRemove drops a project from the caller's library.
//
// DELETE /api/v1/library/{projectID}
func (h *LibraryHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.library.Remove(r.Context(), userID, chi.URLParam(r, "projectID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
