package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tahmid/trackroom/internal/auth"
	"github.com/tahmid/trackroom/internal/service"
)

// ProjectHandler serves project CRUD, tokenized share links, tracks and the
// public metric counters.
type ProjectHandler struct {
	projects *service.ProjectService
	tracks   *service.TrackService
	logger   *slog.Logger
}

func NewProjectHandler(projects *service.ProjectService, tracks *service.TrackService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, tracks: tracks, logger: logger}
}

type createProjectRequest struct {
	Title          string `json:"title" validate:"required,max=120"`
	Description    string `json:"description" validate:"max=2000"`
	SharingEnabled *bool  `json:"sharing_enabled"`
}

// HandleCreate makes a new project owned by the caller.
//
// POST /api/v1/projects
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sharing := true
	if req.SharingEnabled != nil {
		sharing = *req.SharingEnabled
	}

	project, err := h.projects.Create(r.Context(), userID, req.Title, req.Description, sharing)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

// HandleGet loads one project. Anonymous and non-owner callers only see it
// when sharing is enabled.
//
// GET /api/v1/projects/{id}
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	project, err := h.projects.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// HandleGetShared resolves a tokenized share link.
//
// GET /shared/{token}
func (h *ProjectHandler) HandleGetShared(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	project, err := h.projects.GetByShareToken(r.Context(), userID, chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// HandleListMine returns the caller's own projects, drafts included.
//
// GET /api/v1/projects
func (h *ProjectHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	projects, err := h.projects.ListMine(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

type updateProjectRequest struct {
	Title          *string `json:"title" validate:"omitempty,max=120"`
	Description    *string `json:"description" validate:"omitempty,max=2000"`
	SharingEnabled *bool   `json:"sharing_enabled"`
}

// HandleUpdate edits a project, creator-only.
//
// PATCH /api/v1/projects/{id}
func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.Update(r.Context(), userID, chi.URLParam(r, "id"), service.UpdateProjectInput{
		Title:          req.Title,
		Description:    req.Description,
		SharingEnabled: req.SharingEnabled,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

type incrementMetricRequest struct {
	Field string `json:"field" validate:"required"`
}

// HandleIncrementMetric bumps one of the project's counters (play, share,
// library_add). Open to anonymous callers for visible projects.
//
// POST /api/v1/projects/{id}/metrics
func (h *ProjectHandler) HandleIncrementMetric(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req incrementMetricRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.projects.IncrementMetric(r.Context(), userID, chi.URLParam(r, "id"), req.Field); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type createTrackRequest struct {
	Title           string  `json:"title" validate:"required,max=120"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gte=0"`
	Position        int     `json:"position" validate:"gte=0"`
}

// HandleCreateTrack adds a track to a project, creator-only.
//
// POST /api/v1/projects/{id}/tracks
func (h *ProjectHandler) HandleCreateTrack(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createTrackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	track, err := h.tracks.Create(r.Context(), userID, chi.URLParam(r, "id"), req.Title, req.DurationSeconds, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, track)
}

// HandleListTracks returns a project's tracks in position order.
//
// GET /api/v1/projects/{id}/tracks
func (h *ProjectHandler) HandleListTracks(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	tracks, err := h.tracks.ListByProject(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tracks)
}
