package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahmid/trackroom/internal/auth"
	"github.com/tahmid/trackroom/internal/handler"
	"github.com/tahmid/trackroom/internal/model"
	"github.com/tahmid/trackroom/internal/repository/sqlite"
	"github.com/tahmid/trackroom/internal/service"
)

// commentAPI is a minimal router slice with real services over a throwaway
// database, enough to exercise the comment routes end to end.
type commentAPI struct {
	router *chi.Mux
	db     *sqlite.DB
	tokens *auth.TokenService
}

func newCommentAPI(t *testing.T) *commentAPI {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("test-secret-test-secret")
	require.NoError(t, err)

	h := handler.NewCommentHandler(service.NewCommentService(db, logger), logger)

	r := chi.NewRouter()
	r.With(auth.OptionalAuth(tokens)).Get("/api/v1/comments", h.HandleList)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Post("/api/v1/comments", h.HandleCreate)
		r.Patch("/api/v1/comments/{id}", h.HandleUpdate)
		r.Delete("/api/v1/comments/{id}", h.HandleDelete)
	})

	return &commentAPI{router: r, db: db, tokens: tokens}
}

func (a *commentAPI) user(t *testing.T, name string) *model.User {
	t.Helper()

	u := &model.User{DisplayName: name}
	require.NoError(t, a.db.CreateUser(context.Background(), u))
	return u
}

func (a *commentAPI) project(t *testing.T, creatorID string, sharing bool) *model.Project {
	t.Helper()

	p := &model.Project{CreatorID: creatorID, Title: "Demo", SharingEnabled: sharing}
	require.NoError(t, a.db.CreateProject(context.Background(), p))
	return p
}

func (a *commentAPI) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := a.tokens.Generate(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func TestCommentRoutes(t *testing.T) {
	t.Run("create list update delete round-trip", func(t *testing.T) {
		api := newCommentAPI(t)
		owner := api.user(t, "owner")
		author := api.user(t, "author")
		project := api.project(t, owner.ID, true)

		rr := api.do(t, http.MethodPost, "/api/v1/comments", author.ID, map[string]any{
			"project_id": project.ID,
			"content":    "first!",
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		var created model.Comment
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
		assert.Equal(t, "first!", created.Content)

		rr = api.do(t, http.MethodGet, "/api/v1/comments?project_id="+project.ID, author.ID, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var views []model.CommentView
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&views))
		require.Len(t, views, 1)
		assert.True(t, views[0].CanEdit)
		assert.Equal(t, "author", views[0].AuthorDisplayName)

		rr = api.do(t, http.MethodPatch, "/api/v1/comments/"+created.ID, author.ID, map[string]any{
			"content": "edited",
		})
		require.Equal(t, http.StatusOK, rr.Code)

		rr = api.do(t, http.MethodDelete, "/api/v1/comments/"+created.ID, author.ID, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("anonymous create is 401", func(t *testing.T) {
		api := newCommentAPI(t)
		owner := api.user(t, "owner")
		project := api.project(t, owner.ID, true)

		rr := api.do(t, http.MethodPost, "/api/v1/comments", "", map[string]any{
			"project_id": project.ID,
			"content":    "drive-by",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("owner delete of another author's comment is 204, edit is 403", func(t *testing.T) {
		api := newCommentAPI(t)
		owner := api.user(t, "owner")
		author := api.user(t, "author")
		project := api.project(t, owner.ID, true)

		rr := api.do(t, http.MethodPost, "/api/v1/comments", author.ID, map[string]any{
			"project_id": project.ID,
			"content":    "to be moderated",
		})
		require.Equal(t, http.StatusCreated, rr.Code)
		var created model.Comment
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

		rr = api.do(t, http.MethodPatch, "/api/v1/comments/"+created.ID, owner.ID, map[string]any{
			"content": "owner rewrite",
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = api.do(t, http.MethodDelete, "/api/v1/comments/"+created.ID, owner.ID, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("unshared project comments are 404 for strangers", func(t *testing.T) {
		api := newCommentAPI(t)
		owner := api.user(t, "owner")
		stranger := api.user(t, "stranger")
		project := api.project(t, owner.ID, false)

		rr := api.do(t, http.MethodGet, "/api/v1/comments?project_id="+project.ID, stranger.ID, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = api.do(t, http.MethodGet, "/api/v1/comments?project_id="+project.ID, owner.ID, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		api := newCommentAPI(t)
		owner := api.user(t, "owner")

		req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", bytes.NewBufferString(`{"broken":`))
		token, err := api.tokens.Generate(owner.ID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
