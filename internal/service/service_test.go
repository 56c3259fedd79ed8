package service_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tahmid/trackroom/internal/model"
	"github.com/tahmid/trackroom/internal/repository/sqlite"
)

// testEnv wires the services against a real throwaway SQLite database; the
// driver is pure Go and fast enough that mocking the repository would only
// hide bugs in the SQL.
type testEnv struct {
	db     *sqlite.DB
	logger *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *testEnv) user(t *testing.T, displayName string) *model.User {
	t.Helper()

	u := &model.User{DisplayName: displayName}
	require.NoError(t, e.db.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) project(t *testing.T, creatorID string, sharing bool) *model.Project {
	t.Helper()

	p := &model.Project{CreatorID: creatorID, Title: "Demo", SharingEnabled: sharing}
	require.NoError(t, e.db.CreateProject(context.Background(), p))
	return p
}

func (e *testEnv) track(t *testing.T, projectID string) *model.Track {
	t.Helper()

	tr := &model.Track{ProjectID: projectID, Title: "Take 1"}
	require.NoError(t, e.db.CreateTrack(context.Background(), tr))
	return tr
}
