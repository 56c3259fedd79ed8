// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/tahmid/trackroom/internal/authz"
	"github.com/tahmid/trackroom/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// Metric names the project counters that may be incremented through the
// public metric endpoint. The set is closed: anything outside this allow-list
// is rejected before it reaches SQL.
type Metric string

const (
	MetricPlay       Metric = "play"
	MetricShare      Metric = "share"
	MetricLibraryAdd Metric = "library_add"
)

type UserRepository interface {
	// CreateUser inserts a new user. Returns apperror.ErrConflict when the
	// github_id or email unique constraint is violated; callers handling a
	// first-login race re-fetch instead of failing.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateUser persists profile fields (display name, bio, avatar, email).
	UpdateUser(ctx context.Context, user *model.User) error
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	GetProjectByShareToken(ctx context.Context, token string) (*model.Project, error)
	ListProjectsByCreator(ctx context.Context, creatorID string, opts ListOptions) ([]model.Project, error)
	UpdateProject(ctx context.Context, project *model.Project) error
	// IncrementMetric atomically bumps one counter by one in a single
	// datastore-side operation. Concurrent increments never lose updates.
	IncrementMetric(ctx context.Context, projectID string, metric Metric) error
}

type TrackRepository interface {
	CreateTrack(ctx context.Context, track *model.Track) error
	GetTrackByID(ctx context.Context, id string) (*model.Track, error)
	ListTracksByProject(ctx context.Context, projectID string) ([]model.Track, error)
}

// OwnershipResolver maps a resource target to its effective owner and
// visibility in one consistent lookup. Track resolution goes through the
// parent project with a join — never two round-trips — so a concurrently
// deleted project reads as not found rather than a torn snapshot.
type OwnershipResolver interface {
	ResolveProject(ctx context.Context, projectID string) (authz.Ownership, error)
	ResolveTrack(ctx context.Context, trackID string) (authz.Ownership, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	// ListComments returns comments for exactly one target (projectID or
	// trackID non-empty), newest first with id as the deterministic tiebreak,
	// each joined with the author's display name.
	ListComments(ctx context.Context, projectID, trackID string, opts ListOptions) ([]model.CommentWithAuthor, error)
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, id string) error
}

type LibraryRepository interface {
	// AddLibraryEntry inserts the entry if absent and loads the stored row
	// either way — adding the same project twice is a no-op returning the
	// existing entry. The bool reports whether a new row was inserted.
	AddLibraryEntry(ctx context.Context, entry *model.LibraryEntry) (bool, error)
	GetLibraryEntry(ctx context.Context, userID, projectID string) (*model.LibraryEntry, error)
	ListLibrary(ctx context.Context, userID string) ([]model.LibraryEntry, error)
	SetLibraryPinned(ctx context.Context, userID, projectID string, pinned bool) error
	RemoveLibraryEntry(ctx context.Context, userID, projectID string) error
}

type TipRepository interface {
	// CreateTip inserts a tip. A duplicate payment reference returns
	// apperror.ErrConflict and leaves exactly one row.
	CreateTip(ctx context.Context, tip *model.Tip) error
	ListTipsForCreator(ctx context.Context, creatorID string, opts ListOptions) ([]model.Tip, error)
}
