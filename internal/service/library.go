package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/authz"
	"github.com/tahmid/trackroom/internal/metrics"
	"github.com/tahmid/trackroom/internal/model"
	"github.com/tahmid/trackroom/internal/repository"
)

// LibraryStore is the slice of the repository the library service needs.
type LibraryStore interface {
	repository.LibraryRepository
	repository.ProjectRepository
	repository.OwnershipResolver
}

// LibraryService manages a user's saved projects. Adds are idempotent:
// saving the same project twice is one entry and one library_add count.
type LibraryService struct {
	store  LibraryStore
	logger *slog.Logger
}

func NewLibraryService(store LibraryStore, logger *slog.Logger) *LibraryService {
	return &LibraryService{store: store, logger: logger}
}

// Add saves a project to the caller's library. The project's library_add
// counter only moves on a genuine first add, never on a repeat.
func (s *LibraryService) Add(ctx context.Context, callerID, projectID string) (*model.LibraryEntry, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apperror.ValidationFailed("project_id", "project ID is required")
	}
	if callerID == "" {
		return nil, apperror.Unauthenticated("authentication required to save projects")
	}

	owner, err := s.store.ResolveProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTarget(callerID, owner) {
		return nil, apperror.NotFound("project", projectID)
	}

	entry := &model.LibraryEntry{
		UserID:    callerID,
		ProjectID: projectID,
	}
	inserted, err := s.store.AddLibraryEntry(ctx, entry)
	if err != nil {
		s.logger.Error("failed to add library entry",
			slog.String("userID", callerID),
			slog.String("projectID", projectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding library entry: %w", err)
	}

	if inserted {
		if err := s.store.IncrementMetric(ctx, projectID, repository.MetricLibraryAdd); err != nil {
			// The save itself succeeded; a lost count is logged, not fatal.
			s.logger.Error("failed to bump library_add count",
				slog.String("projectID", projectID),
				slog.String("error", err.Error()),
			)
		} else {
			metrics.ProjectMetricIncrements.WithLabelValues(string(repository.MetricLibraryAdd)).Inc()
		}
		s.logger.Info("project saved to library",
			slog.String("userID", callerID),
			slog.String("projectID", projectID),
		)
	}

	return entry, nil
}

// List returns the caller's library, pinned entries first.
func (s *LibraryService) List(ctx context.Context, callerID string) ([]model.LibraryEntry, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("authentication required to view the library")
	}

	entries, err := s.store.ListLibrary(ctx, callerID)
	if err != nil {
		s.logger.Error("failed to list library", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing library: %w", err)
	}

	return entries, nil
}

// SetPinned pins or unpins one of the caller's entries.
func (s *LibraryService) SetPinned(ctx context.Context, callerID, projectID string, pinned bool) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return apperror.ValidationFailed("project_id", "project ID is required")
	}
	if callerID == "" {
		return apperror.Unauthenticated("authentication required to pin entries")
	}

	return s.store.SetLibraryPinned(ctx, callerID, projectID, pinned)
}

// Remove drops a project from the caller's library. The library_add counter
// is historical and does not decrement.
func (s *LibraryService) Remove(ctx context.Context, callerID, projectID string) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return apperror.ValidationFailed("project_id", "project ID is required")
	}
	if callerID == "" {
		return apperror.Unauthenticated("authentication required to edit the library")
	}

	if err := s.store.RemoveLibraryEntry(ctx, callerID, projectID); err != nil {
		return err
	}

	s.logger.Info("project removed from library",
		slog.String("userID", callerID),
		slog.String("projectID", projectID),
	)

	return nil
}
