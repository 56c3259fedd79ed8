package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/authz"
	"github.com/tahmid/trackroom/internal/model"
)

const MaxTrackTitleLength = 120

// TrackService owns track rules. Tracks live strictly under a project; their
// effective owner is the project's creator.
type TrackService struct {
	store  ProjectStore
	logger *slog.Logger
}

func NewTrackService(store ProjectStore, logger *slog.Logger) *TrackService {
	return &TrackService{store: store, logger: logger}
}

// Create adds a track to a project. Creator-only: non-owners get NotFound
// when the project is unshared (no existence leak) and Forbidden otherwise.
func (s *TrackService) Create(ctx context.Context, callerID, projectID, title string, durationSeconds float64, position int) (*model.Track, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "track title is required")
	}
	if len(title) > MaxTrackTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("track title must be %d characters or less", MaxTrackTitleLength))
	}
	if durationSeconds < 0 {
		return nil, apperror.ValidationFailed("duration_seconds", "duration must be non-negative")
	}
	if position < 0 {
		return nil, apperror.ValidationFailed("position", "position must be non-negative")
	}

	owner, err := s.store.ResolveProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTarget(callerID, owner) {
		return nil, apperror.NotFound("project", projectID)
	}
	if callerID != owner.OwnerID {
		return nil, apperror.Forbidden("only the project creator may add tracks")
	}

	track := &model.Track{
		ProjectID:       projectID,
		Title:           title,
		DurationSeconds: durationSeconds,
		Position:        position,
	}

	if err := s.store.CreateTrack(ctx, track); err != nil {
		s.logger.Error("failed to create track",
			slog.String("projectID", projectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating track: %w", err)
	}

	s.logger.Info("track created",
		slog.String("id", track.ID),
		slog.String("projectID", projectID),
	)

	return track, nil
}

// ListByProject returns a project's tracks in position order, gated by the
// project's visibility.
func (s *TrackService) ListByProject(ctx context.Context, callerID, projectID string) ([]model.Track, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}

	owner, err := s.store.ResolveProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTarget(callerID, owner) {
		return nil, apperror.NotFound("project", projectID)
	}

	tracks, err := s.store.ListTracksByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to list tracks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing tracks: %w", err)
	}

	return tracks, nil
}
