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

const (
	MaxProjectTitleLength       = 120
	MaxProjectDescriptionLength = 2000
)

// metricNames maps the public metric endpoint's field names onto the
// repository's closed metric set. Anything missing here is InvalidInput.
var metricNames = map[string]repository.Metric{
	"play":        repository.MetricPlay,
	"share":       repository.MetricShare,
	"library_add": repository.MetricLibraryAdd,
}

// ProjectStore is the slice of the repository the project service needs.
type ProjectStore interface {
	repository.ProjectRepository
	repository.TrackRepository
	repository.OwnershipResolver
}

// ProjectService owns project and track rules: creation, visibility-gated
// reads, owner-only mutation, and the atomic metric increments.
type ProjectService struct {
	store  ProjectStore
	logger *slog.Logger
}

func NewProjectService(store ProjectStore, logger *slog.Logger) *ProjectService {
	return &ProjectService{store: store, logger: logger}
}

// Create makes a new project owned by the caller. Sharing starts enabled;
// creators flip it off to keep a draft private.
func (s *ProjectService) Create(ctx context.Context, creatorID, title, description string, sharingEnabled bool) (*model.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "project title is required")
	}
	if len(title) > MaxProjectTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("project title must be %d characters or less", MaxProjectTitleLength))
	}
	if len(description) > MaxProjectDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxProjectDescriptionLength))
	}

	project := &model.Project{
		CreatorID:      creatorID,
		Title:          title,
		Description:    strings.TrimSpace(description),
		SharingEnabled: sharingEnabled,
	}

	if err := s.store.CreateProject(ctx, project); err != nil {
		s.logger.Error("failed to create project",
			slog.String("creatorID", creatorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.String("id", project.ID),
		slog.String("creatorID", creatorID),
	)

	return project, nil
}

// Get loads a project for a caller. The sharing gate applies: a project with
// sharing disabled is not found for everyone except its creator. The share
// token is only exposed to the creator.
func (s *ProjectService) Get(ctx context.Context, callerID, projectID string) (*model.Project, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}

	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return s.redactForCaller(callerID, project)
}

// GetByShareToken resolves a tokenized share link. The link honors the same
// sharing gate: disabling sharing kills outstanding links too.
func (s *ProjectService) GetByShareToken(ctx context.Context, callerID, token string) (*model.Project, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.ValidationFailed("token", "share token is required")
	}

	project, err := s.store.GetProjectByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.redactForCaller(callerID, project)
}

func (s *ProjectService) redactForCaller(callerID string, project *model.Project) (*model.Project, error) {
	owner := authz.Ownership{
		ProjectID:      project.ID,
		OwnerID:        project.CreatorID,
		SharingEnabled: project.SharingEnabled,
	}
	if !authz.CanViewTarget(callerID, owner) {
		return nil, apperror.NotFound("project", project.ID)
	}

	if callerID != project.CreatorID {
		project.ShareToken = ""
	}

	return project, nil
}

// ListMine returns the caller's own projects, drafts included.
func (s *ProjectService) ListMine(ctx context.Context, callerID string, limit, offset int) ([]model.Project, error) {
	projects, err := s.store.ListProjectsByCreator(ctx, callerID, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// UpdateProjectInput carries the mutable project fields; nil means "leave
// as is".
type UpdateProjectInput struct {
	Title          *string
	Description    *string
	SharingEnabled *bool
}

// Update edits a project. Only the creator may mutate it; everyone else gets
// NotFound (for invisible projects) or Forbidden.
func (s *ProjectService) Update(ctx context.Context, callerID, projectID string, in UpdateProjectInput) (*model.Project, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}

	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	owner := authz.Ownership{ProjectID: project.ID, OwnerID: project.CreatorID, SharingEnabled: project.SharingEnabled}
	if !authz.CanViewTarget(callerID, owner) {
		return nil, apperror.NotFound("project", projectID)
	}
	if callerID != project.CreatorID {
		return nil, apperror.Forbidden("only the project creator may edit it")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "project title is required")
		}
		if len(title) > MaxProjectTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("project title must be %d characters or less", MaxProjectTitleLength))
		}
		project.Title = title
	}
	if in.Description != nil {
		if len(*in.Description) > MaxProjectDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxProjectDescriptionLength))
		}
		project.Description = strings.TrimSpace(*in.Description)
	}
	if in.SharingEnabled != nil {
		project.SharingEnabled = *in.SharingEnabled
	}

	if err := s.store.UpdateProject(ctx, project); err != nil {
		s.logger.Error("failed to update project",
			slog.String("id", projectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating project: %w", err)
	}

	s.logger.Info("project updated", slog.String("id", projectID))

	return project, nil
}

// IncrementMetric bumps one of the allow-listed counters for a project.
// Anonymous callers may increment (plays and shares come from listeners),
// but the visibility gate still applies. The increment itself is a single
// atomic datastore operation — concurrent calls all land.
func (s *ProjectService) IncrementMetric(ctx context.Context, callerID, projectID, field string) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return apperror.ValidationFailed("id", "project ID is required")
	}

	metric, ok := metricNames[field]
	if !ok {
		return apperror.ValidationFailed("field",
			fmt.Sprintf("unknown metric field %q", field))
	}

	owner, err := s.store.ResolveProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !authz.CanViewTarget(callerID, owner) {
		return apperror.NotFound("project", projectID)
	}

	if err := s.store.IncrementMetric(ctx, projectID, metric); err != nil {
		s.logger.Error("failed to increment metric",
			slog.String("projectID", projectID),
			slog.String("field", field),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("incrementing %s: %w", field, err)
	}

	metrics.ProjectMetricIncrements.WithLabelValues(field).Inc()

	return nil
}
