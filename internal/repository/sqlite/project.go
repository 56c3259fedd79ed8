package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/model"
	"github.com/tahmid/trackroom/internal/repository"
)

// compile-time checks
var (
	_ repository.ProjectRepository = (*DB)(nil)
	_ repository.TrackRepository   = (*DB)(nil)
)

const projectColumns = `id, creator_id, title, description, sharing_enabled, share_token,
	play_count, share_count, library_add_count, created_at, updated_at`

// metricColumns maps the allow-listed metric names to their columns. Only
// names present here ever reach SQL — the column is never built from caller
// input directly.
var metricColumns = map[repository.Metric]string{
	repository.MetricPlay:       "play_count",
	repository.MetricShare:      "share_count",
	repository.MetricLibraryAdd: "library_add_count",
}

func (db *DB) CreateProject(ctx context.Context, project *model.Project) error {
	now := time.Now()
	project.ID = xid.New().String()
	if project.ShareToken == "" {
		// Two xids back to back: unguessable enough for an unlisted-link
		// scheme while staying URL-safe.
		project.ShareToken = xid.New().String() + xid.New().String()
	}
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (id, creator_id, title, description, sharing_enabled, share_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.CreatorID,
		project.Title,
		project.Description,
		project.SharingEnabled,
		project.ShareToken,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting project: %w", err)
	}

	return nil
}

func (db *DB) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	return db.getProject(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
}

func (db *DB) GetProjectByShareToken(ctx context.Context, token string) (*model.Project, error) {
	return db.getProject(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE share_token = ?`, token)
}

func (db *DB) getProject(ctx context.Context, query string, arg any) (*model.Project, error) {
	var p model.Project

	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&p.ID,
		&p.CreatorID,
		&p.Title,
		&p.Description,
		&p.SharingEnabled,
		&p.ShareToken,
		&p.PlayCount,
		&p.ShareCount,
		&p.LibraryAddCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("project", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting project %v: %w", arg, err)
	}

	return &p, nil
}

func (db *DB) ListProjectsByCreator(ctx context.Context, creatorID string, opts repository.ListOptions) ([]model.Project, error) {
	limit, offset := clampListOptions(opts)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+`
		 FROM projects
		 WHERE creator_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		creatorID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0, limit)
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID, &p.CreatorID, &p.Title, &p.Description, &p.SharingEnabled, &p.ShareToken,
			&p.PlayCount, &p.ShareCount, &p.LibraryAddCount, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	return projects, nil
}

// UpdateProject persists title, description and the sharing gate. Counters
// are deliberately excluded — they only move through IncrementMetric.
func (db *DB) UpdateProject(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE projects SET title = ?, description = ?, sharing_enabled = ?, updated_at = ?
		 WHERE id = ?`,
		project.Title,
		project.Description,
		project.SharingEnabled,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("project", project.ID)
	}

	return nil
}

// IncrementMetric bumps one counter in a single UPDATE. The increment happens
// entirely inside the datastore, so concurrent calls serialize there and no
// update is ever lost.
func (db *DB) IncrementMetric(ctx context.Context, projectID string, metric repository.Metric) error {
	column, ok := metricColumns[metric]
	if !ok {
		return apperror.ValidationFailed("metric",
			fmt.Sprintf("unknown metric %q", metric))
	}

	result, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE projects SET %s = %s + 1 WHERE id = ?`, column, column),
		projectID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing %s for project %s: %w", column, projectID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("project", projectID)
	}

	return nil
}

func clampListOptions(opts repository.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
