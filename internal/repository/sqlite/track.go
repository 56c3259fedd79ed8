package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/model"
)

const trackColumns = `id, project_id, title, duration_seconds, position, created_at, updated_at`

func (db *DB) CreateTrack(ctx context.Context, track *model.Track) error {
	now := time.Now()
	track.ID = xid.New().String()
	track.CreatedAt = now
	track.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tracks (id, project_id, title, duration_seconds, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		track.ID,
		track.ProjectID,
		track.Title,
		track.DurationSeconds,
		track.Position,
		track.CreatedAt,
		track.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting track: %w", err)
	}

	return nil
}

func (db *DB) GetTrackByID(ctx context.Context, id string) (*model.Track, error) {
	var t model.Track

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id,
	).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.DurationSeconds,
		&t.Position,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("track", id)
		}
		return nil, fmt.Errorf("sqlite: getting track %s: %w", id, err)
	}

	return &t, nil
}

func (db *DB) ListTracksByProject(ctx context.Context, projectID string) ([]model.Track, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+trackColumns+`
		 FROM tracks
		 WHERE project_id = ?
		 ORDER BY position ASC, created_at ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tracks: %w", err)
	}
	defer rows.Close()

	var tracks []model.Track
	for rows.Next() {
		var t model.Track
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.Title, &t.DurationSeconds, &t.Position,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning track row: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tracks: %w", err)
	}

	return tracks, nil
}
