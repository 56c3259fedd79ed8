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

// compile-time check that *DB implements repository.CommentRepository
var _ repository.CommentRepository = (*DB)(nil)

func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	now := time.Now()
	comment.ID = xid.New().String()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, user_id, project_id, track_id, timestamp_seconds, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.UserID,
		comment.ProjectID,
		comment.TrackID,
		comment.TimestampSeconds,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	return nil
}

func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var (
		c         model.Comment
		projectID sql.NullString
		trackID   sql.NullString
		timestamp sql.NullFloat64
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, project_id, track_id, timestamp_seconds, content, created_at, updated_at
		 FROM comments WHERE id = ?`,
		id,
	).Scan(
		&c.ID,
		&c.UserID,
		&projectID,
		&trackID,
		&timestamp,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	if projectID.Valid {
		c.ProjectID = &projectID.String
	}
	if trackID.Valid {
		c.TrackID = &trackID.String
	}
	if timestamp.Valid {
		c.TimestampSeconds = &timestamp.Float64
	}

	return &c, nil
}

// ListComments returns comments for one target, newest first. The id DESC
// tiebreak makes ordering deterministic when created_at collides — xid is
// time-sortable, so this is insertion order within a tick.
func (db *DB) ListComments(ctx context.Context, projectID, trackID string, opts repository.ListOptions) ([]model.CommentWithAuthor, error) {
	limit, offset := clampListOptions(opts)

	var (
		filter string
		target string
	)
	switch {
	case projectID != "":
		filter, target = "c.project_id = ?", projectID
	case trackID != "":
		filter, target = "c.track_id = ?", trackID
	default:
		return nil, apperror.ValidationFailed("target", "a project or track target is required")
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.project_id, c.track_id, c.timestamp_seconds, c.content,
		        c.created_at, c.updated_at, u.display_name
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE `+filter+`
		 ORDER BY c.created_at DESC, c.id DESC
		 LIMIT ? OFFSET ?`,
		target, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.CommentWithAuthor, 0, limit)
	for rows.Next() {
		var (
			c    model.CommentWithAuthor
			pID  sql.NullString
			tID  sql.NullString
			ts   sql.NullFloat64
		)
		if err := rows.Scan(
			&c.ID, &c.UserID, &pID, &tID, &ts, &c.Content,
			&c.CreatedAt, &c.UpdatedAt, &c.AuthorDisplayName,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		if pID.Valid {
			c.ProjectID = &pID.String
		}
		if tID.Valid {
			c.TrackID = &tID.String
		}
		if ts.Valid {
			c.TimestampSeconds = &ts.Float64
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// UpdateComment persists a content edit. The author, target and timestamp
// are immutable once created.
func (db *DB) UpdateComment(ctx context.Context, comment *model.Comment) error {
	comment.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		comment.Content,
		comment.UpdatedAt,
		comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", comment.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", comment.ID)
	}

	return nil
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}

	return nil
}
