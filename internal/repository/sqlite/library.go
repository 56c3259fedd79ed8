package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/model"
	"github.com/tahmid/trackroom/internal/repository"
)

// compile-time check that *DB implements repository.LibraryRepository
var _ repository.LibraryRepository = (*DB)(nil)

// AddLibraryEntry inserts the (user, project) entry if it is not already
// present, then loads the stored row back into entry. INSERT OR IGNORE rides
// on the composite primary key, so a duplicate add is a no-op and the caller
// gets the original row — including its original created_at and pinned state.
func (db *DB) AddLibraryEntry(ctx context.Context, entry *model.LibraryEntry) (bool, error) {
	entry.CreatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO library_entries (user_id, project_id, pinned, created_at)
		 VALUES (?, ?, ?, ?)`,
		entry.UserID,
		entry.ProjectID,
		entry.Pinned,
		entry.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: adding library entry: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	stored, err := db.GetLibraryEntry(ctx, entry.UserID, entry.ProjectID)
	if err != nil {
		return false, err
	}
	*entry = *stored

	return inserted > 0, nil
}

func (db *DB) GetLibraryEntry(ctx context.Context, userID, projectID string) (*model.LibraryEntry, error) {
	var e model.LibraryEntry

	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, project_id, pinned, created_at
		 FROM library_entries
		 WHERE user_id = ? AND project_id = ?`,
		userID, projectID,
	).Scan(&e.UserID, &e.ProjectID, &e.Pinned, &e.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("library entry", projectID)
		}
		return nil, fmt.Errorf("sqlite: getting library entry: %w", err)
	}

	return &e, nil
}

// ListLibrary returns the user's saved projects, pinned entries first, then
// newest saves.
func (db *DB) ListLibrary(ctx context.Context, userID string) ([]model.LibraryEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, project_id, pinned, created_at
		 FROM library_entries
		 WHERE user_id = ?
		 ORDER BY pinned DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing library: %w", err)
	}
	defer rows.Close()

	var entries []model.LibraryEntry
	for rows.Next() {
		var e model.LibraryEntry
		if err := rows.Scan(&e.UserID, &e.ProjectID, &e.Pinned, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning library row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating library: %w", err)
	}

	return entries, nil
}

func (db *DB) SetLibraryPinned(ctx context.Context, userID, projectID string, pinned bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE library_entries SET pinned = ? WHERE user_id = ? AND project_id = ?`,
		pinned, userID, projectID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: pinning library entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("library entry", projectID)
	}

	return nil
}

func (db *DB) RemoveLibraryEntry(ctx context.Context, userID, projectID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM library_entries WHERE user_id = ? AND project_id = ?`,
		userID, projectID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing library entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("library entry", projectID)
	}

	return nil
}
