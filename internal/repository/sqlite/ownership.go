package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/authz"
	"github.com/tahmid/trackroom/internal/repository"
)

// compile-time check that *DB implements repository.OwnershipResolver
var _ repository.OwnershipResolver = (*DB)(nil)

// ResolveProject returns the ownership snapshot for a project target.
func (db *DB) ResolveProject(ctx context.Context, projectID string) (authz.Ownership, error) {
	var o authz.Ownership

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, creator_id, sharing_enabled FROM projects WHERE id = ?`,
		projectID,
	).Scan(&o.ProjectID, &o.OwnerID, &o.SharingEnabled)
	if err != nil {
		if err == sql.ErrNoRows {
			return authz.Ownership{}, apperror.NotFound("project", projectID)
		}
		return authz.Ownership{}, fmt.Errorf("sqlite: resolving project %s: %w", projectID, err)
	}

	return o, nil
}

// ResolveTrack resolves a track target through its parent project in one
// join. A single query means there is no window in which the track exists
// but its project has been deleted — that race reads as not found.
func (db *DB) ResolveTrack(ctx context.Context, trackID string) (authz.Ownership, error) {
	var o authz.Ownership

	err := db.conn.QueryRowContext(ctx,
		`SELECT p.id, p.creator_id, p.sharing_enabled
		 FROM tracks t
		 JOIN projects p ON p.id = t.project_id
		 WHERE t.id = ?`,
		trackID,
	).Scan(&o.ProjectID, &o.OwnerID, &o.SharingEnabled)
	if err != nil {
		if err == sql.ErrNoRows {
			return authz.Ownership{}, apperror.NotFound("track", trackID)
		}
		return authz.Ownership{}, fmt.Errorf("sqlite: resolving track %s: %w", trackID, err)
	}

	return o, nil
}
