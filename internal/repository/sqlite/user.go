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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, github_id, email, password_hash, display_name, bio, avatar_url, created_at, updated_at`

// CreateUser inserts a new user, generating the internal id and timestamps.
// A github_id or email unique violation comes back as apperror.ErrConflict;
// the auth service treats that as a concurrent first-login and re-fetches,
// so a race creates at most one effective row.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, github_id, email, password_hash, display_name, bio, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		nullInt64(user.GitHubID),
		nullString(user.Email),
		user.PasswordHash,
		user.DisplayName,
		user.Bio,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, "user", id)
}

func (db *DB) GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`,
		"user", githubID)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, "user", email)
}

// UpdateUser persists the mutable profile fields. The id and created_at are
// immutable; updated_at is always bumped.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET email = ?, display_name = ?, bio = ?, avatar_url = ?, updated_at = ?
		 WHERE id = ?`,
		nullString(user.Email),
		user.DisplayName,
		user.Bio,
		user.AvatarURL,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

func (db *DB) getUser(ctx context.Context, query, resource string, arg any) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
		email    sql.NullString
	)

	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&githubID,
		&email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.Bio,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(resource, fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting %s %v: %w", resource, arg, err)
	}

	u.GitHubID = githubID.Int64
	u.Email = email.String

	return &u, nil
}

// nullInt64 maps the zero value to NULL so the UNIQUE(github_id) constraint
// only applies to real provider ids — password accounts all carry NULL.
func nullInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
