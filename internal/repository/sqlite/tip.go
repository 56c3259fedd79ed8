package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/model"
	"github.com/tahmid/trackroom/internal/repository"
)

// compile-time check that *DB implements repository.TipRepository
var _ repository.TipRepository = (*DB)(nil)

// CreateTip records a received tip. The UNIQUE(payment_reference) constraint
// is the replay guard: a second submission with the same reference returns
// Conflict and the table keeps exactly one row.
func (db *DB) CreateTip(ctx context.Context, tip *model.Tip) error {
	tip.ID = xid.New().String()
	tip.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tips (id, creator_id, amount, currency, message, tipper_username, payment_reference, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tip.ID,
		tip.CreatorID,
		tip.Amount,
		tip.Currency,
		tip.Message,
		tip.TipperUsername,
		tip.PaymentReference,
		tip.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("tip", tip.PaymentReference)
		}
		return fmt.Errorf("sqlite: inserting tip: %w", err)
	}

	return nil
}

func (db *DB) ListTipsForCreator(ctx context.Context, creatorID string, opts repository.ListOptions) ([]model.Tip, error) {
	limit, offset := clampListOptions(opts)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, creator_id, amount, currency, message, tipper_username, payment_reference, created_at
		 FROM tips
		 WHERE creator_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		creatorID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tips: %w", err)
	}
	defer rows.Close()

	tips := make([]model.Tip, 0, limit)
	for rows.Next() {
		var t model.Tip
		if err := rows.Scan(
			&t.ID, &t.CreatorID, &t.Amount, &t.Currency, &t.Message,
			&t.TipperUsername, &t.PaymentReference, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tip row: %w", err)
		}
		tips = append(tips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tips: %w", err)
	}

	return tips, nil
}
