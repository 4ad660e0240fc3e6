package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-shadow-bot/internal/model"
)

// XPEventRepository reads the append-only reward ledger. Writes happen
// inside UserRepository.AddXP so a grant and its ledger entry commit
// together.
type XPEventRepository struct {
	pool *pgxpool.Pool
}

// NewXPEventRepository creates a new XPEventRepository instance.
func NewXPEventRepository(pool *pgxpool.Pool) *XPEventRepository {
	return &XPEventRepository{pool: pool}
}

// ListByUser returns a user's most recent reward events, newest first.
func (r *XPEventRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.XPEvent, error) {
	const query = `
		SELECT id, user_id, amount, reason, created_at
		FROM xp_events
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list xp events: %w", err)
	}
	defer rows.Close()

	var events []*model.XPEvent
	for rows.Next() {
		var e model.XPEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan xp event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating xp events: %w", err)
	}
	return events, nil
}

// SumByReason returns the total XP granted to a user for one reason.
func (r *XPEventRepository) SumByReason(ctx context.Context, userID int64, reason string) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM xp_events
		WHERE user_id = $1 AND reason = $2
	`

	var total int64
	if err := r.pool.QueryRow(ctx, query, userID, reason).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum xp events: %w", err)
	}
	return total, nil
}
