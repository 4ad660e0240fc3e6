// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-shadow-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository handles user data persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = "telegram_id, username, first_name, xp, level, created_at, updated_at"

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.XP,
		&user.Level,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates the user or refreshes their identity fields. XP and level
// are never touched here; members are upserted on every interaction so the
// identity resolver can find them later.
func (r *UserRepository) Upsert(ctx context.Context, telegramID int64, username, firstName string) (*model.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name, xp, level, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 1, NOW(), NOW())
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username, first_name = EXCLUDED.first_name, updated_at = NOW()
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID, username, firstName))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by their Telegram ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username, case-insensitively (Telegram
// usernames are case-insensitive). Returns ErrUserNotFound on a miss; a miss
// is an expected outcome, not a fault.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1) LIMIT 1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// AddXP atomically adds XP to a user, recalculates their level, and records
// the grant in the xp_events ledger. Returns the updated user.
func (r *UserRepository) AddXP(ctx context.Context, telegramID int64, amount int64, reason string) (*model.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin xp transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var xp int64
	err = tx.QueryRow(ctx, `
		UPDATE users
		SET xp = xp + $2, updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING xp
	`, telegramID, amount).Scan(&xp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to add xp: %w", err)
	}

	level := model.LevelForXP(xp)
	user, err := scanUser(tx.QueryRow(ctx, `
		UPDATE users
		SET level = $2
		WHERE telegram_id = $1
		RETURNING `+userColumns, telegramID, level))
	if err != nil {
		return nil, fmt.Errorf("failed to update level: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO xp_events (user_id, amount, reason, created_at)
		VALUES ($1, $2, $3, NOW())
	`, telegramID, amount, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to record xp event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit xp transaction: %w", err)
	}
	return user, nil
}

// GetTopByXP retrieves the top N users by XP.
func (r *UserRepository) GetTopByXP(ctx context.Context, limit int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY xp DESC, telegram_id LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
