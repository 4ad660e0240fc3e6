// Package repository tests use testcontainers-go to spin up a PostgreSQL
// container; they are skipped when Docker is unavailable.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"telegram-shadow-bot/internal/model"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = runMigrations(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// runMigrations applies the database schema
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL DEFAULT '',
			first_name VARCHAR(255) NOT NULL DEFAULT '',
			xp BIGINT NOT NULL DEFAULT 0,
			level INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS xp_events (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			amount BIGINT NOT NULL,
			reason VARCHAR(50) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// ============================================================================
// UserRepository Tests
// ============================================================================

func TestUserRepository_Upsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	user, err := repo.Upsert(ctx, 12345, "testuser", "Test")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), user.TelegramID)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "Test", user.FirstName)
	assert.Equal(t, int64(0), user.XP)
	assert.Equal(t, 1, user.Level)

	// Re-upserting refreshes identity fields but never touches XP.
	_, err = repo.AddXP(ctx, 12345, 100, model.RewardClashWin)
	require.NoError(t, err)

	user, err = repo.Upsert(ctx, 12345, "renamed", "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", user.Username)
	assert.Equal(t, int64(100), user.XP)
}

func TestUserRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 99999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.Upsert(ctx, 12345, "testuser", "Test")
	require.NoError(t, err)

	user, err := repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, 12345, "ShadowFan", "Shadow")
	require.NoError(t, err)

	// Telegram usernames are case-insensitive.
	user, err := repo.GetByUsername(ctx, "shadowfan")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), user.TelegramID)

	user, err = repo.GetByUsername(ctx, "SHADOWFAN")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), user.TelegramID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_AddXP(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, 12345, "testuser", "Test")
	require.NoError(t, err)

	// 5 XP: still level 1 (level 2 needs 10).
	user, err := repo.AddXP(ctx, 12345, 5, model.RewardShadowJoin)
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.XP)
	assert.Equal(t, 1, user.Level)

	// +50 = 55 XP: past the 30 XP threshold for level 3.
	user, err = repo.AddXP(ctx, 12345, 50, model.RewardShadowWin)
	require.NoError(t, err)
	assert.Equal(t, int64(55), user.XP)
	assert.Equal(t, 3, user.Level)

	// Unknown user.
	_, err = repo.AddXP(ctx, 99999, 10, model.RewardShadowJoin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_GetTopByXP(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	for i, xp := range []int64{50, 200, 100} {
		id := int64(1000 + i)
		_, err := repo.Upsert(ctx, id, "user", "User")
		require.NoError(t, err)
		_, err = repo.AddXP(ctx, id, xp, model.RewardClashWin)
		require.NoError(t, err)
	}

	top, err := repo.GetTopByXP(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1001), top[0].TelegramID)
	assert.Equal(t, int64(1002), top[1].TelegramID)
}

// ============================================================================
// XPEventRepository Tests
// ============================================================================

func TestXPEventRepository_LedgerMatchesGrants(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	users := NewUserRepository(pool)
	events := NewXPEventRepository(pool)
	ctx := context.Background()

	_, err := users.Upsert(ctx, 12345, "testuser", "Test")
	require.NoError(t, err)

	_, err = users.AddXP(ctx, 12345, 5, model.RewardShadowJoin)
	require.NoError(t, err)
	_, err = users.AddXP(ctx, 12345, 5, model.RewardShadowJoin)
	require.NoError(t, err)
	_, err = users.AddXP(ctx, 12345, 50, model.RewardShadowWin)
	require.NoError(t, err)

	list, err := events.ListByUser(ctx, 12345, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Newest first.
	assert.Equal(t, model.RewardShadowWin, list[0].Reason)
	assert.Equal(t, int64(50), list[0].Amount)

	joinTotal, err := events.SumByReason(ctx, 12345, model.RewardShadowJoin)
	require.NoError(t, err)
	assert.Equal(t, int64(10), joinTotal)

	winTotal, err := events.SumByReason(ctx, 12345, model.RewardShadowWin)
	require.NoError(t, err)
	assert.Equal(t, int64(50), winTotal)

	// The ledger sum always matches the user's XP total.
	user, err := users.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, user.XP, joinTotal+winTotal)
}
