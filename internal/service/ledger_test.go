// Integration tests for the ledger over a real PostgreSQL container;
// skipped when Docker is unavailable.
package service

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
	"telegram-shadow-bot/internal/repository"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if exec.Command("docker", "info").Run() != nil {
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

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL DEFAULT '',
			first_name VARCHAR(255) NOT NULL DEFAULT '',
			xp BIGINT NOT NULL DEFAULT 0,
			level INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS xp_events (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			amount BIGINT NOT NULL,
			reason VARCHAR(50) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	require.NoError(t, err)

	return pool, func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}
}

func TestLedgerService_GrantCreatesUnknownUsers(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := repository.NewUserRepository(pool)
	xpRepo := repository.NewXPEventRepository(pool)
	ledger := NewLedgerService(userRepo, xpRepo)
	ctx := context.Background()

	// Nobody upserted 555 before; the grant must create them.
	require.NoError(t, ledger.Grant(ctx, 555, 50, model.RewardShadowWin))

	user, err := ledger.GetUser(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, int64(50), user.XP)
	assert.Equal(t, 3, user.Level)

	events, err := ledger.RecentEvents(ctx, 555, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.RewardShadowWin, events[0].Reason)
}

func TestLedgerService_ZeroGrantIsNoOp(t *testing.T) {
	// A zero amount short-circuits before the repository is touched.
	ledger := NewLedgerService(nil, nil)
	assert.NoError(t, ledger.Grant(context.Background(), 1, 0, model.RewardShadowJoin))
}

func TestLedgerService_TopUsers(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := repository.NewUserRepository(pool)
	ledger := NewLedgerService(userRepo, repository.NewXPEventRepository(pool))
	ctx := context.Background()

	require.NoError(t, ledger.Grant(ctx, 1, 30, model.RewardClashWin))
	require.NoError(t, ledger.Grant(ctx, 2, 90, model.RewardClashWin))
	require.NoError(t, ledger.Grant(ctx, 3, 60, model.RewardClashWin))

	top, err := ledger.TopUsers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, int64(2), top[0].TelegramID)
	assert.Equal(t, int64(3), top[1].TelegramID)
	assert.Equal(t, int64(1), top[2].TelegramID)
}
