// Package main is the entry point for the shadow bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-shadow-bot/internal/bot"
	"telegram-shadow-bot/internal/config"
	"telegram-shadow-bot/internal/pkg/db"
	"telegram-shadow-bot/internal/pkg/lock"
	"telegram-shadow-bot/internal/repository"
	"telegram-shadow-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Repositories and collaborator services
	userRepo := repository.NewUserRepository(dbPool.Pool)
	xpRepo := repository.NewXPEventRepository(dbPool.Pool)

	ledger := service.NewLedgerService(userRepo, xpRepo)
	identity := service.NewIdentityService(userRepo)

	// One lock table sequences all game mutations per chat, across games.
	chats := lock.NewChatLock()

	shadowBot, err := bot.New(&bot.Dependencies{
		Config:   cfg,
		Ledger:   ledger,
		Identity: identity,
		Chats:    chats,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		shadowBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shadowBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: users table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL DEFAULT '',
			first_name VARCHAR(255) NOT NULL DEFAULT '',
			xp BIGINT NOT NULL DEFAULT 0,
			level INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_xp ON users(xp DESC);
		CREATE INDEX IF NOT EXISTS idx_users_username ON users(lower(username));
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	// Migration 2: xp_events reward ledger
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS xp_events (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			amount BIGINT NOT NULL,
			reason VARCHAR(50) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_xp_events_user_time ON xp_events(user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_xp_events_reason ON xp_events(reason, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: xp_events table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
