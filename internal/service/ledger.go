// Package service implements the collaborators the game core consumes:
// the reward ledger and the identity resolver.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"telegram-shadow-bot/internal/model"
	"telegram-shadow-bot/internal/repository"
)

// LedgerService is the concrete reward ledger: XP grants persisted to
// Postgres with level recalculation and an append-only event trail.
// It satisfies game.RewardLedger.
type LedgerService struct {
	userRepo *repository.UserRepository
	xpRepo   *repository.XPEventRepository
}

// NewLedgerService creates a new LedgerService instance.
func NewLedgerService(userRepo *repository.UserRepository, xpRepo *repository.XPEventRepository) *LedgerService {
	return &LedgerService{userRepo: userRepo, xpRepo: xpRepo}
}

// Grant adds XP to a user and records the reason. Users unknown to the
// system are created first so a grant never silently vanishes.
func (s *LedgerService) Grant(ctx context.Context, userID int64, amount int64, reason string) error {
	if amount == 0 {
		return nil
	}

	user, err := s.userRepo.AddXP(ctx, userID, amount, reason)
	if errors.Is(err, repository.ErrUserNotFound) {
		if _, err = s.userRepo.Upsert(ctx, userID, "", ""); err != nil {
			return fmt.Errorf("failed to create user for grant: %w", err)
		}
		user, err = s.userRepo.AddXP(ctx, userID, amount, reason)
	}
	if err != nil {
		return fmt.Errorf("failed to grant xp: %w", err)
	}

	log.Debug().
		Int64("user_id", userID).
		Int64("amount", amount).
		Str("reason", reason).
		Int64("xp", user.XP).
		Int("level", user.Level).
		Msg("XP granted")
	return nil
}

// TopUsers returns the leaderboard: top users by cumulative XP.
func (s *LedgerService) TopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.userRepo.GetTopByXP(ctx, limit)
}

// GetUser returns a user's ledger totals.
func (s *LedgerService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// RecentEvents returns a user's latest reward ledger entries.
func (s *LedgerService) RecentEvents(ctx context.Context, userID int64, limit int) ([]*model.XPEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.xpRepo.ListByUser(ctx, userID, limit)
}
