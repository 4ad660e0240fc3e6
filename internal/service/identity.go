package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-shadow-bot/internal/repository"
)

// ErrUnknownUser is returned when a display name does not resolve to any
// known member. Names only become resolvable once their owner has interacted
// with the bot, so this is an expected miss.
var ErrUnknownUser = errors.New("unknown user")

// IdentityService resolves typed @usernames to participant identifiers using
// the members the bot has seen. It satisfies game.IdentityResolver.
type IdentityService struct {
	userRepo *repository.UserRepository
}

// NewIdentityService creates a new IdentityService instance.
func NewIdentityService(userRepo *repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// ResolveByUsername maps a username (with or without the leading @) to a
// Telegram user ID. Returns ErrUnknownUser on a miss.
func (s *IdentityService) ResolveByUsername(ctx context.Context, username string) (int64, error) {
	name := strings.TrimPrefix(strings.TrimSpace(username), "@")
	if name == "" {
		return 0, ErrUnknownUser
	}

	user, err := s.userRepo.GetByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrUnknownUser
		}
		return 0, fmt.Errorf("failed to resolve username: %w", err)
	}
	return user.TelegramID, nil
}

// Track records that a member was seen, keeping their identity fields fresh
// for later resolution.
func (s *IdentityService) Track(ctx context.Context, telegramID int64, username, firstName string) error {
	_, err := s.userRepo.Upsert(ctx, telegramID, username, firstName)
	return err
}
