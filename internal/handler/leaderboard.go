package handler

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-shadow-bot/internal/service"
)

// LeaderboardHandler handles XP leaderboard and personal stats commands.
type LeaderboardHandler struct {
	ledger *service.LedgerService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(ledger *service.LedgerService) *LeaderboardHandler {
	return &LeaderboardHandler{ledger: ledger}
}

var rankMedals = []string{"🥇", "🥈", "🥉"}

// HandleRank handles /rank: top 10 members by XP.
func (h *LeaderboardHandler) HandleRank(c tele.Context) error {
	ctx := context.Background()

	users, err := h.ledger.TopUsers(ctx, 10)
	if err != nil {
		return c.Reply("Could not fetch the leaderboard, try again later.")
	}
	if len(users) == 0 {
		return c.Reply("Nobody has earned any XP yet.")
	}

	var b strings.Builder
	b.WriteString("🏆 XP LEADERBOARD\n\n")
	for i, u := range users {
		marker := fmt.Sprintf("%d.", i+1)
		if i < len(rankMedals) {
			marker = rankMedals[i]
		}
		name := u.Username
		if name == "" {
			name = u.FirstName
		}
		fmt.Fprintf(&b, "%s @%s — %d XP (level %d)\n", marker, name, u.XP, u.Level)
	}
	return c.Reply(b.String())
}

// HandleMyXP handles /myxp: the sender's XP, level, and recent rewards.
func (h *LeaderboardHandler) HandleMyXP(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	user, err := h.ledger.GetUser(ctx, sender.ID)
	if err != nil {
		return c.Reply("No stats yet. Join a game to earn XP!")
	}
	events, err := h.ledger.RecentEvents(ctx, sender.ID, 5)
	if err != nil {
		return c.Reply("Could not fetch your stats, try again later.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 @%s — %d XP (level %d)\n", displayName(sender), user.XP, user.Level)
	if len(events) == 0 {
		b.WriteString("No rewards yet. Join a game to earn XP!")
		return c.Reply(b.String())
	}
	b.WriteString("Recent rewards:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "• %+d XP (%s)\n", e.Amount, e.Reason)
	}
	return c.Reply(b.String())
}
