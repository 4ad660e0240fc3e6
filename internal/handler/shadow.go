// Package handler provides Telegram bot command and callback handlers.
// Handlers validate input, call into the game core, and translate its
// errors into reply text; they never mutate game state themselves.
package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-shadow-bot/internal/game"
	"telegram-shadow-bot/internal/game/shadow"
)

// ShadowHandler handles Shadow Game commands and callbacks.
type ShadowHandler struct {
	game *shadow.Game
}

// NewShadowHandler creates a new ShadowHandler.
func NewShadowHandler(g *shadow.Game) *ShadowHandler {
	return &ShadowHandler{game: g}
}

// displayName prefers the username and falls back to the first name, which
// is all Telegram guarantees to exist.
func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// HandleStart handles /shadowgame: create a session and show the setup panel.
func (h *ShadowHandler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}
	if chat.Type == tele.ChatPrivate {
		return c.Reply("The Shadow Game can only be played in a group.")
	}

	err := h.game.Start(ctx, chat.ID, sender.ID, displayName(sender))
	if errors.Is(err, game.ErrAlreadyActive) {
		return c.Reply("A Shadow Game is already being set up or is in progress.")
	}
	return err
}

// HandleTag handles /s @username: the It player's tag action.
func (h *ShadowHandler) HandleTag(c tele.Context) error {
	ctx := context.Background()
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 {
		return c.Reply("Usage: /s @username")
	}
	target := strings.TrimPrefix(args[0], "@")

	err := h.game.Tag(ctx, chat.ID, sender.ID, target)
	switch {
	case errors.Is(err, game.ErrNoActiveGame),
		errors.Is(err, game.ErrNotInPhase),
		errors.Is(err, game.ErrNotAuthorized):
		return c.Reply("You are not It or there is no game running.")
	case errors.Is(err, game.ErrSelfTarget):
		return c.Reply("You cannot tag yourself!")
	case errors.Is(err, game.ErrInvalidTarget):
		// The elimination was announced through the status panel.
		return nil
	}
	return err
}

// HandleCallback routes sg_* inline button presses.
func (h *ShadowHandler) HandleCallback(c tele.Context) error {
	ctx := context.Background()
	callback := c.Callback()
	sender := c.Sender()
	chat := c.Chat()
	if callback == nil || sender == nil || chat == nil {
		return nil
	}

	data := strings.TrimPrefix(callback.Data, "\f")

	if seconds, ok := strings.CutPrefix(data, shadow.CallbackDuration); ok {
		return h.handleDuration(ctx, c, seconds)
	}
	if data == shadow.CallbackJoin {
		return h.handleJoin(ctx, c)
	}
	return c.Respond(&tele.CallbackResponse{Text: "Unknown action."})
}

func (h *ShadowHandler) handleDuration(ctx context.Context, c tele.Context, raw string) error {
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown action."})
	}

	err = h.game.SelectDuration(ctx, c.Chat().ID, c.Sender().ID, seconds)
	switch {
	case errors.Is(err, game.ErrNotAuthorized):
		return c.Respond(&tele.CallbackResponse{Text: "Only the person who started the game can select the time."})
	case errors.Is(err, game.ErrNoActiveGame), errors.Is(err, game.ErrNotInPhase):
		return c.Respond(&tele.CallbackResponse{Text: "The setup phase is over."})
	case err != nil:
		return err
	}
	return c.Respond(&tele.CallbackResponse{})
}

func (h *ShadowHandler) handleJoin(ctx context.Context, c tele.Context) error {
	sender := c.Sender()

	err := h.game.Join(ctx, c.Chat().ID, sender.ID, displayName(sender))
	switch {
	case errors.Is(err, game.ErrAlreadyJoined):
		return c.Respond(&tele.CallbackResponse{Text: "You are already in the game."})
	case errors.Is(err, game.ErrNoActiveGame), errors.Is(err, game.ErrNotInPhase):
		return c.Respond(&tele.CallbackResponse{Text: "The joining phase is over."})
	case err != nil:
		return err
	}
	return c.Respond(&tele.CallbackResponse{Text: "🕶️ You entered the shadows…"})
}
