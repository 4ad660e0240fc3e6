package handler

import (
	"context"
	"errors"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-shadow-bot/internal/config"
	"telegram-shadow-bot/internal/game"
	"telegram-shadow-bot/internal/game/clash"
)

// ClashHandler handles Cult Clash commands and callbacks.
type ClashHandler struct {
	cfg  *config.Config
	game *clash.Game
}

// NewClashHandler creates a new ClashHandler.
func NewClashHandler(cfg *config.Config, g *clash.Game) *ClashHandler {
	return &ClashHandler{cfg: cfg, game: g}
}

// HandleStart handles /cultclash. Starting a clash is an admin action.
func (h *ClashHandler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}
	if chat.Type == tele.ChatPrivate {
		return c.Reply("The Cult Clash can only be fought in a group.")
	}
	if !h.cfg.IsAdmin(sender.ID) {
		return c.Reply("Only an admin can start the Cult Clash.")
	}

	err := h.game.Start(ctx, chat.ID, sender.ID)
	if errors.Is(err, game.ErrAlreadyActive) {
		return c.Reply("A Cult Clash game is already in progress.")
	}
	return err
}

// HandleJoin handles /joinclash.
func (h *ClashHandler) HandleJoin(c tele.Context) error {
	ctx := context.Background()
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	err := h.game.Join(ctx, chat.ID, sender.ID, displayName(sender))
	switch {
	case errors.Is(err, game.ErrNoActiveGame):
		return c.Reply("There is no Cult Clash game to join.")
	case errors.Is(err, game.ErrNotInPhase):
		return c.Reply("The joining phase for the Cult Clash is over.")
	case errors.Is(err, game.ErrAlreadyJoined):
		return c.Reply("You are already in the clash.")
	}
	return err
}

// HandleCallback routes cc_* inline button presses.
func (h *ClashHandler) HandleCallback(c tele.Context) error {
	ctx := context.Background()
	callback := c.Callback()
	sender := c.Sender()
	chat := c.Chat()
	if callback == nil || sender == nil || chat == nil {
		return nil
	}

	data := strings.TrimPrefix(callback.Data, "\f")
	if data != clash.CallbackJoin {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown action."})
	}

	err := h.game.Join(ctx, chat.ID, sender.ID, displayName(sender))
	switch {
	case errors.Is(err, game.ErrAlreadyJoined):
		return c.Respond(&tele.CallbackResponse{Text: "You are already in the clash."})
	case errors.Is(err, game.ErrNoActiveGame), errors.Is(err, game.ErrNotInPhase):
		return c.Respond(&tele.CallbackResponse{Text: "The joining phase is over."})
	case err != nil:
		return err
	}
	return c.Respond(&tele.CallbackResponse{Text: "🔥 You joined the clash!"})
}
