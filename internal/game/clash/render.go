package clash

import (
	"fmt"
	"sort"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-shadow-bot/internal/channel"
)

// Callback data for the inline controls.
const (
	CallbackPrefix = "cc_"
	CallbackJoin   = "cc_join"
)

// joinKeyboard is the join button shown while the joining phase runs.
func joinKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{{
			{Text: "🔥 Join the Clash", Data: CallbackJoin},
		}},
	}
}

// Render maps a session to its status message. Pure: no side effects, no
// mutation, callable at any point in the session's life.
func Render(s *Session, cfg Config) channel.Message {
	switch s.Phase {
	case PhaseJoining:
		var b strings.Builder
		b.WriteString("🔥 A Cult Clash is about to begin! 🔥\n")
		fmt.Fprintf(&b, "⏳ Time left to join: %d:%02d\n", s.JoinRemaining/60, s.JoinRemaining%60)
		b.WriteString("Tap the button or type /joinclash to enter!\n")
		if names := playerNames(s); len(names) > 0 {
			fmt.Fprintf(&b, "\n<i>Fighters: %s</i>\n", strings.Join(names, ", "))
		}
		return channel.Message{Text: b.String(), Markup: joinKeyboard(), HTML: true}

	case PhaseActive:
		var b strings.Builder
		b.WriteString("⚔️ CULT CLASH\n")
		fmt.Fprintf(&b, "• Fighters remaining: %d\n", len(s.Players))
		fmt.Fprintf(&b, "• Eliminated: %d\n", len(s.Eliminated))
		fmt.Fprintf(&b, "• Round: %d\n", s.Round)
		fmt.Fprintf(&b, "• Survivors to win: %d\n", cfg.SurvivorGoal)
		if s.LastEvent != "" {
			b.WriteString("\n" + s.LastEvent)
		}
		return channel.Message{Text: b.String(), HTML: true}

	default: // PhaseResolved
		return channel.Message{Text: resolvedText(s, cfg), HTML: true}
	}
}

func resolvedText(s *Session, cfg Config) string {
	switch s.Outcome {
	case OutcomeWinners:
		names := playerNames(s)
		return fmt.Sprintf("🏆 The Cult Clash is over! The winners are: %s. Each has been awarded %d XP!", strings.Join(names, ", "), cfg.WinXP)
	case OutcomeCancelled:
		return "Not enough players for a clash. Game over."
	default:
		return "The Cult Clash is over."
	}
}

// elimLines are the flavour messages for a fresh elimination.
var elimLines = []string{
	"%s slipped off! ❌",
	"%s just got vaporized! 💨",
	"The spirits have claimed %s! 💀",
}

func playerNames(s *Session) []string {
	names := make([]string, 0, len(s.Players))
	for _, name := range s.Players {
		names = append(names, fmt.Sprintf("<code>@%s</code>", name))
	}
	sort.Strings(names)
	return names
}
