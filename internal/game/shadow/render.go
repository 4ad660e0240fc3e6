package shadow

import (
	"fmt"
	"sort"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-shadow-bot/internal/channel"
)

// Callback data for the inline controls.
const (
	CallbackPrefix   = "sg_"
	CallbackJoin     = "sg_join"
	CallbackDuration = "sg_time_" // followed by seconds, e.g. sg_time_120
)

// HowToPlay is the rules text sent once at setup, outside the status panel.
const HowToPlay = `<b>🌑 SHADOW GAME - HOW TO PLAY 🌑</b>

<b>Objective:</b> Survive the hunt!
<b>Joining:</b> During the joining phase, tap the 'Enter the Shadows' button to join.
<b>The Hunt:</b> One player is randomly chosen as 'IT'. Their goal is to 'tag' another player using the /s @username command before the timer runs out.
<b>Elimination:</b> If 'IT' fails to tag someone in time - or tags someone who isn't playing - they are eliminated.
<b>New 'IT':</b> A successful tag makes the tagged player the new 'IT' and resets the timer.
<b>Winning:</b> The last player remaining wins!

Good luck, and may the shadows be ever in your favor!`

// DurationKeyboard builds the join-window picker shown during setup.
// Choices are minutes; callback data carries seconds.
func DurationKeyboard(choicesMinutes []int) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows [][]tele.InlineButton
	var row []tele.InlineButton
	for _, m := range choicesMinutes {
		row = append(row, tele.InlineButton{
			Text: fmt.Sprintf("%d min", m),
			Data: fmt.Sprintf("%s%d", CallbackDuration, m*60),
		})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	markup.InlineKeyboard = rows
	return markup
}

// joinKeyboard is the single join button shown while the joining phase runs.
func joinKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{{
			{Text: "🕶️ Enter the Shadows", Data: CallbackJoin},
		}},
	}
}

// Render maps a session to its status message. Pure: no side effects, no
// mutation, callable at any point in the session's life.
func Render(s *Session, cfg Config) channel.Message {
	switch s.Phase {
	case PhaseSetup:
		return channel.Message{
			Text:   fmt.Sprintf("🌑 SHADOW GAME SETUP\n@%s, choose how long players can join:", s.StarterName),
			Markup: DurationKeyboard(cfg.JoinChoicesMinutes),
			HTML:   true,
		}

	case PhaseJoining:
		var b strings.Builder
		b.WriteString("🌒 JOIN THE SHADOWS\nTap to enter…\n")
		fmt.Fprintf(&b, "⏳ Time left: %d:%02d\n", s.JoinRemaining/60, s.JoinRemaining%60)
		if names := playerNames(s); len(names) > 0 {
			fmt.Fprintf(&b, "\n<i>Joined Players: %s</i>\n", strings.Join(names, ", "))
		}
		if s.LastEvent != "" {
			b.WriteString("\n" + s.LastEvent)
		}
		return channel.Message{Text: b.String(), Markup: joinKeyboard(), HTML: true}

	case PhaseActive:
		var b strings.Builder
		b.WriteString("🌑 SHADOW STATUS\n")
		if _, it := s.it(); it != nil {
			fmt.Fprintf(&b, "• It: <code>@%s</code>\n", it.Name)
		} else {
			b.WriteString("• It: None\n")
		}
		fmt.Fprintf(&b, "• Players remaining: %d\n", len(s.Players))
		fmt.Fprintf(&b, "• Eliminated: %d\n", len(s.Eliminated))
		fmt.Fprintf(&b, "• Round: %d\n", s.Round)
		fmt.Fprintf(&b, "\nUse /s @username to TAG\n⏳ Tag timer: %d seconds\n", cfg.TagTimeoutSeconds)
		if s.LastEvent != "" {
			b.WriteString("\n" + s.LastEvent)
		}
		return channel.Message{Text: b.String(), HTML: true}

	default: // PhaseResolved
		return channel.Message{Text: resolvedText(s), HTML: true}
	}
}

// resolvedText renders the terminal message for a resolved session.
func resolvedText(s *Session) string {
	switch s.Outcome {
	case OutcomeWinner:
		names := playerNames(s)
		winner := ""
		if len(names) > 0 {
			winner = names[0]
		}
		return fmt.Sprintf("👑 WINNER OF THE SHADOWS\n%s stands alone\n🌑 The darkness bows.", winner)
	case OutcomeWipe:
		return "Everyone has been consumed by the shadows. The game is over."
	case OutcomeCancelled:
		return "Not enough players joined. The Shadow Game is canceled."
	default:
		return "The Shadow Game is over."
	}
}

// playerNames returns the current roster as formatted mentions, sorted for
// stable output.
func playerNames(s *Session) []string {
	names := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		names = append(names, fmt.Sprintf("<code>@%s</code>", p.Name))
	}
	sort.Strings(names)
	return names
}
