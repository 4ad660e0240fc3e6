// Package shadow implements the Shadow Game: a turn-based elimination hunt
// where the current "It" must tag another player before the tag timer runs
// out, and the last player standing wins.
package shadow

import (
	"telegram-shadow-bot/internal/channel"
	"telegram-shadow-bot/internal/pkg/timer"
)

// Phase is the session's position in the game lifecycle.
type Phase int

const (
	// PhaseSetup: the starter is choosing the join window duration.
	PhaseSetup Phase = iota
	// PhaseJoining: the countdown runs and players may enter.
	PhaseJoining
	// PhaseActive: the hunt is on; one player is It.
	PhaseActive
	// PhaseResolved: terminal; the session is about to leave the registry.
	PhaseResolved
)

// Outcome describes how a resolved session ended.
type Outcome int

const (
	OutcomeNone      Outcome = iota
	OutcomeWinner            // one player survived
	OutcomeWipe              // everyone was eliminated
	OutcomeCancelled         // fewer than two players joined
)

// Player is a current participant. Elimination removes the entry from the
// roster and appends the name to Eliminated, so a participant id is always
// in exactly one of the two collections.
type Player struct {
	Name string
	IsIt bool
}

// Session is the per-chat game instance. All mutation happens under the
// chat's lock; the struct itself carries no synchronization.
type Session struct {
	ChatID      int64
	StarterID   int64
	StarterName string
	Phase       Phase
	Outcome     Outcome

	Players    map[int64]*Player
	Eliminated []string // display names, elimination order, append-only
	Round      int      // bumps every time the It role changes hands

	JoinDuration  int // configured join window, seconds
	JoinRemaining int // live countdown, seconds

	// LastEvent is the most recent flavour line (tag, elimination, win),
	// rendered into the status panel.
	LastEvent string

	// Primary is the single authoritative status message; Aux holds the
	// how-to-play text and is exempt from the single-message invariant.
	Primary channel.MessageRef
	Aux     channel.MessageRef

	// phaseTimer is the one live timer for the session: the join countdown
	// during PhaseJoining, the tag timer during PhaseActive.
	phaseTimer *timer.Handle
}

// newSession creates a Setup-phase session for the chat.
func newSession(chatID, starterID int64, starterName string) *Session {
	return &Session{
		ChatID:      chatID,
		StarterID:   starterID,
		StarterName: starterName,
		Phase:       PhaseSetup,
		Players:     make(map[int64]*Player),
	}
}

// it returns the current turn holder, or 0 and nil if there is none.
func (s *Session) it() (int64, *Player) {
	for id, p := range s.Players {
		if p.IsIt {
			return id, p
		}
	}
	return 0, nil
}

// armTimer replaces the session's live timer. The previous handle is always
// stopped first so two timers can never race for the same session.
func (s *Session) armTimer(h *timer.Handle) {
	s.phaseTimer.Stop()
	s.phaseTimer = h
}

// stopTimer cancels the live timer, if any.
func (s *Session) stopTimer() {
	s.phaseTimer.Stop()
	s.phaseTimer = nil
}
