// Package clash implements Cult Clash: everyone who joins is thrown into the
// pit, the spirits eliminate one random player per tick, and whoever is left
// when the roster reaches the survivor goal shares the win.
package clash

import (
	"telegram-shadow-bot/internal/channel"
	"telegram-shadow-bot/internal/pkg/timer"
)

// Phase is the session's position in the game lifecycle. Cult Clash has no
// setup phase: configuration is fixed, so a started game goes straight to
// joining.
type Phase int

const (
	PhaseJoining Phase = iota
	PhaseActive
	PhaseResolved
)

// Outcome describes how a resolved session ended.
type Outcome int

const (
	OutcomeNone      Outcome = iota
	OutcomeWinners           // roster reached the survivor goal
	OutcomeCancelled         // fewer than two players joined
)

// Session is the per-chat game instance. All mutation happens under the
// chat's lock.
type Session struct {
	ChatID    int64
	StarterID int64
	Phase     Phase
	Outcome   Outcome

	Players    map[int64]string // participant id -> display name
	Eliminated []string         // display names, elimination order, append-only
	Round      int              // bumps per elimination tick

	JoinDuration  int
	JoinRemaining int

	// LastEvent is the latest elimination flavour line shown in the panel.
	LastEvent string

	// Primary is the single authoritative status message.
	Primary channel.MessageRef

	phaseTimer *timer.Handle
}

func newSession(chatID, starterID, joinSeconds int64) *Session {
	return &Session{
		ChatID:        chatID,
		StarterID:     starterID,
		Phase:         PhaseJoining,
		Players:       make(map[int64]string),
		JoinDuration:  int(joinSeconds),
		JoinRemaining: int(joinSeconds),
	}
}

func (s *Session) armTimer(h *timer.Handle) {
	s.phaseTimer.Stop()
	s.phaseTimer = h
}

func (s *Session) stopTimer() {
	s.phaseTimer.Stop()
	s.phaseTimer = nil
}
