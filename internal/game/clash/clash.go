package clash

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-shadow-bot/internal/channel"
	"telegram-shadow-bot/internal/game"
	"telegram-shadow-bot/internal/model"
	"telegram-shadow-bot/internal/pkg/lock"
	"telegram-shadow-bot/internal/pkg/timer"
)

const (
	joinTickInterval    = time.Second
	panelRefreshSeconds = 10
)

// Config holds Cult Clash tuning.
type Config struct {
	JoinSeconds  int
	TickSeconds  int
	SurvivorGoal int
	WinXP        int64
}

// Game runs Cult Clash sessions across chats, one per chat. Same discipline
// as the Shadow Game: every mutation runs under the chat's lock, and timer
// callbacks re-fetch the session and re-validate before touching it.
type Game struct {
	cfg       Config
	registry  *game.Registry[Session]
	chats     *lock.ChatLock
	presenter *channel.Presenter
	ledger    game.RewardLedger
}

// New creates the Cult Clash engine.
func New(cfg Config, chats *lock.ChatLock, presenter *channel.Presenter, ledger game.RewardLedger) *Game {
	if cfg.JoinSeconds <= 0 {
		cfg.JoinSeconds = 30
	}
	if cfg.TickSeconds <= 0 {
		cfg.TickSeconds = 5
	}
	if cfg.SurvivorGoal <= 0 {
		cfg.SurvivorGoal = 3
	}
	return &Game{
		cfg:       cfg,
		registry:  game.NewRegistry[Session](),
		chats:     chats,
		presenter: presenter,
		ledger:    ledger,
	}
}

// Active reports whether a session is running in the chat.
func (g *Game) Active(chatID int64) bool {
	return g.registry.Get(chatID) != nil
}

// Start opens a clash in the joining phase. Returns ErrAlreadyActive if a
// clash is already running in the chat.
func (g *Game) Start(ctx context.Context, chatID, starterID int64) error {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s, err := g.registry.Create(chatID, func() *Session {
		return newSession(chatID, starterID, int64(g.cfg.JoinSeconds))
	})
	if err != nil {
		return err
	}

	g.present(s)
	s.armTimer(timer.Every(joinTickInterval, func() { g.joinTick(chatID) }))

	log.Info().Int64("chat_id", chatID).Int64("starter_id", starterID).Msg("Cult Clash joining phase opened")
	return nil
}

// Join adds a fighter during the joining phase.
func (g *Game) Join(ctx context.Context, chatID, userID int64, username string) error {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s := g.registry.Get(chatID)
	if s == nil {
		return game.ErrNoActiveGame
	}
	if s.Phase != PhaseJoining {
		return game.ErrNotInPhase
	}
	if _, joined := s.Players[userID]; joined {
		return game.ErrAlreadyJoined
	}

	s.Players[userID] = username
	g.present(s)
	return nil
}

// joinTick fires once per second while the joining phase runs.
func (g *Game) joinTick(chatID int64) {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s := g.registry.Get(chatID)
	if s == nil || s.Phase != PhaseJoining {
		log.Debug().Int64("chat_id", chatID).Msg("Stale clash join tick dropped")
		return
	}

	s.JoinRemaining--
	if s.JoinRemaining > 0 {
		if s.JoinRemaining%panelRefreshSeconds == 0 {
			g.present(s)
		}
		return
	}

	g.closeJoining(s)
}

// closeJoining ends the join window: cancel with fewer than two fighters,
// declare winners immediately if the roster is already at or below the goal,
// otherwise start the elimination ticks.
func (g *Game) closeJoining(s *Session) {
	s.stopTimer()

	if len(s.Players) < 2 {
		g.resolve(s, OutcomeCancelled)
		return
	}
	if len(s.Players) <= g.cfg.SurvivorGoal {
		g.resolve(s, OutcomeWinners)
		return
	}

	s.Phase = PhaseActive
	s.LastEvent = "The joining phase is over! The clash begins now..."
	g.present(s)
	s.armTimer(timer.Every(time.Duration(g.cfg.TickSeconds)*time.Second, func() { g.elimTick(s.ChatID) }))

	log.Info().Int64("chat_id", s.ChatID).Int("players", len(s.Players)).Msg("Cult Clash eliminations started")
}

// elimTick eliminates one uniformly random fighter from the live roster.
func (g *Game) elimTick(chatID int64) {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s := g.registry.Get(chatID)
	if s == nil || s.Phase != PhaseActive {
		log.Debug().Int64("chat_id", chatID).Msg("Stale clash elimination tick dropped")
		return
	}

	victim := game.PickRandom(s.Players)
	name := s.Players[victim]
	s.Eliminated = append(s.Eliminated, name)
	delete(s.Players, victim)
	s.Round++

	mention := fmt.Sprintf("<code>@%s</code>", name)
	s.LastEvent = fmt.Sprintf(elimLines[rand.Intn(len(elimLines))], mention)

	if len(s.Players) <= g.cfg.SurvivorGoal {
		g.resolve(s, OutcomeWinners)
		return
	}
	g.present(s)
}

// resolve renders the terminal message, grants survivor rewards, and removes
// the session from the registry.
func (g *Game) resolve(s *Session, outcome Outcome) {
	s.stopTimer()
	s.Phase = PhaseResolved
	s.Outcome = outcome

	if outcome == OutcomeWinners {
		for id := range s.Players {
			game.GrantAsync(g.ledger, id, g.cfg.WinXP, model.RewardClashWin)
		}
	}

	g.present(s)
	g.registry.Remove(s.ChatID)

	log.Info().
		Int64("chat_id", s.ChatID).
		Int("outcome", int(outcome)).
		Int("survivors", len(s.Players)).
		Int("eliminated", len(s.Eliminated)).
		Msg("Cult Clash resolved")
}

func (g *Game) present(s *Session) {
	ref, err := g.presenter.Present(s.ChatID, s.Primary, Render(s, g.cfg))
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", s.ChatID).Msg("Failed to present Cult Clash status")
		return
	}
	s.Primary = ref
}

// Bump re-sends the status panel so it becomes the newest message in the
// chat; returns false when no session is active.
func (g *Game) Bump(chatID int64) bool {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s := g.registry.Get(chatID)
	if s == nil {
		return false
	}
	ref, err := g.presenter.Bump(chatID, s.Primary, Render(s, g.cfg))
	if err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("Failed to bump Cult Clash status")
		return true
	}
	s.Primary = ref
	return true
}
