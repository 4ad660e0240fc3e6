package shadow

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-shadow-bot/internal/channel"
	"telegram-shadow-bot/internal/game"
	"telegram-shadow-bot/internal/model"
	"telegram-shadow-bot/internal/pkg/lock"
	"telegram-shadow-bot/internal/pkg/timer"
)

// joinTickInterval is the join countdown resolution; the panel itself is
// refreshed every panelRefreshSeconds to keep edit volume down.
const (
	joinTickInterval    = time.Second
	panelRefreshSeconds = 10
)

// Config holds Shadow Game tuning.
type Config struct {
	TagTimeoutSeconds  int
	JoinChoicesMinutes []int
	JoinXP             int64
	WinXP              int64
}

// Game runs Shadow Game sessions across chats. One session per chat; every
// mutation - user action or timer callback - runs under the chat's lock, and
// timer callbacks re-fetch the session from the registry and re-validate the
// expected role before touching anything.
type Game struct {
	cfg       Config
	registry  *game.Registry[Session]
	chats     *lock.ChatLock
	presenter *channel.Presenter
	identity  game.IdentityResolver
	ledger    game.RewardLedger
}

// New creates the Shadow Game engine.
func New(cfg Config, chats *lock.ChatLock, presenter *channel.Presenter, identity game.IdentityResolver, ledger game.RewardLedger) *Game {
	if cfg.TagTimeoutSeconds <= 0 {
		cfg.TagTimeoutSeconds = 25
	}
	if len(cfg.JoinChoicesMinutes) == 0 {
		cfg.JoinChoicesMinutes = []int{1, 2, 3, 4, 5}
	}
	return &Game{
		cfg:       cfg,
		registry:  game.NewRegistry[Session](),
		chats:     chats,
		presenter: presenter,
		identity:  identity,
		ledger:    ledger,
	}
}

// Active reports whether a session is running in the chat.
func (g *Game) Active(chatID int64) bool {
	return g.registry.Get(chatID) != nil
}

// Start creates a session in setup phase, posts the rules, and presents the
// duration picker. Returns ErrAlreadyActive if a game is already running.
func (g *Game) Start(ctx context.Context, chatID, starterID int64, starterName string) error {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s, err := g.registry.Create(chatID, func() *Session {
		return newSession(chatID, starterID, starterName)
	})
	if err != nil {
		return err
	}

	// Rules go out as a separate message; it is informational and not part
	// of the single-message protocol.
	aux, err := g.presenter.Sender().Send(chatID, channel.Message{Text: HowToPlay, HTML: true})
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send how-to-play message")
	} else {
		s.Aux = aux
	}

	g.present(s)

	log.Info().Int64("chat_id", chatID).Int64("starter_id", starterID).Msg("Shadow Game setup started")
	return nil
}

// SelectDuration confirms the join window and opens the joining phase.
// Only the starter may pick; anyone else gets ErrNotAuthorized.
func (g *Game) SelectDuration(ctx context.Context, chatID, actorID int64, seconds int) error {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s := g.registry.Get(chatID)
	if s == nil {
		return game.ErrNoActiveGame
	}
	if actorID != s.StarterID {
		return game.ErrNotAuthorized
	}
	if s.Phase != PhaseSetup {
		return game.ErrNotInPhase
	}
	if seconds <= 0 {
		return game.ErrNotInPhase
	}

	s.Phase = PhaseJoining
	s.JoinDuration = seconds
	s.JoinRemaining = seconds

	g.present(s)
	s.armTimer(timer.Every(joinTickInterval, func() { g.joinTick(chatID) }))

	log.Info().Int64("chat_id", chatID).Int("join_seconds", seconds).Msg("Shadow Game joining phase opened")
	return nil
}

// Join adds a participant during the joining phase. Re-joining is rejected
// without touching the roster; joining after the window closed returns
// ErrNotInPhase.
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

	s.Players[userID] = &Player{Name: username}
	game.GrantAsync(g.ledger, userID, g.cfg.JoinXP, model.RewardShadowJoin)

	g.present(s)
	return nil
}

// Tag handles the It player's /s @username action. A valid tag hands the It
// role to the target and resets the timer. Tagging someone who is not a
// current player eliminates the tagger. Self-tags are rejected outright.
func (g *Game) Tag(ctx context.Context, chatID, actorID int64, targetName string) error {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s := g.registry.Get(chatID)
	if s == nil {
		return game.ErrNoActiveGame
	}
	if s.Phase != PhaseActive {
		return game.ErrNotInPhase
	}
	actor, ok := s.Players[actorID]
	if !ok || !actor.IsIt {
		return game.ErrNotAuthorized
	}

	targetID, err := g.identity.ResolveByUsername(ctx, targetName)
	if err == nil {
		if _, playing := s.Players[targetID]; !playing {
			err = game.ErrInvalidTarget
		}
	}
	if err != nil {
		// Naming an invalid target is a fatal misplay: the tagger is
		// eliminated on the spot.
		event := fmt.Sprintf("Could not find a player named <code>@%s</code> in this game. ☠️ <code>@%s</code> has been removed for tagging an invalid target.", targetName, actor.Name)
		g.eliminateIt(s, actorID, event)
		return game.ErrInvalidTarget
	}

	if targetID == actorID {
		return game.ErrSelfTarget
	}

	target := s.Players[targetID]
	actor.IsIt = false
	target.IsIt = true
	s.Round++
	s.LastEvent = fmt.Sprintf("🕶️ SHADOWED\n<code>@%s</code> tagged <code>@%s</code>\n<code>@%s</code> is IT\n⏳ Timer reset to %d seconds", actor.Name, target.Name, target.Name, g.cfg.TagTimeoutSeconds)

	g.armTagTimer(s, targetID)
	g.present(s)
	return nil
}

// joinTick fires once per second while the joining phase runs.
func (g *Game) joinTick(chatID int64) {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s := g.registry.Get(chatID)
	if s == nil || s.Phase != PhaseJoining {
		// Stale fire: the session resolved or moved on while this tick
		// was queued.
		log.Debug().Int64("chat_id", chatID).Msg("Stale join tick dropped")
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

// closeJoining ends the join window: cancel with fewer than two players,
// otherwise pick the first It and start the hunt.
func (g *Game) closeJoining(s *Session) {
	s.stopTimer()

	if len(s.Players) < 2 {
		g.resolve(s, OutcomeCancelled)
		return
	}

	firstIt := game.PickRandom(s.Players)
	s.Players[firstIt].IsIt = true
	s.Phase = PhaseActive
	s.Round = 1
	s.LastEvent = fmt.Sprintf("👁️ THE HUNT BEGINS\n<code>@%s</code> is IT", s.Players[firstIt].Name)

	g.armTagTimer(s, firstIt)
	g.present(s)

	log.Info().
		Int64("chat_id", s.ChatID).
		Int("players", len(s.Players)).
		Int64("first_it", firstIt).
		Msg("Shadow Game hunt started")
}

// armTagTimer arms the per-turn timer for the given It player, replacing any
// live timer.
func (g *Game) armTagTimer(s *Session, itID int64) {
	chatID := s.ChatID
	d := time.Duration(g.cfg.TagTimeoutSeconds) * time.Second
	s.armTimer(timer.After(d, func() { g.tagTimeout(chatID, itID) }))
}

// tagTimeout eliminates the It player who failed to tag in time. The session
// is re-fetched and the expected role re-validated: a tag or resolution may
// have landed in the same tick window, making this fire stale.
func (g *Game) tagTimeout(chatID, expectedIt int64) {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s := g.registry.Get(chatID)
	if s == nil || s.Phase != PhaseActive {
		log.Debug().Int64("chat_id", chatID).Msg("Stale tag timer dropped: no active session")
		return
	}
	p, ok := s.Players[expectedIt]
	if !ok || !p.IsIt {
		log.Debug().Int64("chat_id", chatID).Int64("expected_it", expectedIt).Msg("Stale tag timer dropped: It moved on")
		return
	}

	event := fmt.Sprintf("☠️ <code>@%s</code> was swallowed by the darkness for failing to tag in time.", p.Name)
	g.eliminateIt(s, expectedIt, event)
}

// eliminateIt removes the It player from the roster and either promotes a
// random replacement, declares a winner, or ends the game with a wipe.
func (g *Game) eliminateIt(s *Session, itID int64, eventText string) {
	p := s.Players[itID]
	s.Eliminated = append(s.Eliminated, p.Name)
	delete(s.Players, itID)
	s.LastEvent = eventText

	switch {
	case len(s.Players) > 1:
		newIt := game.PickRandom(s.Players)
		s.Players[newIt].IsIt = true
		s.Round++
		s.LastEvent += fmt.Sprintf("\n<code>@%s</code> is now IT.\n⏳ Tag timer: %d seconds", s.Players[newIt].Name, g.cfg.TagTimeoutSeconds)
		g.armTagTimer(s, newIt)
		g.present(s)
	case len(s.Players) == 1:
		g.resolve(s, OutcomeWinner)
	default:
		g.resolve(s, OutcomeWipe)
	}
}

// resolve renders the terminal message, grants rewards, and removes the
// session from the registry. Nothing mutates a session after this.
func (g *Game) resolve(s *Session, outcome Outcome) {
	s.stopTimer()
	s.Phase = PhaseResolved
	s.Outcome = outcome

	if outcome == OutcomeWinner {
		for id := range s.Players {
			game.GrantAsync(g.ledger, id, g.cfg.WinXP, model.RewardShadowWin)
		}
	}

	g.present(s)
	g.registry.Remove(s.ChatID)

	log.Info().
		Int64("chat_id", s.ChatID).
		Int("outcome", int(outcome)).
		Int("rounds", s.Round).
		Int("eliminated", len(s.Eliminated)).
		Msg("Shadow Game resolved")
}

// present pushes the rendered session through the single-message presenter.
// A failed present leaves the previous ref in place; the game carries on and
// recovers on the next successful present.
func (g *Game) present(s *Session) {
	ref, err := g.presenter.Present(s.ChatID, s.Primary, Render(s, g.cfg))
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", s.ChatID).Msg("Failed to present Shadow Game status")
		return
	}
	s.Primary = ref
}

// Bump re-sends the status panel so it becomes the newest message in the
// chat. Used by the game-message interceptor; returns false when no session
// is active.
func (g *Game) Bump(chatID int64) bool {
	g.chats.Lock(chatID)
	defer g.chats.Unlock(chatID)

	s := g.registry.Get(chatID)
	if s == nil {
		return false
	}
	ref, err := g.presenter.Bump(chatID, s.Primary, Render(s, g.cfg))
	if err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("Failed to bump Shadow Game status")
		return true
	}
	s.Primary = ref
	return true
}
