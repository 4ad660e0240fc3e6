// Package game holds what the mini-games share: the per-chat session
// registry and the error taxonomy surfaced to players.
package game

import "errors"

// Errors common to all mini-games. Handlers translate these into reply text;
// none of them leaves game state modified.
var (
	// ErrAlreadyActive is returned when starting a game while one is
	// already running in the chat.
	ErrAlreadyActive = errors.New("a game is already active in this chat")
	// ErrNoActiveGame is returned when acting on a chat with no game.
	ErrNoActiveGame = errors.New("no active game in this chat")
	// ErrNotInPhase is returned for actions invalid in the current phase,
	// e.g. joining after the joining window closed.
	ErrNotInPhase = errors.New("action not valid in the current phase")
	// ErrNotAuthorized is returned when the actor lacks the required role,
	// e.g. a non-starter picking the join duration.
	ErrNotAuthorized = errors.New("not authorized for this action")
	// ErrAlreadyJoined is returned on a repeated join; the roster is
	// unchanged.
	ErrAlreadyJoined = errors.New("already joined this game")
	// ErrInvalidTarget is returned when a tag names someone who is not a
	// current player. Note the Shadow Game eliminates the tagger for it.
	ErrInvalidTarget = errors.New("target is not a player in this game")
	// ErrSelfTarget is returned when a player tags themselves.
	ErrSelfTarget = errors.New("cannot tag yourself")
)
