package game

import "sync"

// Registry tracks at most one live session per chat for one game type.
// Each game owns its own Registry, so running a Shadow Game and a Cult Clash
// in the same chat is allowed, but never two of the same kind.
//
// The registry only guards the map; sequencing of mutations inside a session
// is the chat lock's job.
type Registry[S any] struct {
	mu       sync.Mutex
	sessions map[int64]*S
}

// NewRegistry creates an empty Registry.
func NewRegistry[S any]() *Registry[S] {
	return &Registry[S]{sessions: make(map[int64]*S)}
}

// Create stores the session built by the factory under chatID.
// Returns ErrAlreadyActive, and does not call the factory, if a session
// already exists for the chat.
func (r *Registry[S]) Create(chatID int64, factory func() *S) (*S, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[chatID]; exists {
		return nil, ErrAlreadyActive
	}
	s := factory()
	r.sessions[chatID] = s
	return s, nil
}

// Get returns the live session for the chat, or nil if there is none.
// Timer callbacks use this to re-fetch state instead of trusting closures:
// a nil result means the game resolved while the timer was pending.
func (r *Registry[S]) Get(chatID int64) *S {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[chatID]
}

// Remove drops the chat's session. Removing an absent chat is a no-op.
func (r *Registry[S]) Remove(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chatID)
}

// Len returns the number of live sessions.
func (r *Registry[S]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
