// Package lock provides per-chat locking so that every mutation of a chat's
// game state - user actions and timer callbacks alike - is applied in sequence.
package lock

import "sync"

// ChatLock provides per-chat mutual exclusion. Actions against different
// chats never contend with each other.
type ChatLock struct {
	locks sync.Map // map[int64]*sync.Mutex
}

// NewChatLock creates a new ChatLock instance.
func NewChatLock() *ChatLock {
	return &ChatLock{}
}

// getLock retrieves or creates a mutex for the given chat ID.
func (cl *ChatLock) getLock(chatID int64) *sync.Mutex {
	if v, ok := cl.locks.Load(chatID); ok {
		return v.(*sync.Mutex)
	}
	v, _ := cl.locks.LoadOrStore(chatID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Lock acquires the lock for a chat.
func (cl *ChatLock) Lock(chatID int64) {
	cl.getLock(chatID).Lock()
}

// Unlock releases the lock for a chat.
func (cl *ChatLock) Unlock(chatID int64) {
	if v, ok := cl.locks.Load(chatID); ok {
		v.(*sync.Mutex).Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false otherwise.
func (cl *ChatLock) TryLock(chatID int64) bool {
	return cl.getLock(chatID).TryLock()
}

// WithLock executes a function while holding the chat's lock.
func (cl *ChatLock) WithLock(chatID int64, fn func() error) error {
	cl.Lock(chatID)
	defer cl.Unlock(chatID)
	return fn()
}
