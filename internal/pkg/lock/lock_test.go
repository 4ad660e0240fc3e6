package lock

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatLock_SequencesSameChat(t *testing.T) {
	cl := NewChatLock()

	const goroutines = 50
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cl.Lock(1)
			counter++
			cl.Unlock(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestChatLock_ChatsAreIndependent(t *testing.T) {
	cl := NewChatLock()

	cl.Lock(1)
	// Holding chat 1 must not block chat 2.
	assert.True(t, cl.TryLock(2))
	cl.Unlock(2)
	cl.Unlock(1)
}

func TestChatLock_TryLock(t *testing.T) {
	cl := NewChatLock()

	assert.True(t, cl.TryLock(1))
	assert.False(t, cl.TryLock(1))
	cl.Unlock(1)
	assert.True(t, cl.TryLock(1))
	cl.Unlock(1)
}

func TestChatLock_WithLock(t *testing.T) {
	cl := NewChatLock()

	ran := false
	err := cl.WithLock(1, func() error {
		ran = true
		assert.False(t, cl.TryLock(1))
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, ran)

	// Lock is released afterwards, and errors pass through.
	sentinel := errors.New("boom")
	assert.ErrorIs(t, cl.WithLock(1, func() error { return sentinel }), sentinel)
	assert.True(t, cl.TryLock(1))
	cl.Unlock(1)
}
