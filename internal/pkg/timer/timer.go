// Package timer provides cancellable one-shot and repeating timers for
// game phase transitions. A session holds at most one live handle; arming a
// replacement must stop the old handle first so two timers never race to
// mutate the same game.
package timer

import (
	"sync"
	"time"
)

// Handle is a cancellable timer. Stop is safe to call multiple times and
// from the timer's own callback.
type Handle struct {
	once sync.Once
	stop chan struct{}
}

// Stop cancels the timer. A callback that has already started is not
// interrupted; callers guard against that by re-validating game state.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
}

// After runs fn once after d unless the handle is stopped first.
func After(d time.Duration, fn func()) *Handle {
	h := &Handle{stop: make(chan struct{})}
	go func() {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			fn()
		case <-h.stop:
		}
	}()
	return h
}

// Every runs fn every interval until the handle is stopped. The first call
// happens one interval after arming.
func Every(interval time.Duration, fn func()) *Handle {
	h := &Handle{stop: make(chan struct{})}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				fn()
			case <-h.stop:
				return
			}
		}
	}()
	return h
}
