package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAfter_Fires(t *testing.T) {
	var fired atomic.Bool
	After(10*time.Millisecond, func() { fired.Store(true) })

	assert.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
}

func TestAfter_StopPreventsFire(t *testing.T) {
	var fired atomic.Bool
	h := After(50*time.Millisecond, func() { fired.Store(true) })
	h.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestEvery_TicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	h := Every(10*time.Millisecond, func() { ticks.Add(1) })

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)

	h.Stop()
	after := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	// At most one in-flight tick may land after Stop.
	assert.LessOrEqual(t, ticks.Load(), after+1)
}

func TestStop_Idempotent(t *testing.T) {
	h := After(time.Hour, func() {})
	h.Stop()
	h.Stop()
	h.Stop()
}

func TestStop_NilHandle(t *testing.T) {
	var h *Handle
	h.Stop()
}

func TestStop_FromOwnCallback(t *testing.T) {
	handleCh := make(chan *Handle, 1)
	done := make(chan struct{})
	var once atomic.Bool

	h := Every(5*time.Millisecond, func() {
		inner := <-handleCh
		inner.Stop()
		handleCh <- inner
		if once.CompareAndSwap(false, true) {
			close(done)
		}
	})
	handleCh <- h

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}
}
