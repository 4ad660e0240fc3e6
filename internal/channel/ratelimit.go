package channel

import (
	"sync"
	"time"
)

// RateLimitedSender is a token-bucket decorator over a Sender. Telegram
// throttles bots that send too fast in a group; every outbound call blocks
// until a token is available. The game core never retries on its own - this
// layer absorbs the pacing concern.
type RateLimitedSender struct {
	inner Sender

	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimitedSender wraps inner with a token bucket of the given rate
// and burst size. Non-positive values fall back to sane defaults.
func NewRateLimitedSender(inner Sender, perSecond, burst int) *RateLimitedSender {
	if perSecond <= 0 {
		perSecond = 20
	}
	if burst <= 0 {
		burst = 5
	}
	return &RateLimitedSender{
		inner:      inner,
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: float64(perSecond),
		lastRefill: time.Now(),
	}
}

// take blocks until a token is available.
func (s *RateLimitedSender) take() {
	for {
		s.mu.Lock()
		now := time.Now()
		s.tokens += now.Sub(s.lastRefill).Seconds() * s.refillRate
		if s.tokens > s.maxTokens {
			s.tokens = s.maxTokens
		}
		s.lastRefill = now

		if s.tokens >= 1 {
			s.tokens--
			s.mu.Unlock()
			return
		}
		wait := time.Duration((1 - s.tokens) / s.refillRate * float64(time.Second))
		s.mu.Unlock()
		time.Sleep(wait)
	}
}

// Send delivers a new message, pacing against the bucket.
func (s *RateLimitedSender) Send(chatID int64, msg Message) (MessageRef, error) {
	s.take()
	return s.inner.Send(chatID, msg)
}

// Edit edits a message, pacing against the bucket.
func (s *RateLimitedSender) Edit(ref MessageRef, msg Message) error {
	s.take()
	return s.inner.Edit(ref, msg)
}

// Delete removes a message, pacing against the bucket.
func (s *RateLimitedSender) Delete(ref MessageRef) error {
	s.take()
	return s.inner.Delete(ref)
}
