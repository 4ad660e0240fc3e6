package channel

import (
	"github.com/rs/zerolog/log"
)

// Presenter enforces the single-message display invariant: one authoritative,
// continuously edited status message per game. Content updates edit the
// tracked message in place; if the edit fails (message deleted by a user,
// too old, transport error) a fresh message is sent and tracked instead, so
// duplicate status messages never accumulate.
type Presenter struct {
	sender Sender
}

// NewPresenter creates a Presenter over the given sender.
func NewPresenter(sender Sender) *Presenter {
	return &Presenter{sender: sender}
}

// Present updates the tracked message with msg and returns the ref that now
// carries the content. When both the edit and the fallback send fail, the old
// ref is returned together with the error; the caller keeps the stale ref and
// recovers on the next successful Present.
func (p *Presenter) Present(chatID int64, ref MessageRef, msg Message) (MessageRef, error) {
	if !ref.Zero() {
		err := p.sender.Edit(ref, msg)
		if err == nil {
			return ref, nil
		}
		log.Debug().
			Err(err).
			Int64("chat_id", chatID).
			Int("message_id", ref.MessageID).
			Msg("Edit failed, sending replacement status message")
	}

	sent, err := p.sender.Send(chatID, msg)
	if err != nil {
		return ref, err
	}
	return sent, nil
}

// Bump deletes the tracked message and re-sends its content so the status
// message becomes the newest message in the conversation. Deletion failures
// are ignored; the send decides the new ref.
func (p *Presenter) Bump(chatID int64, ref MessageRef, msg Message) (MessageRef, error) {
	if !ref.Zero() {
		if err := p.sender.Delete(ref); err != nil {
			log.Debug().
				Err(err).
				Int64("chat_id", chatID).
				Int("message_id", ref.MessageID).
				Msg("Could not delete old status message before bump")
		}
	}

	sent, err := p.sender.Send(chatID, msg)
	if err != nil {
		return ref, err
	}
	return sent, nil
}

// Sender exposes the underlying sender for one-off messages that are not
// subject to the single-message invariant (e.g. rules text).
func (p *Presenter) Sender() Sender {
	return p.sender
}
