// Package channel abstracts the messaging platform: sending, editing and
// deleting chat messages, plus the single-message presenter built on top.
// The game core only ever talks to a Sender, never to the bot API directly.
package channel

import (
	"errors"

	tele "gopkg.in/telebot.v3"
)

// Sender-related errors.
var (
	// ErrNotFound is returned when the target message no longer exists
	// (deleted by a user, or too old to edit).
	ErrNotFound = errors.New("message not found")
	// ErrTransport is returned for any other delivery failure.
	ErrTransport = errors.New("transport error")
)

// MessageRef identifies a single message in a chat.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Zero reports whether the ref has never been assigned.
func (r MessageRef) Zero() bool {
	return r.MessageID == 0
}

// Message is outbound content: display text plus optional inline controls.
type Message struct {
	Text   string
	Markup *tele.ReplyMarkup
	HTML   bool
}

// Sender delivers messages to a chat. Implementations must map platform
// "message to edit not found" failures to ErrNotFound so the presenter can
// fall back to sending a fresh message.
type Sender interface {
	Send(chatID int64, msg Message) (MessageRef, error)
	Edit(ref MessageRef, msg Message) error
	Delete(ref MessageRef) error
}
