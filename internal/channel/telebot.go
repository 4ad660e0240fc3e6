package channel

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"
)

// TelebotSender implements Sender on top of a telebot instance.
type TelebotSender struct {
	bot *tele.Bot
}

// NewTelebotSender creates a Sender backed by the given bot.
func NewTelebotSender(bot *tele.Bot) *TelebotSender {
	return &TelebotSender{bot: bot}
}

func sendOptions(msg Message) []interface{} {
	opts := make([]interface{}, 0, 2)
	if msg.Markup != nil {
		opts = append(opts, msg.Markup)
	}
	if msg.HTML {
		opts = append(opts, tele.ModeHTML)
	}
	return opts
}

// Send delivers a new message to the chat.
func (s *TelebotSender) Send(chatID int64, msg Message) (MessageRef, error) {
	sent, err := s.bot.Send(&tele.Chat{ID: chatID}, msg.Text, sendOptions(msg)...)
	if err != nil {
		return MessageRef{}, classify(err)
	}
	return MessageRef{ChatID: chatID, MessageID: sent.ID}, nil
}

// Edit replaces the text and controls of an existing message in place.
func (s *TelebotSender) Edit(ref MessageRef, msg Message) error {
	stored := tele.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	}
	_, err := s.bot.Edit(stored, msg.Text, sendOptions(msg)...)
	if err != nil {
		// Editing to identical content is a no-op, not a failure.
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return classify(err)
	}
	return nil
}

// Delete removes a message from the chat.
func (s *TelebotSender) Delete(ref MessageRef) error {
	stored := tele.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	}
	if err := s.bot.Delete(stored); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps Telegram API failures onto the package error taxonomy while
// preserving the underlying message.
func classify(err error) error {
	text := err.Error()
	if strings.Contains(text, "not found") || strings.Contains(text, "can't be edited") {
		return fmt.Errorf("%w: %s", ErrNotFound, text)
	}
	return fmt.Errorf("%w: %s", ErrTransport, text)
}
