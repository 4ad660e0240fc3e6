package channel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender records every call and lets tests fail individual operations.
type fakeSender struct {
	mu      sync.Mutex
	nextID  int
	sendErr error
	editErr error
	delErr  error
	sent    []Message
	edited  []MessageRef
	deleted []MessageRef
}

func newFakeSender() *fakeSender {
	return &fakeSender{nextID: 100}
}

func (f *fakeSender) Send(chatID int64, msg Message) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return MessageRef{}, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, msg)
	return MessageRef{ChatID: chatID, MessageID: f.nextID}, nil
}

func (f *fakeSender) Edit(ref MessageRef, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edited = append(f.edited, ref)
	return nil
}

func (f *fakeSender) Delete(ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func TestPresenter_PresentSendsWhenNoRef(t *testing.T) {
	sender := newFakeSender()
	p := NewPresenter(sender)

	ref, err := p.Present(42, MessageRef{}, Message{Text: "status"})
	require.NoError(t, err)
	assert.False(t, ref.Zero())
	assert.Equal(t, int64(42), ref.ChatID)
	assert.Len(t, sender.sent, 1)
	assert.Empty(t, sender.edited)
}

func TestPresenter_PresentEditsInPlace(t *testing.T) {
	sender := newFakeSender()
	p := NewPresenter(sender)

	first, err := p.Present(42, MessageRef{}, Message{Text: "v1"})
	require.NoError(t, err)

	second, err := p.Present(42, first, Message{Text: "v2"})
	require.NoError(t, err)

	// Same message edited in place, no second send.
	assert.Equal(t, first, second)
	assert.Len(t, sender.sent, 1)
	assert.Len(t, sender.edited, 1)
}

func TestPresenter_PresentFallsBackToSendOnEditFailure(t *testing.T) {
	sender := newFakeSender()
	p := NewPresenter(sender)

	old := MessageRef{ChatID: 42, MessageID: 7}
	sender.editErr = ErrNotFound

	ref, err := p.Present(42, old, Message{Text: "status"})
	require.NoError(t, err)
	assert.NotEqual(t, old, ref)
	assert.Len(t, sender.sent, 1)
}

func TestPresenter_PresentKeepsOldRefWhenEverythingFails(t *testing.T) {
	sender := newFakeSender()
	p := NewPresenter(sender)

	old := MessageRef{ChatID: 42, MessageID: 7}
	sender.editErr = ErrTransport
	sender.sendErr = ErrTransport

	ref, err := p.Present(42, old, Message{Text: "status"})
	assert.Error(t, err)
	// The caller keeps the stale ref and recovers on the next Present.
	assert.Equal(t, old, ref)
}

func TestPresenter_BumpDeletesAndResends(t *testing.T) {
	sender := newFakeSender()
	p := NewPresenter(sender)

	old := MessageRef{ChatID: 42, MessageID: 7}
	ref, err := p.Bump(42, old, Message{Text: "status"})
	require.NoError(t, err)
	assert.NotEqual(t, old, ref)
	assert.Equal(t, []MessageRef{old}, sender.deleted)
	assert.Len(t, sender.sent, 1)
}

func TestPresenter_BumpIgnoresDeleteFailure(t *testing.T) {
	sender := newFakeSender()
	p := NewPresenter(sender)

	sender.delErr = ErrNotFound
	old := MessageRef{ChatID: 42, MessageID: 7}

	ref, err := p.Bump(42, old, Message{Text: "status"})
	require.NoError(t, err)
	assert.False(t, ref.Zero())
	assert.NotEqual(t, old, ref)
}

func TestPresenter_BumpWithoutRefJustSends(t *testing.T) {
	sender := newFakeSender()
	p := NewPresenter(sender)

	ref, err := p.Bump(42, MessageRef{}, Message{Text: "status"})
	require.NoError(t, err)
	assert.False(t, ref.Zero())
	assert.Empty(t, sender.deleted)
}
