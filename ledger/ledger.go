// Package ledger holds the authoritative in-memory collection of messages.
//
// Messages are stored most recent first. Every read returns copies, so callers
// can never alter the ledger behind its back. A Ledger is not safe for
// concurrent use; its owner serializes access.
package ledger

import (
	"chat-inbox/domain"
	"slices"
	"time"

	"github.com/samber/lo"
)

type Ledger struct {
	messages []domain.Message
	now      func() time.Time
}

func New() *Ledger {
	return &Ledger{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source used by Edit. Meant for tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Append inserts message at the head of the ledger and returns it.
func (l *Ledger) Append(message domain.Message) domain.Message {
	l.messages = append([]domain.Message{message}, l.messages...)
	return message
}

func (l *Ledger) Get(id string) (domain.Message, bool) {
	return lo.Find(l.messages, func(m domain.Message) bool {
		return m.ID == id
	})
}

func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.messages, func(m domain.Message) bool {
		return m.ID == id
	})
}

// Edit replaces the content of a message and refreshes its CreatedAt.
// An unknown id is ignored and reported as false.
func (l *Ledger) Edit(id, content string) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.messages[i].Content = content
	l.messages[i].CreatedAt = l.now()
	return true
}

// Remove deletes a message. An unknown id is ignored and reported as false.
func (l *Ledger) Remove(id string) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.messages = slices.Delete(l.messages, i, i+1)
	return true
}

// MarkRead flags one message as read. It reports false when the id is unknown
// or the message was already read.
func (l *Ledger) MarkRead(id string) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	return l.messages[i].MarkRead()
}

// MarkAllReadForConversation marks every unread message of a conversation as
// read and returns how many changed.
func (l *Ledger) MarkAllReadForConversation(conversationID string) int {
	changed := 0
	for i := range l.messages {
		if l.messages[i].ConversationID == conversationID && l.messages[i].MarkRead() {
			changed++
		}
	}
	return changed
}

// RemoveForConversation drops every message of a conversation and returns how many went.
func (l *Ledger) RemoveForConversation(conversationID string) int {
	before := len(l.messages)
	l.messages = slices.DeleteFunc(l.messages, func(m domain.Message) bool {
		return m.ConversationID == conversationID
	})
	return before - len(l.messages)
}

// ListForConversation returns a fresh slice of the conversation's messages in
// storage order. Use Chronological for display order.
func (l *Ledger) ListForConversation(conversationID string) []domain.Message {
	return lo.Filter(l.messages, func(m domain.Message, _ int) bool {
		return m.ConversationID == conversationID
	})
}

// List returns every message in storage order.
func (l *Ledger) List() []domain.Message {
	return slices.Clone(l.messages)
}

// Snapshot returns the collection as it should be persisted.
func (l *Ledger) Snapshot() []domain.Message {
	return l.List()
}

// Restore replaces the collection, keeping the given order.
func (l *Ledger) Restore(messages []domain.Message) {
	l.messages = slices.Clone(messages)
}

// Chronological returns msgs sorted by CreatedAt, oldest first. msgs is expected
// in storage order; ties come out in send order.
func Chronological(msgs []domain.Message) []domain.Message {
	out := slices.Clone(msgs)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b domain.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}
