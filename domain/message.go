// Package domain contains core concepts of the messaging inbox.
// This file defines Message records and their read-state rules.
package domain

import "time"

type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// Message is a single chat line inside a conversation.
// SenderName and RecipientName are snapshots taken at send time and are never
// rewritten when a profile is renamed later.
type Message struct {
	ID             string
	ConversationID string
	Content        string
	SenderID       string
	SenderName     string
	RecipientID    string
	RecipientName  string
	CreatedAt      time.Time
	Read           bool
	Status         MessageStatus
}

// MarkRead flips the message to read. It reports false when it already was.
func (m *Message) MarkRead() bool {
	if m.Read {
		return false
	}
	m.Read = true
	m.Status = StatusRead
	return true
}
