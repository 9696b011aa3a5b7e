// Package domain contains core concepts of the messaging inbox.
// This file defines participant lookups over a conversation.
// No storage or presentation logic should be added here.
package domain

import "github.com/samber/lo"

// HasParticipant reports whether userID takes part in the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	return lo.Contains(c.Participants, userID)
}

// Counterpart returns the first participant that is not userID.
func (c Conversation) Counterpart(userID string) (string, bool) {
	return lo.Find(c.Participants, func(id string) bool {
		return id != userID
	})
}

// IsPairOf reports whether c is the non-group conversation between a and b.
func (c Conversation) IsPairOf(a, b string) bool {
	return !c.IsGroup &&
		len(c.Participants) == 2 &&
		c.HasParticipant(a) &&
		c.HasParticipant(b)
}
