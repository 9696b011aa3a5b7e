package domain

import (
	"strings"
	"time"
)

type Group string

const (
	GroupFriends Group = "Friends"
	GroupFamily  Group = "Family"
	GroupWork    Group = "Work"
	GroupSchool  Group = "School"
	GroupHome    Group = "Home"
	GroupOther   Group = "Other"
)

// Groups lists the inbox labels in display order.
var Groups = []Group{GroupFriends, GroupFamily, GroupWork, GroupSchool, GroupHome, GroupOther}

// ParseGroup maps a label to a known Group, case-insensitively.
// Empty or unknown labels fall back to GroupOther.
func ParseGroup(label string) Group {
	for _, g := range Groups {
		if strings.EqualFold(string(g), strings.TrimSpace(label)) {
			return g
		}
	}
	return GroupOther
}

// LastMessage is the preview kept on a conversation for the inbox.
type LastMessage struct {
	Content   string
	Timestamp time.Time
	SenderID  string
}

// Conversation is a thread between two or more participants.
type Conversation struct {
	ID           string
	Participants []string
	IsGroup      bool
	Name         *string
	LastMessage  *LastMessage
	UnreadCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Group        Group
}

// Clone returns a deep copy so callers never alias registry state.
func (c Conversation) Clone() Conversation {
	out := c
	out.Participants = append([]string(nil), c.Participants...)
	if c.Name != nil {
		name := *c.Name
		out.Name = &name
	}
	if c.LastMessage != nil {
		lm := *c.LastMessage
		out.LastMessage = &lm
	}
	return out
}

// Touch moves UpdatedAt forward to now, never backwards.
func (c *Conversation) Touch(now time.Time) {
	if now.After(c.UpdatedAt) {
		c.UpdatedAt = now
	}
}
