// Package domain contains core concepts of the messaging inbox.
// This file defines User profiles as held by the identity directory.
package domain

import (
	"strings"
	"time"
)

// User is a profile known to the identity directory.
// Only DisplayName and PhotoRef change after creation, through an explicit profile update.
type User struct {
	ID          string
	Email       string
	DisplayName string
	PhotoRef    *string
	CreatedAt   time.Time
}

// Clone returns a copy that shares no pointers with u.
func (u User) Clone() User {
	out := u
	if u.PhotoRef != nil {
		ref := *u.PhotoRef
		out.PhotoRef = &ref
	}
	return out
}

// Initials returns up to two upper-cased leading characters of the display name,
// used as an avatar fallback when PhotoRef is empty.
func (u User) Initials() string {
	r := []rune(u.DisplayName)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}
