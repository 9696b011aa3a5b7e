// Package seed builds the deterministic demo data the inbox starts with when
// the store holds nothing yet.
package seed

import (
	"chat-inbox/domain"
	"fmt"
	"time"
)

const (
	CurrentUserID = "currentUser"
	DemoUserCount = 23
)

var demoLines = []string{
	"Hey, how's it going?",
	"What's up?",
	"Long time no see!",
	"Hope you're doing well!",
	"How was your day?",
	"Let's catch up soon!",
	"Did you see the news?",
	"Happy Friday!",
	"Any plans for the weekend?",
	"Miss you!",
	"How's work?",
	"How's the family?",
	"Let's grab coffee!",
	"Are you free this week?",
	"Just checking in!",
	"Hope everything's good!",
	"How's school going?",
	"Let's hang out!",
	"Good morning!",
	"Good night!",
}

// DemoLine returns the canned message text for the i-th demo conversation (1-based).
func DemoLine(i int) string {
	return demoLines[(i-1)%len(demoLines)]
}

// DemoGroup returns the inbox label of the i-th demo conversation (1-based).
func DemoGroup(i int) domain.Group {
	return domain.Groups[(i-1)%len(domain.Groups)]
}

// CurrentUser is the profile the demo signs in with.
func CurrentUser(now time.Time) domain.User {
	return domain.User{
		ID:          CurrentUserID,
		Email:       "me@example.com",
		DisplayName: "Me",
		CreatedAt:   now,
	}
}

// Users returns the current user followed by user1..user23.
func Users(now time.Time) []domain.User {
	users := []domain.User{CurrentUser(now)}
	for i := 1; i <= DemoUserCount; i++ {
		users = append(users, domain.User{
			ID:          fmt.Sprintf("user%d", i),
			Email:       fmt.Sprintf("user%d@example.com", i),
			DisplayName: fmt.Sprintf("User %d", i),
			CreatedAt:   now,
		})
	}
	return users
}

// Conversations returns conv1..conv23, one per demo user, each last touched i
// hours before now and previewing a message from that user. No messages back them.
func Conversations(now time.Time) []domain.Conversation {
	conversations := make([]domain.Conversation, 0, DemoUserCount)
	for i := 1; i <= DemoUserCount; i++ {
		userID := fmt.Sprintf("user%d", i)
		at := now.Add(-time.Duration(i) * time.Hour)
		conversations = append(conversations, domain.Conversation{
			ID:           fmt.Sprintf("conv%d", i),
			Participants: []string{CurrentUserID, userID},
			LastMessage: &domain.LastMessage{
				Content:   DemoLine(i),
				Timestamp: at,
				SenderID:  userID,
			},
			UnreadCount: 0,
			CreatedAt:   at,
			UpdatedAt:   at,
			Group:       DemoGroup(i),
		})
	}
	return conversations
}
