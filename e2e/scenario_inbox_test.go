package e2e

import (
	"chat-inbox/domain"
	"chat-inbox/repositories"
	"chat-inbox/seed"
	"chat-inbox/session"
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testInboxSuite struct {
	BaseSessionSuite
}

func TestInboxSuite(t *testing.T) {
	suite.Run(t, &testInboxSuite{})
}

func (s *testInboxSuite) TestInboxSurvivesRestarts() {
	var sentID, groupID string

	// --- STEP 0: FIRST START ---
	s.Run("Step 0: First start seeds the demo inbox", func() {
		s.WithSession("Seeding", true, func(ctx context.Context, sess *session.Session) {
			s.Require().Len(sess.Conversations(), seed.DemoUserCount)
			me, ok := sess.CurrentUser()
			s.Require().True(ok)
			s.Require().Equal(seed.CurrentUserID, me.ID)
		})
		users, err := repositories.DecodeUsers(s.Stored(repositories.UsersKey))
		s.Require().NoError(err)
		s.Require().Len(users, seed.DemoUserCount+1)
	})

	// --- STEP 1: CONVERSATION ---
	s.Run("Step 1: Exchange messages and open a group", func() {
		s.WithSession("Messaging", true, func(ctx context.Context, sess *session.Session) {
			message, err := sess.Send(ctx, "conv5", "are we still on for friday?", seed.CurrentUserID)
			s.Require().NoError(err)
			sentID = message.ID
			_, err = sess.Send(ctx, "conv5", "yes!", "user5")
			s.Require().NoError(err)

			groupID, err = sess.CreateConversation(ctx, domain.CreateConversationCommand{
				ParticipantIDs: []string{"user1", "user2"},
				IsGroup:        true,
				Name:           lo.ToPtr("Book club"),
				Group:          domain.GroupFriends,
			})
			s.Require().NoError(err)
			ids := lo.Map(sess.Conversations(), func(c domain.Conversation, _ int) string { return c.ID })
			s.Require().Equal([]string{groupID, "conv5"}, ids[:2])
		})
	})

	// --- STEP 2: RESTART ---
	s.Run("Step 2: A restart keeps history, previews and unread counts", func() {
		s.WithSession("Reloading", true, func(ctx context.Context, sess *session.Session) {
			s.Require().Len(sess.Conversations(), seed.DemoUserCount+1)
			conversation, ok := sess.Conversation("conv5")
			s.Require().True(ok)
			s.Require().Equal(1, conversation.UnreadCount)
			s.Require().Equal("yes!", conversation.LastMessage.Content)

			history := sess.MessagesFor("conv5")
			s.Require().Len(history, 2)
			s.Require().Equal(sentID, history[0].ID)

			group, ok := sess.Conversation(groupID)
			s.Require().True(ok)
			s.Require().ElementsMatch([]string{"user1", "user2", seed.CurrentUserID}, group.Participants)

			s.Require().True(sess.SetCurrentConversation(ctx, "conv5"))
			s.Require().True(sess.DeleteConversation(ctx, groupID))
		})
	})

	// --- STEP 3: RESTART AGAIN ---
	s.Run("Step 3: Reads and deletes are persisted too", func() {
		s.WithSession("Verifying", true, func(ctx context.Context, sess *session.Session) {
			conversation, _ := sess.Conversation("conv5")
			s.Require().Zero(conversation.UnreadCount)
			s.Require().True(lo.EveryBy(sess.MessagesFor("conv5"), func(m domain.Message) bool { return m.Read }))
			_, ok := sess.Conversation(groupID)
			s.Require().False(ok)
		})
		messages, err := repositories.DecodeMessages(s.Stored(repositories.MessagesKey))
		s.Require().NoError(err)
		s.Require().Len(messages, 2)
	})
}
