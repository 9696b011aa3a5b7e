package sink_test

import (
	"chat-inbox/domain"
	"chat-inbox/mocks"
	"chat-inbox/repositories"
	"chat-inbox/sink"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newSink(store *mocks.MockBlobStore) sink.SnapshotSink {
	logger := logs.GetLoggerFromLevel(slog.LevelError)
	return sink.NewSnapshotSink(
		repositories.NewConversationRepository(store),
		repositories.NewMessageRepository(store),
		repositories.NewUserRepository(store),
		logger,
	)
}

func TestSnapshotSink_Consume(t *testing.T) {
	ctx := context.Background()
	at := time.Now().UTC()
	snapshot := domain.Snapshot{
		Conversations: []domain.Conversation{{ID: "conv1", Participants: []string{"a", "b"}, UpdatedAt: at, Group: domain.GroupOther}},
		Messages:      []domain.Message{{ID: "m1", ConversationID: "conv1", Content: "hi", CreatedAt: at, Status: domain.StatusSent}},
	}

	t.Run("writes both collections in full", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockBlobStore(ctrl)

		store.EXPECT().
			Set(gomock.Any(), repositories.ConversationsKey, repositories.EncodeConversations(snapshot.Conversations)).
			Return(nil).Times(1)
		store.EXPECT().
			Set(gomock.Any(), repositories.MessagesKey, repositories.EncodeMessages(snapshot.Messages)).
			Return(nil).Times(1)

		req.NoError(newSink(store).Consume(ctx, snapshot))
	})

	t.Run("writes users only when present", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockBlobStore(ctrl)
		withUsers := snapshot
		withUsers.Users = []domain.User{{ID: "a", Email: "a@example.com", DisplayName: "A", CreatedAt: at}}

		store.EXPECT().Set(gomock.Any(), repositories.ConversationsKey, gomock.Any()).Return(nil)
		store.EXPECT().Set(gomock.Any(), repositories.MessagesKey, gomock.Any()).Return(nil)
		store.EXPECT().
			Set(gomock.Any(), repositories.UsersKey, repositories.EncodeUsers(withUsers.Users)).
			Return(nil).Times(1)

		req.NoError(newSink(store).Consume(ctx, withUsers))
	})

	t.Run("keeps writing after a failure and reports it", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockBlobStore(ctrl)
		diskFull := fmt.Errorf("disk full")

		store.EXPECT().Set(gomock.Any(), repositories.ConversationsKey, gomock.Any()).Return(diskFull)
		store.EXPECT().Set(gomock.Any(), repositories.MessagesKey, gomock.Any()).Return(nil).Times(1)

		err := newSink(store).Consume(ctx, snapshot)
		req.ErrorIs(err, diskFull)
		req.ErrorContains(err, "save conversations")
	})
}
