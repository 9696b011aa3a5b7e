package repositories

import (
	"chat-inbox/domain"
	"chat-inbox/errors"
	"chat-inbox/storage"
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func newBadgerStore(t *testing.T) storage.BlobStore {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return storage.NewBadgerStore(db)
}

func sampleConversations(at time.Time) []domain.Conversation {
	return []domain.Conversation{
		{
			ID:           "conv2",
			Participants: []string{"alice", "bob", "clara"},
			IsGroup:      true,
			Name:         lo.ToPtr("Hiking"),
			UnreadCount:  3,
			CreatedAt:    at.Add(-time.Hour),
			UpdatedAt:    at,
			Group:        domain.GroupFriends,
		},
		{
			ID:           "conv1",
			Participants: []string{"alice", "bob"},
			LastMessage: &domain.LastMessage{
				Content:   "see you tomorrow",
				Timestamp: at.Add(-2 * time.Minute),
				SenderID:  "bob",
			},
			CreatedAt: at.Add(-48 * time.Hour),
			UpdatedAt: at.Add(-2 * time.Minute),
			Group:     domain.GroupOther,
		},
	}
}

func sampleMessages(at time.Time) []domain.Message {
	return []domain.Message{
		{
			ID:             "m2",
			ConversationID: "conv1",
			Content:        "see you tomorrow",
			SenderID:       "bob",
			SenderName:     "Bob",
			RecipientID:    "alice",
			RecipientName:  "Alice",
			CreatedAt:      at.Add(-2 * time.Minute),
			Status:         domain.StatusSent,
		},
		{
			ID:             "m1",
			ConversationID: "conv1",
			Content:        "lunch?",
			SenderID:       "alice",
			SenderName:     "Alice",
			RecipientID:    "bob",
			RecipientName:  "Bob",
			CreatedAt:      at.Add(-5 * time.Minute),
			Read:           true,
			Status:         domain.StatusRead,
		},
	}
}

func Test_Conversations_And_Messages_Round_Trip(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newBadgerStore(t)
	at := time.Now().UTC()

	conversations := sampleConversations(at)
	messages := sampleMessages(at)

	// Given both collections are saved
	req.NoError(NewConversationRepository(store).SaveConversations(ctx, conversations))
	req.NoError(NewMessageRepository(store).SaveMessages(ctx, messages))

	// When they are loaded again
	gotConversations, ok, err := NewConversationRepository(store).LoadConversations(ctx)
	req.NoError(err)
	req.True(ok)
	gotMessages, ok, err := NewMessageRepository(store).LoadMessages(ctx)
	req.NoError(err)
	req.True(ok)

	// Then values and order are identical, timestamps included
	req.Equal(conversations, gotConversations)
	req.Equal(messages, gotMessages)
	req.True(gotConversations[1].LastMessage.Timestamp.Equal(at.Add(-2 * time.Minute)))
}

func Test_Load_Reports_Missing_Blob(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := storage.NewMemoryStore()

	conversations, ok, err := NewConversationRepository(store).LoadConversations(ctx)
	req.NoError(err)
	req.False(ok)
	req.Empty(conversations)

	messages, ok, err := NewMessageRepository(store).LoadMessages(ctx)
	req.NoError(err)
	req.False(ok)
	req.Empty(messages)
}

func Test_Empty_Collection_Is_Distinct_From_Missing(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newBadgerStore(t)
	repository := NewConversationRepository(store)

	req.NoError(repository.SaveConversations(ctx, nil))

	conversations, ok, err := repository.LoadConversations(ctx)
	req.NoError(err)
	req.True(ok)
	req.Empty(conversations)
}

func Test_Current_User_Save_Load_And_Sign_Out(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewUserRepository(storage.NewMemoryStore())
	user := domain.User{
		ID:          "currentUser",
		Email:       "me@example.com",
		DisplayName: "Me",
		PhotoRef:    lo.ToPtr(""),
		CreatedAt:   time.Now().UTC(),
	}

	// Given nobody signed in
	current, err := repository.LoadCurrentUser(ctx)
	req.NoError(err)
	req.Nil(current)

	// When the user signs in
	req.NoError(repository.SaveCurrentUser(ctx, &user))
	current, err = repository.LoadCurrentUser(ctx)
	req.NoError(err)
	req.Equal(&user, current)

	// Then signing out removes the blob
	req.NoError(repository.SaveCurrentUser(ctx, nil))
	current, err = repository.LoadCurrentUser(ctx)
	req.NoError(err)
	req.Nil(current)
}

func Test_Users_Round_Trip(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewUserRepository(newBadgerStore(t))
	at := time.Now().UTC()
	users := []domain.User{
		{ID: "user1", Email: "user1@example.com", DisplayName: "User 1", CreatedAt: at},
		{ID: "user2", Email: "user2@example.com", DisplayName: "User 2", PhotoRef: lo.ToPtr("file:///avatar.png"), CreatedAt: at},
	}

	req.NoError(repository.SaveUsers(ctx, users))
	got, ok, err := repository.LoadUsers(ctx)
	req.NoError(err)
	req.True(ok)
	req.Equal(users, got)
}

func Test_Decode_Rejects_Truncated_Blob(t *testing.T) {
	req := require.New(t)
	blob := EncodeMessages(sampleMessages(time.Now().UTC()))

	_, err := DecodeMessages(blob[:len(blob)-3])
	req.ErrorIs(err, errors.ErrCorruptBlob)
}

func Test_Decode_Skips_Unknown_Fields(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	record := fromMessage(sampleMessages(at)[0])
	record = protowire.AppendTag(record, 99, protowire.Fixed64Type)
	record = protowire.AppendFixed64(record, 42)
	record = protowire.AppendTag(record, 98, protowire.BytesType)
	record = protowire.AppendString(record, "future field")

	messages, err := DecodeMessages(encodeList([][]byte{record}))
	req.NoError(err)
	req.Equal(sampleMessages(at)[:1], messages)
}

func Test_Decode_Read_Message_Forces_Read_Status(t *testing.T) {
	req := require.New(t)
	message := sampleMessages(time.Now().UTC())[0]
	message.Read = true
	message.Status = domain.StatusDelivered

	messages, err := DecodeMessages(EncodeMessages([]domain.Message{message}))
	req.NoError(err)
	req.Equal(domain.StatusRead, messages[0].Status)
}
