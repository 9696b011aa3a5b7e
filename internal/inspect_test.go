package internal

import (
	"chat-inbox/domain"
	"chat-inbox/repositories"
	"chat-inbox/storage"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestCollect_Decodes_Blobs(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := storage.NewMemoryStore()
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	req.NoError(repositories.NewMessageRepository(store).SaveMessages(ctx, []domain.Message{{
		ID: "m1", ConversationID: "conv1", Content: "hi", SenderName: "Alice", RecipientName: "Bob",
		CreatedAt: at, Status: domain.StatusSent,
	}}))
	req.NoError(store.Set(ctx, repositories.ConversationsKey, []byte{0xff}))

	// When
	rows, err := Collect(ctx, store, repositories.Keys, BlobMapper)

	// Then
	req.NoError(err)
	req.Len(rows, 4)
	byKey := make(map[string]InspectRow)
	for _, row := range rows {
		byKey[row.Key] = row
	}
	req.Equal("CORRUPT", byKey[repositories.ConversationsKey].Type)
	req.Equal("MESSAGE", byKey[repositories.MessagesKey].Type)
	req.Equal("09:30:00", byKey[repositories.MessagesKey].Timestamp)
	req.Equal("Alice -> Bob [sent]: hi", byKey[repositories.MessagesKey].Detail)
	req.Equal("MISSING", byKey[repositories.UsersKey].Type)
	req.Equal("MISSING", byKey[repositories.CurrentUserKey].Type)
}

func TestInspectHandler_Renders_Rows(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := storage.NewMemoryStore()
	req.NoError(repositories.NewUserRepository(store).SaveCurrentUser(ctx, &domain.User{
		ID: "currentUser", Email: "me@example.com", DisplayName: "Me",
	}))

	rec := httptest.NewRecorder()
	NewInspectHandler(store, []string{repositories.CurrentUserKey}, BlobMapper).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect", nil))

	req.Equal(http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	req.NoError(err)
	req.Contains(string(body), "CURRENT_USER")
	req.Contains(string(body), "Me &lt;me@example.com&gt;")
}

func TestOpenStore(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	memory, release, err := OpenStore(Config{}, log)
	req.NoError(err)
	req.IsType(&storage.MemoryStore{}, memory)
	release()

	badgerStore, release, err := OpenStore(Config{BadgerFilepath: t.TempDir()}, log)
	req.NoError(err)
	req.IsType(&storage.BadgerStore{}, badgerStore)
	release()
}
