package directory

import (
	"chat-inbox/domain"
	"chat-inbox/errors"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) *Directory {
	at := time.Now().UTC()
	users := []domain.User{
		{ID: "currentUser", Email: "me@example.com", DisplayName: "Me", CreatedAt: at},
		{ID: "user1", Email: "john@example.com", DisplayName: "John Doe", CreatedAt: at},
		{ID: "user2", Email: "jane@example.com", DisplayName: "Jane Smith", CreatedAt: at},
		{ID: "user3", Email: "bob@work.org", DisplayName: "Bobby Tables", CreatedAt: at},
	}
	d, err := New(users, logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func ids(users []domain.User) []string {
	return lo.Map(users, func(u domain.User, _ int) string { return u.ID })
}

func TestDirectory_Get(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory(t)

	user, ok := d.Get("user2")
	req.True(ok)
	req.Equal("Jane Smith", user.DisplayName)

	_, ok = d.Get("ghost")
	req.False(ok)
}

func TestDirectory_Readers_Get_Copies(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory(t)
	_, err := d.UpdateProfile("user1", domain.ProfileUpdate{PhotoRef: lo.ToPtr("file://john.png")})
	req.NoError(err)

	// When every reader scribbles over the photo it got back
	got, _ := d.Get("user1")
	*got.PhotoRef = "file://get.png"
	listed := d.List()
	*listed[1].PhotoRef = "file://list.png"
	found, _ := d.FindByEmail("john@example.com")
	*found.PhotoRef = "file://find.png"
	searched, err := d.Search(context.Background(), "john", "")
	req.NoError(err)
	req.Len(searched, 1)
	*searched[0].PhotoRef = "file://search.png"

	// Then the directory still holds the original
	again, _ := d.Get("user1")
	req.Equal("file://john.png", *again.PhotoRef)
}

func TestDirectory_Search(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	t.Run("empty query lists everyone but the excluded user", func(t *testing.T) {
		req := require.New(t)
		users, err := d.Search(ctx, "  ", "currentUser")
		req.NoError(err)
		req.Equal([]string{"user1", "user2", "user3"}, ids(users))
	})

	t.Run("matches display name substrings ignoring case", func(t *testing.T) {
		req := require.New(t)
		users, err := d.Search(ctx, "JA", "currentUser")
		req.NoError(err)
		req.Equal([]string{"user2"}, ids(users))
	})

	t.Run("matches email substrings", func(t *testing.T) {
		req := require.New(t)
		users, err := d.Search(ctx, "work.org", "currentUser")
		req.NoError(err)
		req.Equal([]string{"user3"}, ids(users))
	})

	t.Run("shared substring returns every match in directory order", func(t *testing.T) {
		req := require.New(t)
		users, err := d.Search(ctx, "example.com", "currentUser")
		req.NoError(err)
		req.Equal([]string{"user1", "user2"}, ids(users))
	})

	t.Run("no match", func(t *testing.T) {
		req := require.New(t)
		users, err := d.Search(ctx, "zzz", "")
		req.NoError(err)
		req.Empty(users)
	})
}

func TestDirectory_Register(t *testing.T) {
	t.Run("creates a user named after the email local part", func(t *testing.T) {
		req := require.New(t)
		d := newTestDirectory(t)

		user, err := d.Register("  Alice@Example.com ")
		req.NoError(err)
		req.NotEmpty(user.ID)
		req.Equal("alice@example.com", user.Email)
		req.Equal("alice", user.DisplayName)
		req.False(user.CreatedAt.IsZero())

		found, ok := d.FindByEmail("ALICE@example.com")
		req.True(ok)
		req.Equal(user, found)

		users, err := d.Search(context.Background(), "alice", "")
		req.NoError(err)
		req.Equal([]string{user.ID}, ids(users))
	})

	t.Run("rejects an existing email", func(t *testing.T) {
		req := require.New(t)
		d := newTestDirectory(t)

		_, err := d.Register("jane@example.com")
		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		req := require.New(t)
		d := newTestDirectory(t)

		_, err := d.Register("not-an-email")
		req.ErrorIs(err, errors.ErrInvalidEmail)
		req.Len(d.List(), 4)
	})
}

func TestDirectory_UpdateProfile(t *testing.T) {
	t.Run("renames and sets a photo", func(t *testing.T) {
		req := require.New(t)
		d := newTestDirectory(t)

		user, err := d.UpdateProfile("user1", domain.ProfileUpdate{
			DisplayName: lo.ToPtr("  Johnny  "),
			PhotoRef:    lo.ToPtr("file:///photos/john.jpg"),
		})
		req.NoError(err)
		req.Equal("Johnny", user.DisplayName)
		req.Equal("file:///photos/john.jpg", *user.PhotoRef)

		stored, _ := d.Get("user1")
		req.Equal(user, stored)

		// The index follows the rename
		users, err := d.Search(context.Background(), "johnny", "")
		req.NoError(err)
		req.Equal([]string{"user1"}, ids(users))
	})

	t.Run("clears the photo with a blank reference", func(t *testing.T) {
		req := require.New(t)
		d := newTestDirectory(t)
		_, err := d.UpdateProfile("user1", domain.ProfileUpdate{PhotoRef: lo.ToPtr("x.png")})
		req.NoError(err)

		user, err := d.UpdateProfile("user1", domain.ProfileUpdate{PhotoRef: lo.ToPtr(" ")})
		req.NoError(err)
		req.Nil(user.PhotoRef)
	})

	t.Run("rejects a blank display name", func(t *testing.T) {
		req := require.New(t)
		d := newTestDirectory(t)

		_, err := d.UpdateProfile("user1", domain.ProfileUpdate{DisplayName: lo.ToPtr("   ")})
		req.ErrorIs(err, errors.ErrInvalidProfile)

		user, _ := d.Get("user1")
		req.Equal("John Doe", user.DisplayName)
	})

	t.Run("unknown user", func(t *testing.T) {
		req := require.New(t)
		d := newTestDirectory(t)

		_, err := d.UpdateProfile("ghost", domain.ProfileUpdate{})
		req.ErrorIs(err, errors.ErrNotFound)
	})
}

func TestUser_Initials(t *testing.T) {
	req := require.New(t)
	req.Equal("JO", domain.User{DisplayName: "john"}.Initials())
	req.Equal("M", domain.User{DisplayName: "m"}.Initials())
}
