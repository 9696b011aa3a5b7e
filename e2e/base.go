package e2e

import (
	"chat-inbox/internal"
	"chat-inbox/session"
	"chat-inbox/storage"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// BaseSessionSuite runs sessions against a real Badger directory that
// survives between steps, the way the inbox command uses it.
type BaseSessionSuite struct {
	suite.Suite
	Config Config
	dir    string
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSessionSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.dir = s.Config.BadgerDir
	if s.dir == "" {
		s.dir = s.T().TempDir()
	}
}

// WithSession opens the database, starts a session on it and closes both once
// fn returns, so every step starts from what the previous one persisted.
func (s *BaseSessionSuite) WithSession(name string, seedDemo bool, fn func(ctx context.Context, session *session.Session)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	db, err := storage.OpenBadger(s.dir)
	s.Require().NoError(err)
	defer db.Close()
	store := storage.NewBadgerStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	start := time.Now()
	sess, err := session.New(ctx, session.Options{
		Store:        store,
		Log:          logs.GetLoggerFromLevel(slog.LevelWarn),
		SeedDemoData: seedDemo,
	})
	s.Require().NoError(err)
	fn(ctx, sess)
	s.Require().NoError(sess.Close(ctx))
	s.T().Logf("%s done in %v", name, time.Since(start))

	if s.Config.DebugBlobs {
		s.dump(ctx, store)
	}
}

func (s *BaseSessionSuite) dump(ctx context.Context, store *storage.BadgerStore) {
	keys, err := store.Keys("@MessagingApp:")
	s.Require().NoError(err)
	rows, err := internal.Collect(ctx, store, keys, internal.BlobMapper)
	s.Require().NoError(err)
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%-28s %-13s %s %-8s %s\n", row.Key, row.Type, row.Timestamp, row.EntityID, row.Detail)
	}
	s.T().Log("\n" + b.String())
}

// Stored reads one blob back straight from Badger, outside any session.
func (s *BaseSessionSuite) Stored(key string) []byte {
	db, err := badger.Open(badger.DefaultOptions(s.dir).WithLoggingLevel(badger.WARNING))
	s.Require().NoError(err)
	defer db.Close()
	blob, ok, err := storage.NewBadgerStore(db).Get(context.Background(), key)
	s.Require().NoError(err)
	s.Require().True(ok, "missing blob "+key)
	return blob
}
