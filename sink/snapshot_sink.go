package sink

import (
	"chat-inbox/domain"
	"chat-inbox/repositories"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// SnapshotSink mirrors session state into the blob store through the repositories.
type SnapshotSink struct {
	conversations repositories.IConversationRepository
	messages      repositories.IMessageRepository
	users         repositories.IUserRepository
	log           *slog.Logger
}

func NewSnapshotSink(
	conversations repositories.IConversationRepository,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	log *slog.Logger,
) SnapshotSink {
	return SnapshotSink{conversations: conversations, messages: messages, users: users, log: log}
}

// Consume writes the conversation and message blobs, plus the user list when
// it is part of the snapshot. Every write is attempted even if an earlier one
// failed; the failures come back joined.
func (s SnapshotSink) Consume(ctx context.Context, snapshot domain.Snapshot) error {
	var errs []error
	if err := s.conversations.SaveConversations(ctx, snapshot.Conversations); err != nil {
		errs = append(errs, fmt.Errorf("save conversations: %w", err))
	}
	if err := s.messages.SaveMessages(ctx, snapshot.Messages); err != nil {
		errs = append(errs, fmt.Errorf("save messages: %w", err))
	}
	if snapshot.Users != nil {
		if err := s.users.SaveUsers(ctx, snapshot.Users); err != nil {
			errs = append(errs, fmt.Errorf("save users: %w", err))
		}
	}
	s.log.Debug("Snapshot persisted",
		"conversations", len(snapshot.Conversations),
		"messages", len(snapshot.Messages),
		"failures", len(errs))
	return errors.Join(errs...)
}
