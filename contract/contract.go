package contract

import (
	"chat-inbox/domain"
	"context"
)

// SnapshotSink receives the whole state after every mutation batch.
// Implementations write collections in full, never incrementally.
type SnapshotSink interface {
	Consume(ctx context.Context, snapshot domain.Snapshot) error
}
