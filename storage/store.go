//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_blob_store.go -package=mocks
package storage

import "context"

// BlobStore is the device-local key-value store the session mirrors its state into.
// Values are opaque blobs; there are no transactions and no schema.
type BlobStore interface {
	// Get returns the blob stored under key. The boolean is false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, blob []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
