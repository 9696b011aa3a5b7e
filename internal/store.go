package internal

import (
	"chat-inbox/storage"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenStore picks the blob store from config: Badger when BadgerFilepath is
// set, Redis when RedisAddr is, memory otherwise. The returned func releases it.
func OpenStore(config Config, log *slog.Logger) (storage.BlobStore, func(), error) {
	switch {
	case config.BadgerFilepath != "":
		db, err := storage.OpenBadger(config.BadgerFilepath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return storage.NewBadgerStore(db), func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}, nil
	case config.RedisAddr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", config.RedisAddr, err)
		}
		return storage.NewRedisStore(client), func() {
			log.Info("Closing Redis client...")
			_ = client.Close()
		}, nil
	default:
		log.Info("No BADGER_FILEPATH or REDIS_ADDR, keeping state in memory")
		return storage.NewMemoryStore(), func() {}, nil
	}
}
