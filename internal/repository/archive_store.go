package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrArchiveNotFound indicates no stored archive matches the requested name.
var ErrArchiveNotFound = errors.New("archive not found")

// ArchiveStore holds generated export archives for the deferred retrieval
// path. Entries expire after the configured TTL; an export is a bounded
// request/response cycle, not a durable job.
type ArchiveStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

type redisArchiveStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArchiveStore constructs a Redis-backed archive store.
func NewArchiveStore(client *redis.Client, ttl time.Duration) ArchiveStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisArchiveStore{client: client, ttl: ttl}
}

func archiveKey(name string) string {
	return fmt.Sprintf("export:archive:%s", name)
}

func (s *redisArchiveStore) Save(ctx context.Context, name string, data []byte) error {
	return s.client.Set(ctx, archiveKey(name), data, s.ttl).Err()
}

func (s *redisArchiveStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, archiveKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrArchiveNotFound
		}
		return nil, err
	}
	return data, nil
}
