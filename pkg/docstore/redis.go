package docstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/atlas/pkg/errors"
)

const (
	// redisPrefix namespaces document keys so the store can share a
	// Redis database with other applications.
	redisPrefix = "atlas:doc:"

	// redisIndexKey is a hash of document name -> last update time,
	// maintained alongside the documents so List never has to scan the
	// keyspace.
	redisIndexKey = "atlas:docs"
)

// RedisStore persists documents in Redis. Suitable for multi-instance
// servers that need shared storage without operating a database.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis using a redis:// URL and verifies the
// connection with a ping. An empty URL means redis://localhost:6379/0.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis at %s", opts.Addr)
	}

	return &RedisStore{client: client}, nil
}

// Get retrieves a document by name.
func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, redisPrefix+name).Bytes()
	if err == redis.Nil {
		return nil, errNotFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "redis get %q", name)
	}
	return data, nil
}

// Put stores a document under the given name. The document body and the
// List index are updated in one MULTI/EXEC transaction.
func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisPrefix+name, data, 0)
		pipe.HSet(ctx, redisIndexKey, name, time.Now().UTC().Format(time.RFC3339Nano))
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "redis put %q", name)
	}
	return nil
}

// Delete removes a document and its index entry.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}

	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisPrefix+name)
		pipe.HDel(ctx, redisIndexKey, name)
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "redis delete %q", name)
	}
	if del.Val() == 0 {
		return errNotFound(name)
	}
	return nil
}

// List returns metadata for all stored documents, sorted by name. Sizes
// come from STRLEN so document bodies never cross the wire.
func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	index, err := s.client.HGetAll(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "redis list")
	}

	entries := make([]Entry, 0, len(index))
	for name, stamp := range index {
		size, err := s.client.StrLen(ctx, redisPrefix+name).Result()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "redis list")
		}
		updated, _ := time.Parse(time.RFC3339Nano, stamp)
		entries = append(entries, Entry{Name: name, Size: size, UpdatedAt: updated})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
