package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisUpdateAttempts = 3

// RedisStore keeps history as one JSON string key. Updates run inside
// WATCH/MULTI so concurrent writers from other processes retry instead of
// overwriting each other.
type RedisStore struct {
	history
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps client. ttl of zero keeps the key forever.
func NewRedisStore(client redis.UniversalClient, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	s := &RedisStore{client: client, key: key, ttl: ttl}
	s.b = s
	return s
}

func (s *RedisStore) Init(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	s.markClosed()
	return s.client.Close()
}

func (s *RedisStore) load(ctx context.Context) ([]Record, error) {
	return s.get(ctx, s.client)
}

func (s *RedisStore) get(ctx context.Context, c redis.Cmdable) ([]Record, error) {
	data, err := c.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", s.key, err)
	}
	return decodeRecords(data)
}

func (s *RedisStore) update(ctx context.Context, fn func([]Record) []Record) error {
	txf := func(tx *redis.Tx) error {
		records, err := s.get(ctx, tx)
		if err != nil {
			return err
		}
		next := fn(records)

		var payload []byte
		if next != nil {
			if payload, err = marshalRecords(next); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, s.key)
				return nil
			}
			pipe.Set(ctx, s.key, payload, s.ttl)
			return nil
		})
		return err
	}

	var err error
	for range redisUpdateAttempts {
		err = s.client.Watch(ctx, txf, s.key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("redis update %s: %w", s.key, err)
	}
	return nil
}
