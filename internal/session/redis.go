package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "artesania:session:"
	updateRetries = 5
)

// RedisStore keeps sessions in Redis with a sliding TTL. Update uses
// WATCH/MULTI so concurrent requests of one visitor do not lose writes.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	return r.get(ctx, r.client, id)
}

func (r *RedisStore) get(ctx context.Context, c redis.Cmdable, id string) (*Session, error) {
	data, err := c.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	return decode(data)
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key(s.ID), data, r.ttl).Err()
}

func (r *RedisStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	var result *Session
	txf := func(tx *redis.Tx) error {
		s, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		data, err := encode(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(id), data, r.ttl)
			return nil
		})
		if err == nil {
			result = s
		}
		return err
	}

	for range updateRetries {
		err := r.client.Watch(ctx, txf, key(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("session update: too much contention on %s", id)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, key(id)).Err()
}
