package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"poster-backend/internal/records"
)

const (
	redisKeyPrefix    = "poster:session:"
	redisMaxTxRetries = 10
)

// RedisStore keeps each session as one JSON value with a sliding TTL.
// Updates use WATCH/MULTI so concurrent transitions of one session never
// overwrite each other.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Create stores a new session.
func (s *RedisStore) Create(ctx context.Context, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey(st.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Get reads a session.
func (s *RedisStore) Get(ctx context.Context, id string) (State, error) {
	data, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, ErrNotFound
		}
		return State{}, fmt.Errorf("read session: %w", err)
	}
	return decodeState(data)
}

// Update applies fn inside an optimistic transaction, retrying when another
// writer touched the session first.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*State) error) (State, error) {
	key := redisKey(id)
	var out State

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return fmt.Errorf("read session: %w", err)
		}
		st, err := decodeState(data)
		if err != nil {
			return err
		}
		if err := fn(&st); err != nil {
			return err
		}
		st.UpdatedAt = s.now().UTC()
		encoded, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = st
		return nil
	}

	for i := 0; i < redisMaxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return State{}, err
	}
	return State{}, fmt.Errorf("update session %s: too much contention", id)
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func decodeState(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode session: %w", err)
	}
	if st.Records == nil {
		st.Records = []records.Record{}
	}
	return st, nil
}

var _ Store = (*RedisStore)(nil)
