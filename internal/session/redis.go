package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "review_session:"

// RedisStore is the Store backing for multi-instance deployments. Expiry is
// enforced twice: by the redis TTL and by the ExpiresAt carried inside the
// payload, so a replica with clock skew still gates on the absolute expiry.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisStore creates a redis-backed session store with the given timeout.
func NewRedisStore(client *redis.Client, timeout time.Duration) *RedisStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RedisStore{client: client, timeout: timeout}
}

func redisKey(userID string) string {
	return redisKeyPrefix + userID
}

// Create inserts or replaces the session for sess.UserID with a TTL.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	sess.ExpiresAt = time.Now().Add(s.timeout)

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(sess.UserID), data, s.timeout).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get returns the session for userID, or nil if none exists.
func (s *RedisStore) Get(ctx context.Context, userID string) (*Session, error) {
	data, err := s.client.Get(ctx, redisKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Update rewrites an existing session without resetting its TTL.
func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(sess.UserID), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// IsExpired reports true if no session exists or its expiry has passed.
func (s *RedisStore) IsExpired(ctx context.Context, userID string) (bool, error) {
	sess, err := s.Get(ctx, userID)
	if err != nil {
		return true, err
	}
	if sess == nil {
		return true, nil
	}
	return sess.Expired(time.Now()), nil
}

// Delete removes the session for userID.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
