package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pathakanu/nudge/internal/model"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "nudge:session:"

// RedisSessions keeps sessions in Redis. Keys expire shortly after the
// session does, so stale entries also disappear without being read.
type RedisSessions struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisSessions returns a session repository backed by rdb.
func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb, now: time.Now}
}

// Get loads the session of a user.
func (s *RedisSessions) Get(ctx context.Context, userAddress string) (*model.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(userAddress)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", userAddress, err)
	}

	var session model.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", userAddress, err)
	}
	return &session, nil
}

// Upsert stores the session, replacing any previous one for the user.
func (s *RedisSessions) Upsert(ctx context.Context, session *model.Session) error {
	session.ExpiresAt = session.ExpiresAt.UTC()
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.UserAddress, err)
	}

	// Keep the key a minute past expiry so the bot still sees and clears it.
	ttl := session.ExpiresAt.Sub(s.now()) + time.Minute
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.rdb.Set(ctx, sessionKey(session.UserAddress), raw, ttl).Err(); err != nil {
		return fmt.Errorf("upsert session %s: %w", session.UserAddress, err)
	}
	return nil
}

// Delete removes the session of a user.
func (s *RedisSessions) Delete(ctx context.Context, userAddress string) error {
	if err := s.rdb.Del(ctx, sessionKey(userAddress)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", userAddress, err)
	}
	return nil
}

func sessionKey(userAddress string) string {
	return sessionKeyPrefix + userAddress
}
