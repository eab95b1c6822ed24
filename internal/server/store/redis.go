package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
)

const (
	sessionKeyPrefix  = "session:"
	joinCodeKeyPrefix = "joincode:"
)

// RedisStore keeps each session as a JSON blob under session:{id}, with a
// joincode:{code} pointer for dashboard lookups. Both keys share one TTL
// that is refreshed on every update, so abandoned sessions age out on
// their own.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(addr, password string, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Ping verifies connectivity, used by the readiness probe.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Create(ctx context.Context, session *models.LiveSession) error {
	if err := s.write(ctx, session); err != nil {
		return err
	}
	if session.JoinCode != "" {
		if err := s.rdb.Set(ctx, joinCodeKeyPrefix+session.JoinCode, session.ID, s.ttl).Err(); err != nil {
			return fmt.Errorf("store join code: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.LiveSession, error) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session models.LiveSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) GetByJoinCode(ctx context.Context, joinCode string) (*models.LiveSession, error) {
	id, err := s.rdb.Get(ctx, joinCodeKeyPrefix+joinCode).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve join code: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) Update(ctx context.Context, session *models.LiveSession) error {
	if err := s.write(ctx, session); err != nil {
		return err
	}
	// Keep the join code pointer alive as long as the session.
	if session.JoinCode != "" {
		if err := s.rdb.Expire(ctx, joinCodeKeyPrefix+session.JoinCode, s.ttl).Err(); err != nil {
			return fmt.Errorf("refresh join code ttl: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	keys := []string{sessionKeyPrefix + id}
	if session.JoinCode != "" {
		keys = append(keys, joinCodeKeyPrefix+session.JoinCode)
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.rdb.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), sessionKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) write(ctx context.Context, session *models.LiveSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
