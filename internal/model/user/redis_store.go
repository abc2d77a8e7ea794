package user

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Redis key layout (shared with the auth service, which writes these keys):
//
//	user:{id}        profile JSON blob
//	users            SET of known user ids
//	usertoken:{tok}  access token -> user id
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a user store backed by the given redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func userKey(id string) string {
	return "user:" + id
}

func tokenKey(token string) string {
	return "usertoken:" + token
}

const membersKey = "users"

func (s *RedisStore) Get(ctx context.Context, id string) (User, error) {
	raw, err := s.rdb.Get(ctx, userKey(id)).Result()
	if err == redis.Nil {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to load user %s: %w", id, err)
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	return u, nil
}

func (s *RedisStore) List(ctx context.Context) ([]User, error) {
	ids, err := s.rdb.SMembers(ctx, membersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]User, 0, len(ids))
	for _, id := range ids {
		u, err := s.Get(ctx, id)
		if err == ErrUserNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *RedisStore) FindByToken(ctx context.Context, token string) (User, error) {
	id, err := s.rdb.Get(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		return User{}, ErrTokenNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to resolve token: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) Upsert(ctx context.Context, u User, token string) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user %s: %w", u.ID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, userKey(u.ID), payload, 0)
	pipe.SAdd(ctx, membersKey, u.ID)
	if token != "" {
		pipe.Set(ctx, tokenKey(token), u.ID, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store user %s: %w", u.ID, err)
	}
	return nil
}
