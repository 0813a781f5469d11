package redisrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/studygroup-client/credentials"
	"github.com/redis/go-redis/v9"
)

var _ credentials.Repo = (*Repo)(nil)

// Repo stores credentials in Redis so several client processes can share one login.
// Keys are written without expiry; the credential store decides when they go away.
type Repo struct {
	client redis.UniversalClient
	prefix string
}

// New wraps client. prefix is prepended to every key, e.g. "sg" -> "sg:studygroup:access_token".
func New(client redis.UniversalClient, prefix string) *Repo {
	return &Repo{client: client, prefix: prefix}
}

func (r *Repo) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Repo) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Repo) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
