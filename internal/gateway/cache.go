package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/historycanopy/game/internal/question"
)

const defaultCacheTTL = 30 * time.Second

// Cache offloads repeat store reads. A nil Cache on the client disables
// caching and every read goes straight to the store.
type Cache interface {
	// Get methods return (nil, nil) on a miss.
	GetLeaderboard(ctx context.Context) ([]Entry, error)
	SetLeaderboard(ctx context.Context, entries []Entry) error
	GetQuestions(ctx context.Context) ([]question.Raw, error)
	SetQuestions(ctx context.Context, records []question.Raw) error
}

// RedisCache keeps short-lived store snapshots in Redis so rapid
// leaderboard reopens and session restarts do not hammer the store.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

const (
	leaderboardKey = "canopy:leaderboard"
	questionsKey   = "canopy:questions"
)

func (c *RedisCache) GetLeaderboard(ctx context.Context) ([]Entry, error) {
	data, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *RedisCache) SetLeaderboard(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardKey, data, c.ttl).Err()
}

func (c *RedisCache) GetQuestions(ctx context.Context) ([]question.Raw, error) {
	data, err := c.client.Get(ctx, questionsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var records []question.Raw
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *RedisCache) SetQuestions(ctx context.Context, records []question.Raw) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, questionsKey, data, c.ttl).Err()
}
