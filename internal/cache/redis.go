// Package cache holds the Redis-backed layers that sit in front of
// expensive, repeatable work: per-scope memory-context renders, legal
// embedding vectors, and the cross-process token snapshot broadcast.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/pkg/logger"
)

type Client struct {
	rdb *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.Info("cache client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetMemoryContext caches a rendered build_memory_context string keyed by
// scope, since memory context is recomputed for every workflow call but
// only changes when a new Insight is appended.
func (c *Client) SetMemoryContext(ctx context.Context, scope string, rendered string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, memoryKey(scope), rendered, ttl).Err(); err != nil {
		return fmt.Errorf("cache memory context for %s: %w", scope, err)
	}
	return nil
}

func (c *Client) GetMemoryContext(ctx context.Context, scope string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, memoryKey(scope)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get memory context for %s: %w", scope, err)
	}
	return val, true, nil
}

// InvalidateMemoryContext drops a scope's cached render. Insight appends
// do not call it; a cached render stays until its TTL expires or a caller
// invalidates it.
func (c *Client) InvalidateMemoryContext(ctx context.Context, scope string) error {
	if err := c.rdb.Del(ctx, memoryKey(scope)).Err(); err != nil {
		return fmt.Errorf("invalidate memory context for %s: %w", scope, err)
	}
	return nil
}

func (c *Client) SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	if err := c.rdb.Set(ctx, embeddingKey(textHash), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache embedding %s: %w", textHash, err)
	}
	return nil
}

func (c *Client) GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error) {
	data, err := c.rdb.Get(ctx, embeddingKey(textHash)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get embedding %s: %w", textHash, err)
	}

	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil, false, fmt.Errorf("unmarshal embedding %s: %w", textHash, err)
	}
	return embedding, true, nil
}

// PublishTokenSnapshot broadcasts a token_update payload on a pub/sub
// channel so other server processes sharing this cache stay in sync with
// the authoritative Token Accountant.
func (c *Client) PublishTokenSnapshot(ctx context.Context, payload []byte) error {
	if err := c.rdb.Publish(ctx, "token_update", payload).Err(); err != nil {
		return fmt.Errorf("publish token snapshot: %w", err)
	}
	return nil
}

func (c *Client) SubscribeTokenSnapshots(ctx context.Context) *redis.PubSub {
	return c.rdb.Subscribe(ctx, "token_update")
}

func memoryKey(scope string) string    { return "memctx:" + scope }
func embeddingKey(hash string) string  { return "embedding:" + hash }
