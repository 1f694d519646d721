package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one served prediction.
type Entry struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Prediction string    `json:"prediction"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// PredictionLog stores served predictions.
type PredictionLog interface {
	Record(ctx context.Context, e Entry) error
}

// NopLog discards entries.
type NopLog struct{}

func (NopLog) Record(context.Context, Entry) error { return nil }

// RedisLog pushes JSON entries onto a capped Redis list, newest first.
type RedisLog struct {
	client *redis.Client
	key    string
	maxLen int64
}

func NewRedisLog(client *redis.Client, key string, maxLen int64) *RedisLog {
	if key == "" {
		key = "phishing:predictions"
	}
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &RedisLog{client: client, key: key, maxLen: maxLen}
}

// Ping checks the connection.
func (l *RedisLog) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLog) Record(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	pipe := l.client.Pipeline()
	pipe.LPush(ctx, l.key, data)
	pipe.LTrim(ctx, l.key, 0, l.maxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis log %s: %w", l.key, err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (l *RedisLog) Recent(ctx context.Context, n int64) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := l.client.LRange(ctx, l.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis log %s: %w", l.key, err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, s := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("redis log %s: decode entry: %w", l.key, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
