package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkotenko/vlrbot/internal/pkg/models"
)

// RedisStore keeps selection sessions in Redis with a TTL so abandoned
// selections expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("selection:%d", chatID)
}

func (s *RedisStore) Put(ctx context.Context, chatID int64, segments []models.MatchSegment) error {
	data, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}
	return s.client.Set(ctx, sessionKey(chatID), data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, chatID int64) ([]models.MatchSegment, error) {
	data, err := s.client.Get(ctx, sessionKey(chatID)).Result()
	if err == redis.Nil {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}

	var segments []models.MatchSegment
	if err := json.Unmarshal([]byte(data), &segments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selection: %w", err)
	}
	if len(segments) == 0 {
		return nil, ErrNoSession
	}
	return segments, nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, sessionKey(chatID)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
