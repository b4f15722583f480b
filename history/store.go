// Package history keeps the per-session transcript shown by the browser UI.
// Only final answers are stored for assistant turns, never the thinking.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const DefaultTTL = 30 * time.Minute

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store is an append-only transcript per session. Sessions expire after a
// period of inactivity or on Reset.
type Store interface {
	Append(ctx context.Context, session string, msgs ...Message) error
	List(ctx context.Context, session string) ([]Message, error)
	Reset(ctx context.Context, session string) error
}

// Turn returns the two messages recorded for one answered question.
func Turn(question, answer string) []Message {
	return []Message{
		{Role: RoleUser, Content: question},
		{Role: RoleAssistant, Content: answer},
	}
}

// NewStore returns a Redis backed store when redisURL is set and an
// in-memory one otherwise.
func NewStore(ctx context.Context, redisURL string, ttl time.Duration) (Store, error) {
	if redisURL == "" {
		return NewMemoryStore(ttl), nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

// Close releases the store's connections when it holds any.
func Close(s Store) error {
	if closer, ok := s.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
