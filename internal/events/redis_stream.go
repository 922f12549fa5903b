package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStreamPublisher appends every event to a Redis stream with XADD.
// Each entry has a type field and an event field holding the JSON document.
type RedisStreamPublisher struct {
	client redis.UniversalClient
	stream string
}

// NewRedisStreamPublisher creates a publisher writing to stream.
func NewRedisStreamPublisher(client redis.UniversalClient, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream}
}

// HandleEvent implements EventHandler.
func (p *RedisStreamPublisher) HandleEvent(ctx context.Context, event *LedgerEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":  event.Type,
			"event": eventJSON,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
