package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis Stream events are appended to.
const DefaultStream = "brio:events"

// maxStreamLength caps the stream with approximate trimming.
const maxStreamLength = 10000

// RedisPublisher appends events to a Redis Stream so external consumers
// can follow pipeline activity. Optional: a nil client disables it.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher creates a publisher for the given stream. Returns nil
// when client is nil.
func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	if client == nil {
		return nil
	}
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{client: client, stream: stream}
}

// Handle appends the event to the stream.
func (p *RedisPublisher) Handle(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	addArgs := &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: maxStreamLength,
		Approx: true,
		Values: map[string]any{
			"type":     string(event.Type),
			"category": string(event.Category),
			"message":  event.Message,
			"payload":  string(payload),
			"at":       event.At.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}

	if addErr := p.client.XAdd(ctx, addArgs).Err(); addErr != nil {
		return fmt.Errorf("append event to stream: %w", addErr)
	}
	return nil
}

// Ensure RedisPublisher implements Handler.
var _ Handler = (*RedisPublisher)(nil)
