// Package pubsub distributes lifecycle analytics events across
// instances over Redis Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// LifecycleEvent is one named analytics event with free-form fields.
type LifecycleEvent struct {
	Name      string         `json:"name"`
	Fields    map[string]any `json:"fields,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// LifecycleEventHandler is a callback function for handling lifecycle events
type LifecycleEventHandler func(ctx context.Context, event LifecycleEvent)

const lifecycleEventChannel = "veyra:lifecycle:events"

// RedisEventBus publishes lifecycle events to a shared Redis channel.
// It satisfies the notification.Events interface on the publishing side
// and lets analytics consumers subscribe from any instance.
type RedisEventBus struct {
	client *redis.Client
	logger logger.Interface
}

// NewRedisEventBus creates a new Redis-based lifecycle event bus
func NewRedisEventBus(client *redis.Client, logger logger.Interface) *RedisEventBus {
	return &RedisEventBus{
		client: client,
		logger: logger,
	}
}

// Emit publishes one named event with free-form fields
func (b *RedisEventBus) Emit(name string, fields map[string]any) error {
	event := LifecycleEvent{
		Name:      name,
		Fields:    fields,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.client.Publish(ctx, lifecycleEventChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish lifecycle event",
			"event", name,
			"error", err,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("lifecycle event published", "event", name)
	return nil
}

// Subscribe subscribes to lifecycle events and calls the handler for each event
func (b *RedisEventBus) Subscribe(ctx context.Context, handler LifecycleEventHandler) error {
	pubsub := b.client.Subscribe(ctx, lifecycleEventChannel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	_, err := pubsub.Receive(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Infow("subscribed to lifecycle events",
		"channel", lifecycleEventChannel,
	)

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("lifecycle event subscriber stopped",
				"reason", ctx.Err(),
			)
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("lifecycle event channel closed")
				return nil
			}

			// Handle in background to avoid blocking the event loop
			go b.dispatch(context.Background(), msg.Payload, handler)
		}
	}
}

// dispatch decodes one published payload and hands it to the handler.
// Malformed payloads are logged and dropped so one bad message cannot
// wedge the subscriber.
func (b *RedisEventBus) dispatch(ctx context.Context, payload string, handler LifecycleEventHandler) {
	var event LifecycleEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		b.logger.Warnw("failed to unmarshal lifecycle event",
			"payload", payload,
			"error", err,
		)
		return
	}

	handler(ctx, event)
}
