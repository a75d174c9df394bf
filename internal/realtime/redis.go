package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "splitroom:"

// RedisBroker relays events through Redis pub/sub so every server instance
// sees every room change.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(connectionString string) (*RedisBroker, error) {
	opts, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis connection string: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBroker{client: client}, nil
}

func (r *RedisBroker) Publish(ctx context.Context, ev Event) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, redisChannel(ev.RoomID), payload).Err()
}

func (r *RedisBroker) Subscribe(ctx context.Context, roomID string) (*Subscription, error) {
	pubsub := r.client.Subscribe(ctx, redisChannel(roomID))
	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close() //nolint
		return nil, fmt.Errorf("failed to subscribe to room %s: %w", roomID, err)
	}

	sub := newSubscription(func() { _ = pubsub.Close() })
	go func() {
		for msg := range pubsub.Channel() {
			ev, err := decodeEvent([]byte(msg.Payload))
			if err != nil {
				slog.Warn("Dropping malformed room event", "room_id", roomID, "error", err)
				continue
			}
			sub.deliver(ev)
		}
		sub.Close()
	}()
	sub.closeWith(ctx)
	return sub, nil
}

func (r *RedisBroker) Close() error {
	return r.client.Close()
}

func redisChannel(roomID string) string {
	return redisChannelPrefix + roomChannel(roomID)
}
