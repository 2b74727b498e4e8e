// Package notifications publishes domain events into Redis channels for
// downstream consumers such as the messaging collaborator.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"

	"buddyup/internal/models"
	"buddyup/internal/observability"
)

// MatchEventsChannel carries every match lifecycle event.
const MatchEventsChannel = "match:events"

// EventPublisher is the sink for match lifecycle events. The engine emits a
// MatchAccepted exactly once per accepted request.
type EventPublisher interface {
	PublishMatchAccepted(ctx context.Context, event models.MatchAccepted) error
}

// Notifier publishes events into Redis channels. A nil Redis client turns
// every publish into a no-op so the engine keeps working without Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// PublishMatchAccepted announces an accepted match on the shared events
// channel and on both participants' channels.
func (n *Notifier) PublishMatchAccepted(ctx context.Context, event models.MatchAccepted) error {
	if n.rdb == nil {
		return nil
	}

	body, err := json.Marshal(envelope{Type: "match.accepted", Payload: event})
	if err != nil {
		return fmt.Errorf("marshal match accepted event: %w", err)
	}

	if err := n.rdb.Publish(ctx, MatchEventsChannel, body).Err(); err != nil {
		return fmt.Errorf("publish match accepted event: %w", err)
	}
	observability.MatchEventsPublished.WithLabelValues("match.accepted").Inc()

	for _, userID := range []uint{event.RequesterID, event.RecipientID} {
		if err := n.PublishUser(ctx, userID, string(body)); err != nil {
			return err
		}
	}
	return nil
}

// UserChannel returns the Redis channel name for a user's notifications.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// StartPatternSubscriber subscribes to the match events channel and all user
// channels and calls onMessage for each incoming message.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*", MatchEventsChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
