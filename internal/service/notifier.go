package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/pkg/logger"
	"github.com/seulch/campushub/pkg/redis"
	"go.uber.org/zap"
)

// Notifier delivers fire-and-forget messages to attendees. Delivery
// failures are logged by callers and never roll back domain state.
type Notifier interface {
	// Send delivers one message to the given recipients
	Send(ctx context.Context, message string, recipientIDs []string, kind domain.NotificationKind) error
}

// RedisNotifier publishes notifications to a Redis pub/sub channel that
// downstream delivery workers subscribe to
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisNotifier creates a notifier backed by Redis pub/sub
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = "campushub:notifications"
	}
	return &RedisNotifier{
		client:  client,
		channel: channel,
	}
}

// Send publishes the notification envelope to the configured channel
func (n *RedisNotifier) Send(ctx context.Context, message string, recipientIDs []string, kind domain.NotificationKind) error {
	if len(recipientIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(&domain.Notification{
		Message:    message,
		Recipients: recipientIDs,
		Kind:       kind,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := n.client.Client().Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// NoOpNotifier is a no-op implementation for tests and for running
// without Redis
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new no-op notifier
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Send is a no-op
func (n *NoOpNotifier) Send(ctx context.Context, message string, recipientIDs []string, kind domain.NotificationKind) error {
	return nil
}

// deliverNotifications sends a batch built inside a store critical section.
// Failures are logged per notification and never propagated.
func deliverNotifications(ctx context.Context, notifier Notifier, log *logger.Logger, notifications []*domain.Notification) {
	for _, n := range notifications {
		if err := notifier.Send(ctx, n.Message, n.Recipients, n.Kind); err != nil {
			log.Warn("notification delivery failed",
				zap.String("kind", string(n.Kind)),
				zap.Int("recipients", len(n.Recipients)),
				zap.Error(err))
		}
	}
}
