// Package notifications publishes user and moderator notifications over Redis pub/sub.
package notifications

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ModerationChannel carries notifications for the admin console.
const ModerationChannel = "notifications:moderation"

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishModerators sends a notification payload to the moderation channel.
func (n *Notifier) PublishModerators(ctx context.Context, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, ModerationChannel, payload).Err()
}
