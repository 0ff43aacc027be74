package events

import (
	"context"
	"encoding/json"
	"fmt"

	"campusbridge/internal/notifications"
)

// RedisPublisher pushes events over Redis pub/sub. Report events go to the
// moderator channel; catalog decisions go to the submitter's channel.
type RedisPublisher struct {
	notifier *notifications.Notifier
}

func NewRedisPublisher(n *notifications.Notifier) *RedisPublisher {
	return &RedisPublisher{notifier: n}
}

func (p *RedisPublisher) Name() string { return "redis" }

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	switch {
	case evt.Type == ReportCreated:
		return p.notifier.PublishModerators(ctx, string(payload))
	case evt.RecipientID != 0:
		return p.notifier.PublishUser(ctx, evt.RecipientID, string(payload))
	case evt.Category() == CategoryCatalog:
		// Submissions without a recipient are moderator work items.
		return p.notifier.PublishModerators(ctx, string(payload))
	}
	return nil
}
