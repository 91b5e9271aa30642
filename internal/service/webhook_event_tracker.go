package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	webhookEventKeyPrefix  = "webhook:event:"
	defaultWebhookEventTTL = 72 * time.Hour
)

// WebhookEventTracker remembers webhook event ids whose effects are committed, so
// redeliveries short-circuit before touching the database. An id is only recorded
// after its transaction commits; a delivery that dies midway is processed again.
type WebhookEventTracker interface {
	// Processed reports whether the event id was recorded by MarkProcessed.
	Processed(ctx context.Context, eventID string) (bool, error)
	// MarkProcessed records the event id once its effects are committed.
	MarkProcessed(ctx context.Context, eventID string) error
}

type redisWebhookEventTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewWebhookEventTracker(client *redis.Client) WebhookEventTracker {
	return &redisWebhookEventTracker{client: client, ttl: defaultWebhookEventTTL}
}

func (t *redisWebhookEventTracker) Processed(ctx context.Context, eventID string) (bool, error) {
	n, err := t.client.Exists(ctx, webhookEventKeyPrefix+eventID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *redisWebhookEventTracker) MarkProcessed(ctx context.Context, eventID string) error {
	return t.client.Set(ctx, webhookEventKeyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), t.ttl).Err()
}
