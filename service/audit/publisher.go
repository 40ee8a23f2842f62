// Package audit publishes best-effort lease lifecycle events to an external
// sink for observability. It is never read back by the service: losing an
// event does not affect lock correctness.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lockd/pkg/log"
)

// EventType enumerates lease lifecycle transitions worth recording.
type EventType string

const (
	EventAcquired      EventType = "acquired"
	EventReentered     EventType = "reentered"
	EventAcquireFailed EventType = "acquire_failed"
	EventRenewed       EventType = "renewed"
	EventRenewFailed   EventType = "renew_failed"
	EventReleased      EventType = "released"
	EventExpired       EventType = "expired"
)

// streamKey is the Redis Stream audit events are appended to.
const streamKey = "lockd:audit:events"

// Event is a single lease lifecycle transition.
type Event struct {
	Type       EventType `json:"type"`
	Namespace  string    `json:"namespace"`
	BusinessID string    `json:"business_id"`
	UserID     string    `json:"user_id,omitempty"`
	LockID     string    `json:"lock_id,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher fire-and-forgets Event records to a Redis Stream. A nil
// Publisher (or one built over an unreachable Redis) is safe to call:
// Publish logs and swallows errors rather than propagating them.
type Publisher struct {
	client *redis.Client
}

// NewPublisher connects a Publisher to url (and optional password). Returns
// nil, nil when url is empty, signalling the audit sink is disabled.
func NewPublisher(url, password string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}

	return &Publisher{client: redis.NewClient(opts)}, nil
}

// Publish appends ev to the audit stream. Failures are logged, never
// returned: the audit sink must never affect request latency or outcome.
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	if p == nil || p.client == nil {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("failed to marshal audit event, details: %w", err)
		return
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]interface{}{"event": string(payload)},
	}).Err()
	if err != nil {
		log.Errorf("failed to publish audit event, details: %w", err)
	}
}

// Close releases the underlying Redis connection. Safe to call on a nil
// Publisher.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
