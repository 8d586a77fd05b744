package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/merrymatch/membership-backend/pkg/redis"
)

const (
	eventScope = "stripe_event"
	// rememberTimeout bounds the post-commit write, which runs detached from
	// the request so a dropped connection cannot skip it.
	rememberTimeout = 2 * time.Second
)

// IdempotencyGuard caches the ids of Stripe events whose handling already
// committed. An id is only written after the outcome is final, so a failed
// delivery can never shadow its own retry.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &IdempotencyGuard{store: store, ttl: ttl}, nil
}

// Seen reports whether eventID was already handled to completion.
func (g *IdempotencyGuard) Seen(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	_, err := g.store.Get(ctx, g.store.IdempotencyKey(eventScope, eventID))
	switch {
	case err == nil:
		return true, nil
	case redis.IsMiss(err):
		return false, nil
	default:
		return false, fmt.Errorf("read event mark: %w", err)
	}
}

// Remember marks eventID as handled. Cancellation of ctx is ignored.
func (g *IdempotencyGuard) Remember(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rememberTimeout)
	defer cancel()
	if err := g.store.Set(ctx, g.store.IdempotencyKey(eventScope, eventID), "1", g.ttl); err != nil {
		return fmt.Errorf("write event mark: %w", err)
	}
	return nil
}
