package stripewebhook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIdempotencyGuardRemembersHandledEvents(t *testing.T) {
	store := newInMemoryStore()
	guard, err := NewIdempotencyGuard(store, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	seen, err := guard.Seen(ctx, "evt_1")
	require.NoError(t, err)
	require.False(t, seen)
	require.Empty(t, store.keys(), "reading must not mark")

	require.NoError(t, guard.Remember(ctx, "evt_1"))
	seen, err = guard.Seen(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, seen)
	require.Equal(t, []string{"membership:idempotency:stripe_event:evt_1"}, store.keys())
}

func TestIdempotencyGuardRemembersAfterCancellation(t *testing.T) {
	store := newInMemoryStore()
	guard, err := NewIdempotencyGuard(store, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, guard.Remember(ctx, "evt_gone"))

	_, err = guard.Seen(ctx, "evt_gone")
	require.ErrorIs(t, err, context.Canceled)
	seen, err := guard.Seen(context.Background(), "evt_gone")
	require.NoError(t, err)
	require.True(t, seen)
}

func TestIdempotencyGuardValidation(t *testing.T) {
	_, err := NewIdempotencyGuard(nil, time.Hour)
	require.Error(t, err)
	_, err = NewIdempotencyGuard(newInMemoryStore(), -time.Second)
	require.Error(t, err)

	guard, err := NewIdempotencyGuard(newInMemoryStore(), 0)
	require.NoError(t, err)
	_, err = guard.Seen(context.Background(), "")
	require.Error(t, err)
	require.Error(t, guard.Remember(context.Background(), ""))
}
