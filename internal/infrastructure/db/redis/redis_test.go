package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = Connect(context.Background(), Config{Addr: mr.Addr(), Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestOTPStore_Lifecycle(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewOTPStore(client)
	ctx := context.Background()

	_, err := store.Reserve(ctx, "9876543210")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Issue(ctx, "9876543210", "h1", 5*time.Minute))
	assert.Equal(t, 5*time.Minute, mr.TTL("otp:9876543210"))

	entry, err := store.Reserve(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "h1", entry.CodeHash)
	assert.Equal(t, 1, entry.Attempts)
	entry, err = store.Reserve(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Attempts)
	assert.Equal(t, 5*time.Minute, mr.TTL("otp:9876543210"), "reserving keeps the TTL")

	// Reissuing resets the counter.
	require.NoError(t, store.Issue(ctx, "9876543210", "h2", 5*time.Minute))
	entry, err = store.Reserve(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "h2", entry.CodeHash)
	assert.Equal(t, 1, entry.Attempts)

	require.NoError(t, store.Consume(ctx, "9876543210"))
	_, err = store.Reserve(ctx, "9876543210")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOTPStore_Expiry(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewOTPStore(client)
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, "9876543210", "h1", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Reserve(ctx, "9876543210")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, mr.Exists("otp:9876543210"))
}

func TestOTPStore_ConcurrentReservationsAreDistinct(t *testing.T) {
	_, client := newTestClient(t)
	store := NewOTPStore(client)
	ctx := context.Background()
	require.NoError(t, store.Issue(ctx, "9876543210", "h1", time.Minute))

	const guesses = 40
	seen := make(chan int, guesses)
	var wg sync.WaitGroup
	for i := 0; i < guesses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := store.Reserve(ctx, "9876543210")
			if assert.NoError(t, err) {
				seen <- entry.Attempts
			}
		}()
	}
	wg.Wait()
	close(seen)

	counts := make(map[int]bool, guesses)
	for n := range seen {
		assert.False(t, counts[n], "attempt %d handed out twice", n)
		counts[n] = true
	}
	assert.Len(t, counts, guesses)
	for n := 1; n <= guesses; n++ {
		assert.True(t, counts[n], "attempt %d missing", n)
	}
}

type countingLookup struct {
	calls int
	err   error
}

func (c *countingLookup) Lookup(_ context.Context, pincode string) ([]domain.PostOffice, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []domain.PostOffice{{Name: "Anna Nagar", District: "Chennai", State: "Tamil Nadu"}}, nil
}

func TestPostalCache(t *testing.T) {
	_, client := newTestClient(t)
	upstream := &countingLookup{}
	cache := NewPostalCache(client, upstream, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		offices, err := cache.Lookup(ctx, "600040")
		require.NoError(t, err)
		require.Len(t, offices, 1)
		assert.Equal(t, "Chennai", offices[0].District)
	}
	assert.Equal(t, 1, upstream.calls)
}

func TestPostalCache_ErrorsAreNotCached(t *testing.T) {
	_, client := newTestClient(t)
	upstream := &countingLookup{err: domain.ErrUpstreamUnavailable}
	cache := NewPostalCache(client, upstream, zerolog.Nop())
	ctx := context.Background()

	_, err := cache.Lookup(ctx, "600040")
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
	_, err = cache.Lookup(ctx, "600040")
	assert.Error(t, err)
	assert.Equal(t, 2, upstream.calls)
}
