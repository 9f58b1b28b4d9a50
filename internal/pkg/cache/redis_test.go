package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedis(rdb, "test:"), mr
}

func TestRedis_GetSetDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		store, _ := newTestRedis(t)

		_, err := store.Get(ctx, "absent")

		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("set then get with prefix and ttl", func(t *testing.T) {
		// Arrange
		store, mr := newTestRedis(t)

		// Act
		err := store.SetWithTTL(ctx, "k", []byte("v"), time.Minute)

		// Assert
		require.NoError(t, err)
		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
		assert.True(t, mr.Exists("test:k"))
		assert.Equal(t, time.Minute, mr.TTL("test:k"))
	})

	t.Run("set overwrites value and expiry", func(t *testing.T) {
		store, mr := newTestRedis(t)
		require.NoError(t, store.SetWithTTL(ctx, "k", []byte("old"), time.Hour))

		require.NoError(t, store.SetWithTTL(ctx, "k", []byte("new"), time.Minute))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), got)
		assert.Equal(t, time.Minute, mr.TTL("test:k"))
	})

	t.Run("set rejects non positive ttl", func(t *testing.T) {
		store, _ := newTestRedis(t)

		assert.ErrorIs(t, store.SetWithTTL(ctx, "k", []byte("v"), 0), ErrInvalidTTL)
	})

	t.Run("expired value is a miss", func(t *testing.T) {
		store, mr := newTestRedis(t)
		require.NoError(t, store.SetWithTTL(ctx, "k", []byte("v"), time.Minute))

		mr.FastForward(time.Minute + time.Second)

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store, _ := newTestRedis(t)
		require.NoError(t, store.SetWithTTL(ctx, "k", []byte("v"), time.Minute))

		require.NoError(t, store.Delete(ctx, "k"))
		require.NoError(t, store.Delete(ctx, "k"))

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrMiss)
	})
}

func TestRedis_IncrementWithTTL(t *testing.T) {
	ctx := context.Background()

	t.Run("first increment starts window", func(t *testing.T) {
		store, mr := newTestRedis(t)

		n, err := store.IncrementWithTTL(ctx, "c", 15*time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.Equal(t, 15*time.Minute, mr.TTL("test:c"))
	})

	t.Run("later increments do not extend window", func(t *testing.T) {
		// Arrange
		store, mr := newTestRedis(t)
		_, err := store.IncrementWithTTL(ctx, "c", 15*time.Minute)
		require.NoError(t, err)
		mr.FastForward(10 * time.Minute)

		// Act
		n, err := store.IncrementWithTTL(ctx, "c", 15*time.Minute)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, 5*time.Minute, mr.TTL("test:c"))
	})

	t.Run("expired window restarts at one", func(t *testing.T) {
		store, mr := newTestRedis(t)
		for range 3 {
			_, err := store.IncrementWithTTL(ctx, "c", time.Minute)
			require.NoError(t, err)
		}

		mr.FastForward(time.Minute)

		n, err := store.IncrementWithTTL(ctx, "c", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("counter without expiry gets one", func(t *testing.T) {
		store, mr := newTestRedis(t)
		require.NoError(t, mr.Set("test:c", "4"))

		n, err := store.IncrementWithTTL(ctx, "c", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
		assert.Equal(t, time.Minute, mr.TTL("test:c"))
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		// Arrange
		store, _ := newTestRedis(t)
		const workers = 64
		var wg sync.WaitGroup
		results := make(chan int64, workers)

		// Act
		for range workers {
			wg.Go(func() {
				n, err := store.IncrementWithTTL(ctx, "c", time.Minute)
				assert.NoError(t, err)
				results <- n
			})
		}
		wg.Wait()
		close(results)

		// Assert
		seen := make(map[int64]bool, workers)
		for n := range results {
			assert.False(t, seen[n], "count %d observed twice", n)
			seen[n] = true
		}
		assert.Len(t, seen, workers)

		got, err := store.Get(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, "64", string(got))
	})

	t.Run("rejects non positive ttl", func(t *testing.T) {
		store, _ := newTestRedis(t)

		_, err := store.IncrementWithTTL(ctx, "c", -time.Second)

		assert.ErrorIs(t, err, ErrInvalidTTL)
	})
}

func TestRedis_DeleteIfValue(t *testing.T) {
	ctx := context.Background()

	t.Run("matching value is removed", func(t *testing.T) {
		// Arrange
		store, mr := newTestRedis(t)
		require.NoError(t, store.SetWithTTL(ctx, "k", []byte("v1"), time.Minute))

		// Act
		ok, err := store.DeleteIfValue(ctx, "k", []byte("v1"))

		// Assert
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, mr.Exists("test:k"))
	})

	t.Run("replaced value is kept", func(t *testing.T) {
		store, mr := newTestRedis(t)
		require.NoError(t, store.SetWithTTL(ctx, "k", []byte("v2"), time.Minute))

		ok, err := store.DeleteIfValue(ctx, "k", []byte("v1"))

		require.NoError(t, err)
		assert.False(t, ok)
		got, err := mr.Get("test:k")
		require.NoError(t, err)
		assert.Equal(t, "v2", got)
	})

	t.Run("absent key", func(t *testing.T) {
		store, _ := newTestRedis(t)

		ok, err := store.DeleteIfValue(ctx, "k", []byte("v1"))

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("only one concurrent caller wins", func(t *testing.T) {
		// Arrange
		store, _ := newTestRedis(t)
		require.NoError(t, store.SetWithTTL(ctx, "k", []byte("v1"), time.Minute))
		const workers = 16
		var wg sync.WaitGroup
		results := make(chan bool, workers)

		// Act
		for range workers {
			wg.Go(func() {
				ok, err := store.DeleteIfValue(ctx, "k", []byte("v1"))
				assert.NoError(t, err)
				results <- ok
			})
		}
		wg.Wait()
		close(results)

		// Assert
		wins := 0
		for ok := range results {
			if ok {
				wins++
			}
		}
		assert.Equal(t, 1, wins)
	})
}

func TestRedis_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t)

	d, err := store.TTL(ctx, "absent")
	require.NoError(t, err)
	assert.Zero(t, d)

	require.NoError(t, mr.Set("test:persistent", "1"))
	d, err = store.TTL(ctx, "persistent")
	require.NoError(t, err)
	assert.Zero(t, d)

	require.NoError(t, store.SetWithTTL(ctx, "k", []byte("v"), 90*time.Second))
	d, err = store.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}

func TestRedis_Unavailable(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store, mr := newTestRedis(t)
	mr.Close()

	// Act
	_, getErr := store.Get(ctx, "k")
	setErr := store.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	_, incrErr := store.IncrementWithTTL(ctx, "k", time.Minute)
	delErr := store.Delete(ctx, "k")
	_, casErr := store.DeleteIfValue(ctx, "k", []byte("v"))
	_, ttlErr := store.TTL(ctx, "k")

	// Assert
	for _, err := range []error{getErr, setErr, incrErr, delErr, casErr, ttlErr} {
		assert.ErrorIs(t, err, ErrUnavailable)
	}
}
