package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T) *Limiter {
	t.Helper()

	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	t.Cleanup(srv.Close)

	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { cli.Close() })

	return NewLimiter(cli)
}

func TestLimiter_AllowUpToLimit(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "validate:LK-1", 3, time.Minute)
		assert.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "validate:LK-1", 3, time.Minute)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLimiter_IdentifiersAreIndependent(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "validate:LK-1", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "validate:LK-1", 1, time.Minute)
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "validate:LK-2", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_WindowSlides(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()
	window := 50 * time.Millisecond

	ok, err := l.Allow(ctx, "validate:LK-1", 1, window)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "validate:LK-1", 1, window)
	assert.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(window + 20*time.Millisecond)

	ok, err = l.Allow(ctx, "validate:LK-1", 1, window)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_Remaining(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()

	left, err := l.Remaining(ctx, "deactivate:LK-1", 5, time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), left)

	for i := 0; i < 5; i++ {
		_, err := l.Allow(ctx, "deactivate:LK-1", 5, time.Minute)
		assert.NoError(t, err)
	}

	left, err = l.Remaining(ctx, "deactivate:LK-1", 5, time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), left)

	// Denied attempts do not consume window entries, so remaining stays at zero.
	ok, err := l.Allow(ctx, "deactivate:LK-1", 5, time.Minute)
	assert.NoError(t, err)
	assert.False(t, ok)

	left, err = l.Remaining(ctx, "deactivate:LK-1", 5, time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), left)
}

func TestLimiter_ConcurrentCallersNeverExceedLimit(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()
	const limit = 5
	const callers = 20

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Allow(ctx, "validate:LK-1", limit, time.Minute)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), atomic.LoadInt64(&admitted))

	left, err := l.Remaining(ctx, "validate:LK-1", limit, time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), left)
}

func TestLimiter_UnreachableRedisReturnsError(t *testing.T) {
	cli := goredis.NewClient(&goredis.Options{
		Addr:         "127.0.0.1:0",
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
	})
	defer cli.Close()
	l := NewLimiter(cli)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := l.Allow(ctx, "validate:LK-1", 3, time.Minute)
	assert.Error(t, err)

	_, err = l.Remaining(ctx, "validate:LK-1", 3, time.Minute)
	assert.Error(t, err)
}
