package verification

import (
	"context"
	"sync"
	"testing"
	"time"

	"agri-marketplace/internal/common/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

func TestMemoryCache_PutGetExpire(t *testing.T) {
	clk := clock.NewManual(issuedAt)
	c := NewMemoryCache(clk, time.Hour)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "farmer@example.com", "123456", 10*time.Minute))

	value, ok, err := c.Get(ctx, "farmer@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "123456", value)

	clk.Advance(10 * time.Minute)
	_, ok, err = c.Get(ctx, "farmer@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "entry is gone exactly at its expiry")
	assert.Equal(t, 1, c.Size(), "expired entries stay until swept")
}

func TestMemoryCache_Sweep(t *testing.T) {
	clk := clock.NewManual(issuedAt)
	c := NewMemoryCache(clk, time.Hour)
	defer c.Close()
	ctx := context.Background()

	_ = c.Put(ctx, "short-1", "1", time.Minute)
	_ = c.Put(ctx, "short-2", "2", time.Minute)
	_ = c.Put(ctx, "long", "3", time.Hour)

	clk.Advance(2 * time.Minute)
	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 1, c.Size())

	_, ok, _ := c.Get(ctx, "long")
	assert.True(t, ok)
}

func TestMemoryCache_BackgroundSweeper(t *testing.T) {
	clk := clock.NewManual(issuedAt)
	c := NewMemoryCache(clk, 5*time.Millisecond)
	defer c.Close()

	_ = c.Put(context.Background(), "k", "v", time.Second)
	clk.Advance(time.Minute)

	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemoryCache_DeleteAndReplace(t *testing.T) {
	c := NewMemoryCache(clock.NewManual(issuedAt), 0)
	defer c.Close()
	ctx := context.Background()

	_ = c.Put(ctx, "k", "old", time.Minute)
	_ = c.Put(ctx, "k", "new", time.Minute)
	value, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "new", value)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx, "missing"))
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	c := NewMemoryCache(nil, 0)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(nil, time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			_ = c.Put(ctx, key, "v", time.Minute)
			_, _, _ = c.Get(ctx, key)
			if i%3 == 0 {
				_ = c.Delete(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Size(), 26)
}

func TestMemoryCache_Redeem(t *testing.T) {
	clk := clock.NewManual(issuedAt)
	c := NewMemoryCache(clk, time.Hour)
	defer c.Close()
	ctx := context.Background()

	res, err := c.Redeem(ctx, "k", "123456", 3)
	require.NoError(t, err)
	assert.Equal(t, RedeemMissing, res)

	require.NoError(t, c.Put(ctx, "k", "123456", time.Minute))
	res, _ = c.Redeem(ctx, "k", "000000", 3)
	assert.Equal(t, RedeemMismatch, res)
	res, _ = c.Redeem(ctx, "k", "123456", 3)
	assert.Equal(t, RedeemMatched, res)
	res, _ = c.Redeem(ctx, "k", "123456", 3)
	assert.Equal(t, RedeemMissing, res)

	require.NoError(t, c.Put(ctx, "k", "123456", time.Minute))
	clk.Advance(time.Minute)
	res, _ = c.Redeem(ctx, "k", "123456", 3)
	assert.Equal(t, RedeemMissing, res, "expired")
}

func TestMemoryCache_RedeemFailureLimit(t *testing.T) {
	c := NewMemoryCache(clock.NewManual(issuedAt), time.Hour)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", "123456", time.Minute))
	for i := 0; i < 2; i++ {
		res, _ := c.Redeem(ctx, "k", "000000", 3)
		assert.Equal(t, RedeemMismatch, res)
	}
	res, _ := c.Redeem(ctx, "k", "000000", 3)
	assert.Equal(t, RedeemExhausted, res)
	res, _ = c.Redeem(ctx, "k", "123456", 3)
	assert.Equal(t, RedeemMissing, res)

	// Put starts a fresh failure count.
	require.NoError(t, c.Put(ctx, "k", "123456", time.Minute))
	_, _ = c.Redeem(ctx, "k", "000000", 3)
	require.NoError(t, c.Put(ctx, "k", "654321", time.Minute))
	for i := 0; i < 2; i++ {
		res, _ = c.Redeem(ctx, "k", "000000", 3)
		assert.Equal(t, RedeemMismatch, res)
	}

	require.NoError(t, c.Put(ctx, "unlimited", "1", time.Minute))
	for i := 0; i < 10; i++ {
		res, _ = c.Redeem(ctx, "unlimited", "2", 0)
		assert.Equal(t, RedeemMismatch, res)
	}
}

func TestMemoryCache_RedeemConcurrentlyMatchesOnce(t *testing.T) {
	c := NewMemoryCache(nil, time.Hour)
	defer c.Close()
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "k", "123456", time.Minute))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		matched int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res, _ := c.Redeem(ctx, "k", "123456", 5); res == RedeemMatched {
				mu.Lock()
				matched++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, matched)
}
