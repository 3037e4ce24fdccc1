package verification

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"agri-marketplace/internal/common/clock"
)

const DefaultSweepInterval = 5 * time.Minute

type entry struct {
	value     string
	expiresAt time.Time
	failures  int
}

// MemoryCache keeps codes in process. Expired entries are invisible to Get
// immediately and are removed by Sweep, which a background loop calls on an
// interval until Close.
type MemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	clock     clock.Clock
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryCache starts the sweeper. A non-positive interval uses
// DefaultSweepInterval.
func NewMemoryCache(clk clock.Clock, sweepInterval time.Duration) *MemoryCache {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	c := &MemoryCache{
		entries:  make(map[string]entry),
		clock:    clk,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.sweepLoop(sweepInterval)

	return c
}

func (c *MemoryCache) Put(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.clock.Now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.clock.Now().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Redeem(_ context.Context, key, candidate string, maxFailures int) (RedeemResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.clock.Now().Before(e.expiresAt) {
		return RedeemMissing, nil
	}
	if subtle.ConstantTimeCompare([]byte(e.value), []byte(candidate)) == 1 {
		delete(c.entries, key)
		return RedeemMatched, nil
	}

	e.failures++
	if maxFailures > 0 && e.failures >= maxFailures {
		delete(c.entries, key)
		return RedeemExhausted, nil
	}
	c.entries[key] = e
	return RedeemMismatch, nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Size counts stored entries, expired ones included until swept.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the sweeper. Safe to call more than once.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
