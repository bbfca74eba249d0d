package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/pfrederiksen/masters-pool/internal/clock"
	"github.com/pfrederiksen/masters-pool/internal/logger"
	"github.com/pfrederiksen/masters-pool/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long fetched standings are served before refetching.
const DefaultTTL = 600 * time.Second

// Cache memoizes the leaderboard for a fixed window.
//
// The mapping is only ever replaced whole. A failed fetch leaves the previous
// mapping in place; a successful fetch with zero rows replaces it. Results are
// applied in the order their fetches started, so a slow fetch never overwrites
// standings from one that began after it.
type Cache struct {
	fetcher      Fetcher
	name         string
	ttl          time.Duration
	fetchTimeout time.Duration
	clock        clock.Clock
	metrics      *metrics.Recorder

	mu        sync.RWMutex
	mapping   Mapping
	lastFetch time.Time
	fetched   bool
	// sequence of the last fetch started, and of the one that set mapping
	started uint64
	applied uint64

	group singleflight.Group
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithTTL overrides the cache window
func WithTTL(d time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = d
	}
}

// WithClock injects the time source used for expiry
func WithClock(clk clock.Clock) CacheOption {
	return func(c *Cache) {
		c.clock = clk
	}
}

// WithMetrics records fetch and cache metrics
func WithMetrics(r *metrics.Recorder) CacheOption {
	return func(c *Cache) {
		c.metrics = r
	}
}

// WithFetchTimeout caps each fetch on top of the fetcher's own limits; 0 means no cap
func WithFetchTimeout(d time.Duration) CacheOption {
	return func(c *Cache) {
		c.fetchTimeout = d
	}
}

// NewCache creates an empty, never-fetched cache in front of f
func NewCache(f Fetcher, opts ...CacheOption) *Cache {
	c := &Cache{
		fetcher: f,
		name:    fetcherName(f),
		ttl:     DefaultTTL,
		clock:   &clock.DefaultClock{},
		mapping: Mapping{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mapping returns the cached standings, fetching first if they are older than
// the cache window. Concurrent stale reads share one fetch. If ctx ends while
// waiting, Mapping returns ctx.Err() but the fetch still completes and
// populates the cache for later readers.
func (c *Cache) Mapping(ctx context.Context) (Mapping, error) {
	if m, ok := c.fresh(); ok {
		c.metrics.CacheHit()
		return m, nil
	}
	c.metrics.CacheMiss()

	ch := c.group.DoChan("mapping", func() (interface{}, error) {
		// a caller ahead of us in the group may already have refreshed
		if m, ok := c.fresh(); ok {
			return m, nil
		}
		seq := c.begin()
		c.store(c.fetch(ctx), true, seq)
		return c.current(), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Mapping), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Refresh fetches unconditionally, updates the cache and returns the raw rows
// so the caller can reconcile them against stored history. Like Mapping, an
// abandoned caller does not cancel the fetch.
func (c *Cache) Refresh(ctx context.Context) ([]PlayerScore, error) {
	done := make(chan Result, 1)
	seq := c.begin()
	go func() {
		res := c.fetch(ctx)
		c.store(res, false, seq)
		done <- res
	}()

	select {
	case res := <-done:
		return res.Players(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LastFetch returns when the mapping or its expiry was last updated; zero if never.
func (c *Cache) LastFetch() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFetch
}

// Stale reports whether the next Mapping call would fetch.
func (c *Cache) Stale() bool {
	_, ok := c.fresh()
	return !ok
}

// TTL returns the configured cache window
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) fresh() (Mapping, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.fetched || c.clock.Now().Sub(c.lastFetch) >= c.ttl {
		return nil, false
	}
	return c.mapping, true
}

func (c *Cache) current() Mapping {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mapping
}

// begin numbers a fetch before it starts.
func (c *Cache) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
	return c.started
}

// fetch runs the fetcher on a context detached from the caller's cancellation.
func (c *Cache) fetch(ctx context.Context) Result {
	fctx := context.WithoutCancel(ctx)
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(fctx, c.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	res := c.fetcher.Fetch(fctx)
	c.metrics.ObserveFetch(c.name, time.Since(start), len(res.Scores), res.Err)
	return res
}

// store applies a fetch result. Failures keep the old mapping; a lazy read
// still advances the timestamp so a broken source is not hit on every request,
// while a forced refresh leaves it so the next read tries again. Results from
// fetches that started before the current mapping's are dropped.
func (c *Cache) store(res Result, lazy bool, seq uint64) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.applied {
		logger.Debug("Dropping leaderboard from superseded fetch", logger.Fields{
			"fetcher": c.name,
			"seq":     seq,
			"applied": c.applied,
			"ok":      res.OK(),
		})
		return
	}

	if !res.OK() {
		if lazy {
			c.lastFetch = now
			c.fetched = true
		}
		logger.Warn("Keeping previous leaderboard after failed fetch", logger.Fields{
			"fetcher": c.name,
			"players": len(c.mapping),
			"lazy":    lazy,
		})
		return
	}

	if len(res.Scores) == 0 && len(c.mapping) > 0 {
		logger.Info("Leaderboard fetch returned no players; clearing standings", logger.Fields{
			"fetcher":  c.name,
			"previous": len(c.mapping),
		})
	}

	c.mapping = NewMapping(res.Scores)
	c.applied = seq
	c.lastFetch = now
	c.fetched = true
	c.metrics.SetLastFetch(now)

	logger.Debug("Leaderboard cached", logger.Fields{
		"fetcher": c.name,
		"players": len(c.mapping),
	})
}
