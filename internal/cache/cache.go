package cache

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/angelmondragon/refundlens/internal/orders"
	"github.com/angelmondragon/refundlens/pkg/logger"
	"github.com/angelmondragon/refundlens/pkg/metrics"
)

// DefaultTTL is how long a captured collection is served.
const DefaultTTL = 5 * time.Minute

// ComputeFunc produces a fresh collection on a miss.
type ComputeFunc func(ctx context.Context) ([]orders.RawOrder, error)

// Params configure a ResultCache.
type Params struct {
	Store   Store
	Logger  *logger.Logger
	Metrics *metrics.PipelineMetrics
	TTL     time.Duration
	Now     func() time.Time
}

// ResultCache serves order collections captured within the TTL and recomputes
// anything older. Reads never extend an entry's life. Concurrent misses on the
// same key each compute; the last write wins.
type ResultCache struct {
	store   Store
	logg    *logger.Logger
	metrics *metrics.PipelineMetrics
	ttl     time.Duration
	now     func() time.Time
}

func New(params Params) (*ResultCache, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &ResultCache{
		store:   params.Store,
		logg:    params.Logger,
		metrics: params.Metrics,
		ttl:     ttl,
		now:     now,
	}, nil
}

// Key is the deterministic encoding of the upstream query: keys sorted, values
// in the order given.
func Key(params url.Values) string {
	return params.Encode()
}

// TTL returns the freshness window.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// GetOrCompute returns the cached collection for key when fresh; otherwise it
// runs compute and stores the result. Compute errors are returned unchanged and
// nothing is stored. A failing store degrades to a pass-through.
func (c *ResultCache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) ([]orders.RawOrder, error) {
	ctx = c.logg.WithField(ctx, "cache_key", key)
	entry, ok, err := c.store.Load(ctx, key)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "cache load failed")
	}
	if ok && entry.Fresh(c.now(), c.ttl) {
		c.metrics.IncLookup(metrics.LookupHit)
		logger.Annotate(ctx, "cache", metrics.LookupHit)
		c.logg.Debug(ctx, "cache hit")
		return entry.Orders, nil
	}
	c.metrics.IncLookup(metrics.LookupMiss)
	logger.Annotate(ctx, "cache", metrics.LookupMiss)

	result, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(ctx, key, Entry{Orders: result, CapturedAt: c.now()}); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "cache save failed")
	}
	return result, nil
}

// Sweep drops every entry older than the TTL.
func (c *ResultCache) Sweep(ctx context.Context) (int, error) {
	removed, err := c.store.Sweep(ctx, c.now(), c.ttl)
	if err != nil {
		return 0, fmt.Errorf("sweep cache: %w", err)
	}
	c.metrics.AddEvictions(removed)
	return removed, nil
}
