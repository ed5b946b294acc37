package cache

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/refundlens/internal/cron"
	"github.com/angelmondragon/refundlens/internal/orders"
	"github.com/angelmondragon/refundlens/pkg/logger"
	"github.com/angelmondragon/refundlens/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.Disabled, Output: &bytes.Buffer{}})
}

func newTestCache(t *testing.T, store Store, reg prometheus.Registerer) (*ResultCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c, err := New(Params{
		Store:   store,
		Logger:  testLogger(),
		Metrics: metrics.NewPipelineMetrics(reg),
		TTL:     5 * time.Minute,
		Now:     clock.Now,
	})
	require.NoError(t, err)
	return c, clock
}

type countingCompute struct {
	calls  int
	result []orders.RawOrder
	err    error
}

func (c *countingCompute) fn(context.Context) ([]orders.RawOrder, error) {
	c.calls++
	return c.result, c.err
}

func TestGetOrComputeServesFreshEntries(t *testing.T) {
	c, clock := newTestCache(t, NewMemoryStore(), nil)
	compute := &countingCompute{result: []orders.RawOrder{{ID: 1}}}
	ctx := context.Background()

	got, err := c.GetOrCompute(ctx, "k", compute.fn)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	clock.Advance(4*time.Minute + 59*time.Second)
	got, err = c.GetOrCompute(ctx, "k", compute.fn)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, compute.calls, "second call within ttl is a hit")
}

func TestGetOrComputeRecomputesStaleEntries(t *testing.T) {
	c, clock := newTestCache(t, NewMemoryStore(), nil)
	compute := &countingCompute{result: []orders.RawOrder{{ID: 1}}}
	ctx := context.Background()

	_, err := c.GetOrCompute(ctx, "k", compute.fn)
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)
	_, err = c.GetOrCompute(ctx, "k", compute.fn)
	require.NoError(t, err)
	assert.Equal(t, 2, compute.calls, "an entry exactly ttl old is stale")
}

func TestGetOrComputeReadsDoNotRefresh(t *testing.T) {
	c, clock := newTestCache(t, NewMemoryStore(), nil)
	compute := &countingCompute{}
	ctx := context.Background()

	_, _ = c.GetOrCompute(ctx, "k", compute.fn)
	clock.Advance(3 * time.Minute)
	_, _ = c.GetOrCompute(ctx, "k", compute.fn)
	clock.Advance(3 * time.Minute)
	_, _ = c.GetOrCompute(ctx, "k", compute.fn)
	assert.Equal(t, 2, compute.calls)
}

func TestGetOrComputeKeysAreIndependent(t *testing.T) {
	c, _ := newTestCache(t, NewMemoryStore(), nil)
	compute := &countingCompute{}
	ctx := context.Background()

	_, _ = c.GetOrCompute(ctx, "a", compute.fn)
	_, _ = c.GetOrCompute(ctx, "b", compute.fn)
	_, _ = c.GetOrCompute(ctx, "a", compute.fn)
	assert.Equal(t, 2, compute.calls)
}

func TestGetOrComputeDoesNotStoreFailures(t *testing.T) {
	store := NewMemoryStore()
	c, _ := newTestCache(t, store, nil)
	boom := errors.New("upstream down")
	compute := &countingCompute{err: boom}

	_, err := c.GetOrCompute(context.Background(), "k", compute.fn)
	assert.ErrorIs(t, err, boom)
	_, stored, _ := store.Load(context.Background(), "k")
	assert.False(t, stored)

	_, err = c.GetOrCompute(context.Background(), "k", compute.fn)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, compute.calls)
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("store offline")
}
func (brokenStore) Save(context.Context, string, Entry) error { return errors.New("store offline") }
func (brokenStore) Sweep(context.Context, time.Time, time.Duration) (int, error) {
	return 0, errors.New("store offline")
}

func TestGetOrComputePassesThroughBrokenStore(t *testing.T) {
	c, _ := newTestCache(t, brokenStore{}, nil)
	compute := &countingCompute{result: []orders.RawOrder{{ID: 9}}}

	got, err := c.GetOrCompute(context.Background(), "k", compute.fn)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got[0].ID)

	_, err = c.Sweep(context.Background())
	assert.Error(t, err)
}

func TestSweepRemovesOnlyExpiredEntries(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := NewMemoryStore()
	c, clock := newTestCache(t, store, reg)
	ctx := context.Background()
	compute := &countingCompute{}

	_, _ = c.GetOrCompute(ctx, "old", compute.fn)
	clock.Advance(4 * time.Minute)
	_, _ = c.GetOrCompute(ctx, "new", compute.fn)
	clock.Advance(2 * time.Minute)

	removed, err := c.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, ok, _ := store.Load(ctx, "new")
	assert.True(t, ok)
	_, ok, _ = store.Load(ctx, "old")
	assert.False(t, ok)

	assert.Equal(t, float64(1), counterValue(t, reg, "cache_evictions_total", ""))
	assert.Equal(t, float64(2), counterValue(t, reg, "cache_lookups_total", "miss"))
}

func TestSweepJobRunsThroughCron(t *testing.T) {
	store := NewMemoryStore()
	c, clock := newTestCache(t, store, nil)
	_, _ = c.GetOrCompute(context.Background(), "k", (&countingCompute{}).fn)
	clock.Advance(10 * time.Minute)

	var job cron.Job = NewSweepJob(c, testLogger())
	assert.Equal(t, SweepJobName, job.Name())
	require.NoError(t, job.Run(context.Background()))
	_, ok, _ := store.Load(context.Background(), "k")
	assert.False(t, ok)
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a := url.Values{}
	a.Set("status", "any")
	a.Set("limit", "250")
	b := url.Values{}
	b.Set("limit", "250")
	b.Set("status", "any")
	assert.Equal(t, Key(a), Key(b))
	assert.Equal(t, "limit=250&status=any", Key(a))

	b.Set("created_at_min", "2024-01-01T00:00:00Z")
	assert.NotEqual(t, Key(a), Key(b))
}

func TestConcurrentAccessIsSafe(t *testing.T) {
	c, _ := newTestCache(t, NewMemoryStore(), nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrCompute(context.Background(), "k", func(context.Context) ([]orders.RawOrder, error) {
				return []orders.RawOrder{{ID: 1}}, nil
			})
			_, _ = c.Sweep(context.Background())
		}()
	}
	wg.Wait()
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" || hasLabelValue(m, label) {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s{%s} not found", name, label)
	return 0
}

func hasLabelValue(m *dto.Metric, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetValue() == value {
			return true
		}
	}
	return false
}

func TestNewDefaultsTTL(t *testing.T) {
	_, err := New(Params{Logger: testLogger()})
	assert.Error(t, err)

	c, err := New(Params{Store: NewMemoryStore(), Logger: testLogger()})
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, c.TTL())
}
