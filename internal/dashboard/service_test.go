package dashboard

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/refundlens/internal/analytics"
	"github.com/angelmondragon/refundlens/internal/cache"
	"github.com/angelmondragon/refundlens/internal/collector"
	"github.com/angelmondragon/refundlens/internal/orders"
	"github.com/angelmondragon/refundlens/pkg/enums"
	pkgerrors "github.com/angelmondragon/refundlens/pkg/errors"
	"github.com/angelmondragon/refundlens/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstream serves the orders created inside the requested range from a
// fixed catalogue, two per page.
type fakeUpstream struct {
	mu      sync.Mutex
	catalog []orders.RawOrder
	seeds   []url.Values
	err     error
}

func (f *fakeUpstream) FetchPage(ctx context.Context, params url.Values) (collector.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return collector.Page{}, f.err
	}
	if ctx.Err() != nil {
		return collector.Page{}, ctx.Err()
	}
	if params.Get("page_info") == "" {
		f.seeds = append(f.seeds, params)
	}

	lo, _ := time.Parse(time.RFC3339, params.Get("created_at_min"))
	hi, _ := time.Parse(time.RFC3339, params.Get("created_at_max"))
	if cursor := params.Get("page_info"); cursor != "" {
		lo, _ = time.Parse(time.RFC3339, cursor)
		hi, _ = time.Parse(time.RFC3339, params.Get("max"))
	}
	var matched []orders.RawOrder
	for _, o := range f.catalog {
		created := orders.ParseTimestamp(o.CreatedAt)
		if created != nil && !created.Before(lo) && !created.After(hi) {
			matched = append(matched, o)
		}
	}
	if len(matched) <= 2 {
		return collector.Page{Orders: matched}, nil
	}
	next := url.Values{}
	next.Set("page_info", orders.ParseTimestamp(matched[2].CreatedAt).Format(time.RFC3339))
	next.Set("max", hi.Format(time.RFC3339))
	return collector.Page{Orders: matched[:2], Next: next}, nil
}

func (f *fakeUpstream) sequences() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seeds)
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newHarness(t *testing.T, upstream *fakeUpstream) (Service, *clock) {
	t.Helper()
	logg := logger.New(logger.Options{Level: zerolog.Disabled, Output: &bytes.Buffer{}})
	coll, err := collector.New(collector.Params{Fetcher: upstream, Logger: logg, PageDelay: -1})
	require.NoError(t, err)
	clk := &clock{now: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)}
	rc, err := cache.New(cache.Params{Store: cache.NewMemoryStore(), Logger: logg, TTL: 5 * time.Minute, Now: clk.Now})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{Collector: coll, Cache: rc, Logger: logg, LookbackMonths: DefaultLookbackMonths})
	require.NoError(t, err)
	return svc, clk
}

func raw(id int64, created string, status enums.FinancialStatus, refundAt, amount string) orders.RawOrder {
	o := orders.RawOrder{
		ID:              id,
		CreatedAt:       created,
		FinancialStatus: status,
		Fulfillments:    []orders.Fulfillment{{Status: enums.FulfillmentStatusSuccess, CreatedAt: created}},
	}
	if refundAt != "" {
		o.Refunds = []orders.Refund{{CreatedAt: refundAt, Transactions: []orders.RefundTransaction{{Amount: amount}}}}
	}
	return o
}

func catalog() []orders.RawOrder {
	// order 1 never shipped, so its refund timing is unknown
	shipless := raw(1, "2023-06-10T10:00:00Z", enums.FinancialStatusRefunded, "2024-01-05T10:00:00Z", "30.00")
	shipless.Fulfillments = nil
	return []orders.RawOrder{
		shipless,
		raw(2, "2024-01-02T10:00:00Z", enums.FinancialStatusRefunded, "2024-01-05T10:00:00Z", "10.00"),
		raw(3, "2024-01-03T10:00:00Z", enums.FinancialStatusPaid, "", ""),
		raw(4, "2024-01-04T10:00:00Z", enums.FinancialStatusPartiallyRefunded, "2024-01-06T10:00:00Z", "4.00"),
		raw(5, "2024-01-20T10:00:00Z", enums.FinancialStatusRefunded, "2024-01-20T12:00:00Z", "8.00"),
	}
}

func window(t *testing.T, start, end string) analytics.Window {
	t.Helper()
	s, err := time.Parse(time.DateOnly, start)
	require.NoError(t, err)
	e, err := time.Parse(time.DateOnly, end)
	require.NoError(t, err)
	w, err := analytics.NewWindow(s, e, time.UTC)
	require.NoError(t, err)
	return w
}

func TestOrdersWidensTheFetchWindow(t *testing.T) {
	upstream := &fakeUpstream{catalog: catalog()}
	svc, _ := newHarness(t, upstream)

	got, err := svc.Orders(context.Background(), window(t, "2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	require.Len(t, got, 5, "the order placed last June is included")
	assert.Equal(t, int64(1), got[0].ID)

	require.Equal(t, 1, upstream.sequences())
	seed := upstream.seeds[0]
	assert.Equal(t, "2023-01-01T00:00:00Z", seed.Get("created_at_min"))
	assert.Equal(t, "2024-01-31T23:59:59Z", seed.Get("created_at_max"))
	assert.Equal(t, "any", seed.Get("status"))
}

func TestAnalyticsUsesTheOriginalWindow(t *testing.T) {
	svc, _ := newHarness(t, &fakeUpstream{catalog: catalog()})

	snap, err := svc.Analytics(context.Background(), window(t, "2024-01-01", "2024-01-31"))
	require.NoError(t, err)

	assert.Equal(t, 4, snap.TotalOrders, "order 1 was placed before the window")
	assert.Equal(t, 3, snap.TotalRefunds, "orders 1, 2 and 5; partial refund excluded")
	assert.Equal(t, 3.0, snap.AvgDaysToRefund, "order 5 is before_delivery")
	assert.Equal(t, "48", snap.TotalRefundAmount.String())
	assert.Equal(t, "16", snap.AvgRefundAmount.String())
	assert.InDelta(t, 75.0, snap.RefundRate, 1e-9)
}

func TestWideningDoesNotChangeInWindowOrders(t *testing.T) {
	w := window(t, "2024-01-01", "2024-01-31")
	upstream := &fakeUpstream{catalog: catalog()}
	svc, _ := newHarness(t, upstream)
	widened, err := svc.Orders(context.Background(), w)
	require.NoError(t, err)

	logg := logger.New(logger.Options{Level: zerolog.Disabled, Output: &bytes.Buffer{}})
	coll, err := collector.New(collector.Params{Fetcher: &fakeUpstream{catalog: catalog()}, Logger: logg, PageDelay: -1})
	require.NoError(t, err)
	rc, err := cache.New(cache.Params{Store: cache.NewMemoryStore(), Logger: logg})
	require.NoError(t, err)
	narrowSvc, err := NewService(ServiceParams{Collector: coll, Cache: rc, Logger: logg, LookbackMonths: 0})
	require.NoError(t, err)
	narrow, err := narrowSvc.Orders(context.Background(), w)
	require.NoError(t, err)

	inWindow := func(list []orders.EnrichedOrder) []orders.EnrichedOrder {
		var out []orders.EnrichedOrder
		for _, o := range list {
			if o.OrderDate != nil && w.Contains(o.OrderDate.Time) {
				out = append(out, o)
			}
		}
		return out
	}
	assert.Equal(t, narrow, inWindow(widened))
	assert.Len(t, widened, len(narrow)+1)
}

func TestOrdersCachedWithinTTL(t *testing.T) {
	upstream := &fakeUpstream{catalog: catalog()}
	svc, clk := newHarness(t, upstream)
	w := window(t, "2024-01-01", "2024-01-31")
	ctx := context.Background()

	_, err := svc.Orders(ctx, w)
	require.NoError(t, err)
	_, err = svc.Analytics(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.sequences(), "same parameters within ttl")

	clk.now = clk.now.Add(5 * time.Minute)
	_, err = svc.Orders(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.sequences(), "expired entry triggers a new sequence")

	_, err = svc.Orders(ctx, window(t, "2024-01-01", "2024-01-15"))
	require.NoError(t, err)
	assert.Equal(t, 3, upstream.sequences(), "different window is a different key")
}

func TestOrdersSurvivesCallerCancellation(t *testing.T) {
	upstream := &fakeUpstream{catalog: catalog()}
	svc, _ := newHarness(t, upstream)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := svc.Orders(ctx, window(t, "2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestOrdersPropagatesUpstreamFailure(t *testing.T) {
	upstream := &fakeUpstream{catalog: catalog(), err: errors.New("502 bad gateway")}
	svc, _ := newHarness(t, upstream)

	_, err := svc.Orders(context.Background(), window(t, "2024-01-01", "2024-01-31"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUpstream))

	_, err = svc.Analytics(context.Background(), window(t, "2024-01-01", "2024-01-31"))
	assert.Error(t, err)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

func TestFetchWindow(t *testing.T) {
	w := window(t, "2024-03-31", "2024-04-02")
	got := FetchWindow(w, 1)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), got.Start, "AddDate normalizes Feb 31")
	assert.Equal(t, w.End, got.End)
}

func TestOrdersAnnotatesCacheOutcomeAndUpstreamPages(t *testing.T) {
	svc, _ := newHarness(t, &fakeUpstream{catalog: catalog()})
	w := window(t, "2024-01-01", "2024-01-31")

	ctx, notes := logger.WithAnnotations(context.Background())
	_, err := svc.Orders(ctx, w)
	require.NoError(t, err)
	first := notes.Fields()
	assert.Equal(t, "miss", first["cache"])
	assert.Equal(t, 3, first["upstream_pages"])
	assert.Equal(t, 5, first["upstream_orders"])

	ctx, notes = logger.WithAnnotations(context.Background())
	_, err = svc.Orders(ctx, w)
	require.NoError(t, err)
	second := notes.Fields()
	assert.Equal(t, "hit", second["cache"])
	assert.NotContains(t, second, "upstream_pages")
}
