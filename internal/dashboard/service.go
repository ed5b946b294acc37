package dashboard

import (
	"context"
	"net/url"

	"github.com/angelmondragon/refundlens/internal/analytics"
	"github.com/angelmondragon/refundlens/internal/cache"
	"github.com/angelmondragon/refundlens/internal/collector"
	"github.com/angelmondragon/refundlens/internal/orders"
	pkgerrors "github.com/angelmondragon/refundlens/pkg/errors"
	"github.com/angelmondragon/refundlens/pkg/logger"
)

// DefaultLookbackMonths widens every collection backward so orders placed
// before a window but refunded inside it are still seen.
const DefaultLookbackMonths = 12

type orderCollector interface {
	Params(window collector.DateWindow) url.Values
	CollectParams(ctx context.Context, params url.Values) ([]orders.RawOrder, error)
}

type resultCache interface {
	GetOrCompute(ctx context.Context, key string, compute cache.ComputeFunc) ([]orders.RawOrder, error)
}

// ServiceParams groups dependencies for the dashboard service.
type ServiceParams struct {
	Collector      orderCollector
	Cache          resultCache
	Logger         *logger.Logger
	LookbackMonths int
}

// Service serves enriched orders and refund statistics for a date window.
type Service interface {
	// Orders returns every enriched order created from the widened window start
	// through the window end, in upstream order.
	Orders(ctx context.Context, window analytics.Window) ([]orders.EnrichedOrder, error)
	// Analytics aggregates over exactly window, using the widened collection.
	Analytics(ctx context.Context, window analytics.Window) (analytics.Snapshot, error)
}

type service struct {
	collector orderCollector
	cache     resultCache
	logg      *logger.Logger
	lookback  int
}

// NewService builds a dashboard service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Collector == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order collector is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "result cache is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	lookback := params.LookbackMonths
	if lookback < 0 {
		lookback = 0
	}
	return &service{
		collector: params.Collector,
		cache:     params.Cache,
		logg:      params.Logger,
		lookback:  lookback,
	}, nil
}

func (s *service) Orders(ctx context.Context, window analytics.Window) ([]orders.EnrichedOrder, error) {
	raw, err := s.collect(ctx, window)
	if err != nil {
		return nil, err
	}
	return orders.EnrichAll(raw), nil
}

func (s *service) Analytics(ctx context.Context, window analytics.Window) (analytics.Snapshot, error) {
	enriched, err := s.Orders(ctx, window)
	if err != nil {
		return analytics.Snapshot{}, err
	}
	return analytics.Aggregate(enriched, window), nil
}

// FetchWindow widens the start of window backward by lookbackMonths.
func FetchWindow(window analytics.Window, lookbackMonths int) collector.DateWindow {
	return collector.DateWindow{
		Start: window.Start.AddDate(0, -lookbackMonths, 0),
		End:   window.End,
	}
}

// collect runs detached from the caller's cancellation so a collection that has
// started always completes and lands in the cache.
func (s *service) collect(ctx context.Context, window analytics.Window) ([]orders.RawOrder, error) {
	fetch := FetchWindow(window, s.lookback)
	params := s.collector.Params(fetch)
	detached := s.logg.WithWindow(context.WithoutCancel(ctx), fetch.Start, fetch.End)
	return s.cache.GetOrCompute(detached, cache.Key(params), func(ctx context.Context) ([]orders.RawOrder, error) {
		s.logg.Info(ctx, "collecting orders")
		return s.collector.CollectParams(ctx, params)
	})
}
