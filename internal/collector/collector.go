package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/refundlens/internal/orders"
	pkgerrors "github.com/angelmondragon/refundlens/pkg/errors"
	"github.com/angelmondragon/refundlens/pkg/logger"
	"github.com/angelmondragon/refundlens/pkg/metrics"
	"github.com/angelmondragon/refundlens/pkg/pagination"
)

const (
	DefaultPageDelay = 500 * time.Millisecond

	paramStatus       = "status"
	paramCreatedAtMin = "created_at_min"
	paramCreatedAtMax = "created_at_max"
	paramLimit        = "limit"
	paramFields       = "fields"
	statusAny         = "any"
)

// PageFetcher retrieves one page of the order listing for a full parameter set.
type PageFetcher interface {
	FetchPage(ctx context.Context, params url.Values) (Page, error)
}

// Page is one upstream response. Next holds the complete parameter set of the
// following page and is empty on the last page.
type Page struct {
	Orders []orders.RawOrder
	Next   url.Values
}

// HasNext reports whether another page follows.
func (p Page) HasNext() bool {
	return len(p.Next) > 0
}

// DateWindow bounds orders by creation time, inclusive on both ends.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// QueryParams builds the seed parameters of a collection: every order status,
// the creation window, the page size and the projected fields.
func QueryParams(window DateWindow, limit int) url.Values {
	params := url.Values{}
	params.Set(paramStatus, statusAny)
	params.Set(paramCreatedAtMin, window.Start.Format(time.RFC3339))
	params.Set(paramCreatedAtMax, window.End.Format(time.RFC3339))
	params.Set(paramLimit, strconv.Itoa(pagination.NormalizeLimit(limit)))
	params.Set(paramFields, strings.Join(orders.ProjectedFields, ","))
	return params
}

// Params configure a Collector.
type Params struct {
	Fetcher   PageFetcher
	Logger    *logger.Logger
	Metrics   *metrics.PipelineMetrics
	PageDelay time.Duration
	PageLimit int
}

// Collector walks every page of the order listing sequentially.
type Collector struct {
	fetcher   PageFetcher
	logg      *logger.Logger
	metrics   *metrics.PipelineMetrics
	delay     time.Duration
	pageLimit int
	sleep     func(ctx context.Context, d time.Duration) error
}

// New validates the params and returns a Collector. A negative delay means no pause.
func New(params Params) (*Collector, error) {
	if params.Fetcher == nil {
		return nil, fmt.Errorf("page fetcher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	delay := params.PageDelay
	if delay == 0 {
		delay = DefaultPageDelay
	}
	if delay < 0 {
		delay = 0
	}
	return &Collector{
		fetcher:   params.Fetcher,
		logg:      params.Logger,
		metrics:   params.Metrics,
		delay:     delay,
		pageLimit: pagination.NormalizeLimit(params.PageLimit),
		sleep:     sleepContext,
	}, nil
}

// Params returns the seed parameters the collector would use for window.
func (c *Collector) Params(window DateWindow) url.Values {
	return QueryParams(window, c.pageLimit)
}

// Collect gathers every order created within window.
func (c *Collector) Collect(ctx context.Context, window DateWindow) ([]orders.RawOrder, error) {
	return c.CollectParams(ctx, c.Params(window))
}

// CollectParams follows the page chain starting at params and returns the
// concatenation of all pages in upstream order. Any page failure fails the
// whole collection; there are no retries and no partial results.
func (c *Collector) CollectParams(ctx context.Context, params url.Values) ([]orders.RawOrder, error) {
	var (
		all  []orders.RawOrder
		page int
		next = cloneValues(params)
	)
	for {
		page++
		result, err := c.fetcher.FetchPage(ctx, next)
		if err != nil {
			c.metrics.IncCollectionFailure()
			c.logg.Error(c.logg.WithField(ctx, "page", page), "order page fetch failed", err)
			return nil, upstreamError(err, page)
		}
		all = append(all, result.Orders...)
		c.metrics.ObservePage(len(result.Orders))
		c.logg.Info(c.logg.WithFields(ctx, map[string]any{
			"page":     page,
			"orders":   len(result.Orders),
			"total":    len(all),
			"has_next": result.HasNext(),
		}), "order page fetched")

		if !result.HasNext() {
			break
		}
		next = result.Next
		if err := c.sleep(ctx, c.delay); err != nil {
			c.metrics.IncCollectionFailure()
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "order collection interrupted")
		}
	}
	c.metrics.ObserveCollection(page)
	logger.Annotate(ctx, "upstream_pages", page)
	logger.Annotate(ctx, "upstream_orders", len(all))
	if all == nil {
		all = []orders.RawOrder{}
	}
	return all, nil
}

func upstreamError(err error, page int) error {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeUpstream {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, fmt.Sprintf("fetching order page %d failed", page))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}
