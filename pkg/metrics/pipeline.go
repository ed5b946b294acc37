package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	LookupHit  = "hit"
	LookupMiss = "miss"
)

// PipelineMetrics counts upstream page traffic and result cache behaviour.
type PipelineMetrics struct {
	pages       prometheus.Counter
	orders      prometheus.Counter
	failures    prometheus.Counter
	collections prometheus.Histogram
	lookups     *prometheus.CounterVec
	evictions   prometheus.Counter
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	m := &PipelineMetrics{
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upstream_pages_total",
			Help: "Order listing pages fetched from the upstream API.",
		}),
		orders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upstream_orders_total",
			Help: "Orders received from the upstream API.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upstream_collection_failures_total",
			Help: "Order collections aborted by an upstream error.",
		}),
		collections: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upstream_collection_pages",
			Help:    "Pages walked per completed order collection.",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Result cache lookups by outcome.",
		}, []string{"result"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Result cache entries removed by the sweep.",
		}),
	}
	reg.MustRegister(m.pages, m.orders, m.failures, m.collections, m.lookups, m.evictions)
	return m
}

// ObservePage records one fetched page and the orders it carried.
func (m *PipelineMetrics) ObservePage(orders int) {
	if m == nil || m.pages == nil {
		return
	}
	m.pages.Inc()
	m.orders.Add(float64(orders))
}

// ObserveCollection records a finished collection and how many pages it took.
func (m *PipelineMetrics) ObserveCollection(pages int) {
	if m == nil || m.collections == nil {
		return
	}
	m.collections.Observe(float64(pages))
}

// IncCollectionFailure counts a collection aborted by an upstream error.
func (m *PipelineMetrics) IncCollectionFailure() {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.Inc()
}

// IncLookup counts a cache lookup with the given outcome.
func (m *PipelineMetrics) IncLookup(result string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(result)).Inc()
}

// AddEvictions counts entries removed by a sweep.
func (m *PipelineMetrics) AddEvictions(n int) {
	if m == nil || m.evictions == nil || n <= 0 {
		return
	}
	m.evictions.Add(float64(n))
}
