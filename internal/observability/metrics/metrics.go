// Package metrics provides Prometheus metrics for the review write path and food item cache.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dining"

// Metrics holds every collector exported by the API. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	reviewSubmissionsTotal *prometheus.CounterVec
	reviewBufferDepth      prometheus.Gauge
	reviewFlushesTotal     *prometheus.CounterVec
	reviewBatchSize        prometheus.Histogram
	reviewDeadLetterTotal  prometheus.Counter
	foodItemCacheTotal     *prometheus.CounterVec
}

// New creates and registers the API metrics on a private registry.
func New() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.reviewSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_submissions_total",
			Help:      "Review submissions by write path and outcome",
		},
		[]string{"path", "status"}, // path: direct, buffered
	)
	m.reviewBufferDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "review_buffer_depth",
		Help:      "Submissions waiting in the write buffer",
	})
	m.reviewFlushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_batch_flushes_total",
			Help:      "Batch inserts performed by the flusher",
		},
		[]string{"status"},
	)
	m.reviewBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "review_batch_size",
		Help:      "Reviews per batch insert",
		Buckets:   prometheus.LinearBuckets(1, 5, 10),
	})
	m.reviewDeadLetterTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "review_dead_letter_total",
		Help:      "Reviews recorded in the dead-letter collection after a failed batch",
	})
	m.foodItemCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "food_item_cache_requests_total",
			Help:      "Food item listing lookups by cache result",
		},
		[]string{"result"}, // hit, miss, bypass
	)

	for _, c := range []prometheus.Collector{
		m.reviewSubmissionsTotal,
		m.reviewBufferDepth,
		m.reviewFlushesTotal,
		m.reviewBatchSize,
		m.reviewDeadLetterTotal,
		m.foodItemCacheTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveSubmission(path, status string) {
	if m == nil {
		return
	}
	m.reviewSubmissionsTotal.WithLabelValues(path, status).Inc()
}

func (m *Metrics) SetBufferDepth(depth int) {
	if m == nil {
		return
	}
	m.reviewBufferDepth.Set(float64(depth))
}

func (m *Metrics) ObserveFlush(status string, size int) {
	if m == nil {
		return
	}
	m.reviewFlushesTotal.WithLabelValues(status).Inc()
	m.reviewBatchSize.Observe(float64(size))
}

func (m *Metrics) ObserveDeadLetter(count int) {
	if m == nil {
		return
	}
	m.reviewDeadLetterTotal.Add(float64(count))
}

// ObserveCache implements application.CacheRecorder.
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.foodItemCacheTotal.WithLabelValues(result).Inc()
}
