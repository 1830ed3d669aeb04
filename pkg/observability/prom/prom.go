// Package prom implements the observability hooks with Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	rec := prom.New(reg)
//	observability.SetSectionHooks(rec)
//	observability.SetCacheHooks(rec)
//	observability.SetHTTPHooks(rec)
//	http.Handle("/metrics", prom.Handler(reg))
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/respimg/pkg/observability"
)

const namespace = "respimg"

// Recorder implements observability.SectionHooks, CacheHooks and HTTPHooks.
type Recorder struct {
	registrations   *prometheus.CounterVec
	begins          *prometheus.CounterVec
	ends            *prometheus.CounterVec
	discarded       prometheus.Counter
	computations    *prometheus.CounterVec
	computeDuration prometheus.Histogram
	cacheOps        *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates a Recorder and registers its metrics with reg.
// A nil reg uses a fresh private registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Recorder{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "section_registrations_total",
			Help:      "Section registration attempts by result",
		}, []string{"result"}),
		begins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "section_begins_total",
			Help:      "Section begin calls by result",
		}, []string{"result"}),
		ends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "section_ends_total",
			Help:      "Section end calls by result",
		}, []string{"result"}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "section_discarded_total",
			Help:      "Unclosed sections discarded while recovering from a mismatched end",
		}),
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sizes_computations_total",
			Help:      "Sizes computations by result",
		}, []string{"result"}),
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sizes_compute_duration_seconds",
			Help:      "Duration of sizes computations, including post-processing",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache operations by key type and outcome",
		}, []string{"type", "op"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		r.registrations, r.begins, r.ends, r.discarded,
		r.computations, r.computeDuration,
		r.cacheOps, r.cacheBytes,
		r.requests, r.requestDuration,
	)
	return r
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnSectionRegistered implements observability.SectionHooks.
func (r *Recorder) OnSectionRegistered(_ context.Context, _ string, err error) {
	if err != nil {
		r.registrations.WithLabelValues("rejected").Inc()
		return
	}
	r.registrations.WithLabelValues("ok").Inc()
}

// OnSectionBegin implements observability.SectionHooks.
func (r *Recorder) OnSectionBegin(_ context.Context, _ string, pushed bool) {
	if pushed {
		r.begins.WithLabelValues("ok").Inc()
		return
	}
	r.begins.WithLabelValues("unknown").Inc()
}

// OnSectionEnd implements observability.SectionHooks.
func (r *Recorder) OnSectionEnd(_ context.Context, _ string, removed int) {
	switch {
	case removed == 0:
		r.ends.WithLabelValues("ignored").Inc()
	case removed == 1:
		r.ends.WithLabelValues("ok").Inc()
	default:
		r.ends.WithLabelValues("recovered").Inc()
		r.discarded.Add(float64(removed - 1))
	}
}

// OnSizesComputed implements observability.SectionHooks.
func (r *Recorder) OnSizesComputed(_ context.Context, id string, d time.Duration, err error) {
	if id == "" && err == nil {
		r.computations.WithLabelValues("passthrough").Inc()
		return
	}
	r.computations.WithLabelValues(result(err)).Inc()
	r.computeDuration.Observe(d.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (r *Recorder) OnCacheHit(_ context.Context, keyType string) {
	r.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Recorder) OnCacheMiss(_ context.Context, keyType string) {
	r.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Recorder) OnCacheSet(_ context.Context, keyType string, size int) {
	r.cacheOps.WithLabelValues(keyType, "set").Inc()
	r.cacheBytes.Add(float64(size))
}

// OnCacheError implements observability.CacheHooks.
func (r *Recorder) OnCacheError(_ context.Context, keyType string, _ error) {
	r.cacheOps.WithLabelValues(keyType, "error").Inc()
}

// OnRequest implements observability.HTTPHooks.
func (r *Recorder) OnRequest(context.Context, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (r *Recorder) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.SectionHooks = (*Recorder)(nil)
	_ observability.CacheHooks   = (*Recorder)(nil)
	_ observability.HTTPHooks    = (*Recorder)(nil)
)
