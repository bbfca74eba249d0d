// Package metrics provides Prometheus metrics for masters-pool.
//
// A Recorder owns a private registry so tests and multiple instances never
// collide on the global default registerer. All Recorder methods are safe on
// a nil receiver, which lets components run without metrics wired in.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultNamespace = "masters_pool"

// Outcome labels for fetch_total.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder holds the collectors for the leaderboard pipeline and API.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	fetchPlayers   prometheus.Gauge
	cacheReads     *prometheus.CounterVec
	cacheLastFetch prometheus.Gauge
	refreshChanges prometheus.Counter
	httpRequests   *prometheus.CounterVec
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(r *Recorder) {
		r.namespace = ns
	}
}

// WithBuckets overrides the fetch duration histogram buckets.
func WithBuckets(b []float64) Option {
	return func(r *Recorder) {
		r.buckets = b
	}
}

// New creates a Recorder registered on its own registry.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: defaultNamespace,
		buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	f := promauto.With(r.registry)

	r.fetchTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "fetch_total",
		Help:      "Leaderboard fetch attempts by fetcher and outcome.",
	}, []string{"fetcher", "outcome"})

	r.fetchDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Wall time of leaderboard fetches.",
		Buckets:   r.buckets,
	}, []string{"fetcher"})

	r.fetchPlayers = f.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "fetch_players",
		Help:      "Players returned by the last successful fetch.",
	})

	r.cacheReads = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "cache_reads_total",
		Help:      "Cached leaderboard reads by result.",
	}, []string{"result"})

	r.cacheLastFetch = f.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "cache_last_fetch_timestamp_seconds",
		Help:      "Unix time the cached mapping was last replaced.",
	})

	r.refreshChanges = f.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "refresh_changes_total",
		Help:      "Player score changes recorded by forced refreshes.",
	})

	r.httpRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "http_requests_total",
		Help:      "API requests by route pattern and status code.",
	}, []string{"route", "code"})

	return r
}

// Registry returns the registry to expose, e.g. through promhttp.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveFetch records one fetch attempt.
func (r *Recorder) ObserveFetch(fetcher string, d time.Duration, players int, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.fetchTotal.WithLabelValues(fetcher, outcome).Inc()
	r.fetchDuration.WithLabelValues(fetcher).Observe(d.Seconds())
	if err == nil {
		r.fetchPlayers.Set(float64(players))
	}
}

// CacheHit counts a read served from the cached mapping.
func (r *Recorder) CacheHit() {
	if r == nil {
		return
	}
	r.cacheReads.WithLabelValues("hit").Inc()
}

// CacheMiss counts a read that had to fetch.
func (r *Recorder) CacheMiss() {
	if r == nil {
		return
	}
	r.cacheReads.WithLabelValues("miss").Inc()
}

// SetLastFetch records when the cache was last replaced.
func (r *Recorder) SetLastFetch(t time.Time) {
	if r == nil {
		return
	}
	r.cacheLastFetch.Set(float64(t.Unix()))
}

// AddRefreshChanges adds n recorded score changes.
func (r *Recorder) AddRefreshChanges(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.refreshChanges.Add(float64(n))
}

// HTTPRequest counts one served API request.
func (r *Recorder) HTTPRequest(route string, code int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
