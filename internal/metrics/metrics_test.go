package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	r := New()

	r.ObserveFetch("http", 2*time.Second, 88, nil)
	r.ObserveFetch("http", time.Second, 0, errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchTotal.WithLabelValues("http", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchTotal.WithLabelValues("http", OutcomeError)))
	// failed fetch must not clobber the player gauge
	assert.Equal(t, 88.0, testutil.ToFloat64(r.fetchPlayers))
}

func TestCacheCounters(t *testing.T) {
	r := New(WithNamespace("test"))

	r.CacheHit()
	r.CacheHit()
	r.CacheMiss()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheReads.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheReads.WithLabelValues("miss")))
}

func TestLastFetchAndChanges(t *testing.T) {
	r := New()
	at := time.Date(2026, 4, 12, 18, 0, 0, 0, time.UTC)

	r.SetLastFetch(at)
	r.AddRefreshChanges(3)
	r.AddRefreshChanges(0)
	r.HTTPRequest("/api/scoreboard", 200)

	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(r.cacheLastFetch))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.refreshChanges))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("/api/scoreboard", "200")))
}

func TestRegistryGathers(t *testing.T) {
	r := New()
	r.CacheMiss()

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.ObserveFetch("http", time.Second, 1, nil)
		r.CacheHit()
		r.CacheMiss()
		r.SetLastFetch(time.Now())
		r.AddRefreshChanges(2)
		r.HTTPRequest("/", 200)
	})
	assert.Nil(t, r.Registry())
}
