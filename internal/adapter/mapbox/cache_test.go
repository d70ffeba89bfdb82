package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"github.com/couchcryptid/travel-trends-collector/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	err    error
	coords domain.Coordinates
}

func (m *countingGeocoder) Lookup(_ context.Context, _, _ string) (domain.Coordinates, error) {
	m.calls++
	return m.coords, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{coords: domain.Coordinates{Lat: 43.7, Lon: 7.26}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, metrics)

	c1, err := cached.Lookup(context.Background(), "Provence", "FR")
	require.NoError(t, err)
	c2, err := cached.Lookup(context.Background(), "provence", "fr")
	require.NoError(t, err)

	assert.Equal(t, c1, c2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Cache.WithLabelValues("geocode", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Cache.WithLabelValues("geocode", "miss")))
}

func TestCachedGeocoder_CountryIsPartOfKey(t *testing.T) {
	inner := &countingGeocoder{coords: domain.Coordinates{Lat: 1}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Lookup(context.Background(), "Georgia", "US")
	_, _ = cached.Lookup(context.Background(), "Georgia", "GE")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("mapbox API error: status 503")}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Lookup(context.Background(), "Bali", "ID")
	require.Error(t, err)

	inner.err = nil
	inner.coords = domain.Coordinates{Lat: -8.4, Lon: 115.2}
	c, err := cached.Lookup(context.Background(), "Bali", "ID")
	require.NoError(t, err)
	assert.Equal(t, -8.4, c.Lat)
	assert.Equal(t, 2, inner.calls)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.Coordinates{Lat: 1})
	c.put("b", domain.Coordinates{Lat: 2})

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v.Lat)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Coordinates{Lat: 1})
	c.put("b", domain.Coordinates{Lat: 2})
	c.put("c", domain.Coordinates{Lat: 3}) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")
	assert.Equal(t, 2, c.len())

	v, ok := c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v.Lat)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Coordinates{Lat: 1})
	c.put("b", domain.Coordinates{Lat: 2})
	c.get("a")
	c.put("c", domain.Coordinates{Lat: 3})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Coordinates{Lat: 1})
	c.put("a", domain.Coordinates{Lat: 9})

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 9.0, v.Lat)
	assert.Equal(t, 1, c.len())
}
