//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"github.com/couchcryptid/travel-trends-collector/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_Lookup(t *testing.T) {
	c := smokeClient(t)

	coords, err := c.Lookup(context.Background(), "Bahia", "BR")
	require.NoError(t, err)

	assert.InDelta(t, -12.5, coords.Lat, 3, "lat should be in Bahia")
	assert.InDelta(t, -41.7, coords.Lon, 3, "lon should be in Bahia")
}

func TestSmoke_Lookup_Unknown(t *testing.T) {
	c := smokeClient(t)

	// Mapbox's fuzzy matching may still return a result for nonsense
	// queries; only a not-found error is acceptable otherwise.
	_, err := c.Lookup(context.Background(), "XYZNONEXISTENT99", "")
	if err != nil {
		require.ErrorIs(t, err, domain.ErrLocationNotFound)
	}
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	// First call: cache miss → real API call.
	c1, err := cached.Lookup(context.Background(), "Kyoto", "JP")
	require.NoError(t, err)

	// Second call: cache hit → no API call.
	c2, err := cached.Lookup(context.Background(), "Kyoto", "JP")
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}
