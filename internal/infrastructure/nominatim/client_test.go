package nominatim_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/discovery-microservice/internal/config"
	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/domain/repository"
	"github.com/discovery-microservice/internal/infrastructure/nominatim"
	apperrors "github.com/discovery-microservice/internal/pkg/errors"
	"github.com/discovery-microservice/internal/pkg/metrics"
	"github.com/discovery-microservice/internal/pkg/ratelimit"
)

func newTestClient(baseURL string, timeout time.Duration) repository.GeocodingRepository {
	return nominatim.NewClient(
		&config.NominatimConfig{
			BaseURL:        baseURL,
			UserAgent:      "discovery-microservice-test/1.0",
			RequestTimeout: timeout,
		},
		ratelimit.New(0, nil),
		metrics.NewMetricsForTesting(),
		zap.NewNop(),
	)
}

func TestClient_SearchLocations(t *testing.T) {
	ctx := context.Background()

	t.Run("maps provider hits preserving order", func(t *testing.T) {
		var gotUserAgent, gotQuery, gotLimit string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserAgent = r.Header.Get("User-Agent")
			gotQuery = r.URL.Query().Get("q")
			gotLimit = r.URL.Query().Get("limit")
			w.Write([]byte(`[
				{"place_id": 7, "display_name": "Berlin, Germany", "lat": "52.52", "lon": "13.405", "type": "city", "importance": 0.9,
				 "address": {"city": "Berlin", "country": "Germany"}},
				{"place_id": 8, "display_name": "Bern, Switzerland", "lat": "46.948", "lon": "7.447", "type": "city", "importance": 0.7,
				 "address": {"city": "Bern", "state": "Bern", "country": "Switzerland"}}
			]`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		results, err := client.SearchLocations(ctx, "  Ber  ", 5)

		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "discovery-microservice-test/1.0", gotUserAgent)
		assert.Equal(t, "Ber", gotQuery, "query must be trimmed")
		assert.Equal(t, "5", gotLimit)

		assert.Equal(t, int64(7), results[0].ID)
		assert.Equal(t, "Berlin", results[0].PrimaryName)
		assert.Equal(t, "Germany", results[0].SecondaryInfo)
		assert.Equal(t, 52.52, results[0].Coordinates.Latitude)
		assert.Equal(t, "city", results[0].Type)
		assert.Equal(t, 0.9, results[0].Importance)
		assert.Equal(t, "Bern", results[1].PrimaryName)
	})

	t.Run("blank query returns empty without network call", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		results, err := client.SearchLocations(ctx, "   ", 5)

		assert.NoError(t, err)
		assert.Empty(t, results)
		assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	})

	t.Run("hit with unparsable coordinates is skipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[
				{"place_id": 1, "display_name": "Good, Germany", "lat": "52.0", "lon": "13.0"},
				{"place_id": 2, "display_name": "Broken", "lat": "not-a-number", "lon": "13.0"}
			]`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		results, err := client.SearchLocations(ctx, "x", 5)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, int64(1), results[0].ID)
	})

	t.Run("slow provider maps to timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 20*time.Millisecond)

		results, err := client.SearchLocations(ctx, "berlin", 5)

		assert.ErrorIs(t, err, apperrors.ErrProviderTimeout)
		assert.Empty(t, results)
	})

	t.Run("unreachable provider maps to offline", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		_, err := client.SearchLocations(ctx, "berlin", 5)

		assert.ErrorIs(t, err, apperrors.ErrProviderOffline)
	})

	t.Run("http 429 maps to rate limited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		_, err := client.SearchLocations(ctx, "berlin", 5)

		assert.ErrorIs(t, err, apperrors.ErrRateLimited)
	})

	t.Run("garbage body maps to malformed response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>not json</html>`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		_, err := client.SearchLocations(ctx, "berlin", 5)

		assert.ErrorIs(t, err, apperrors.ErrProviderResponse)
	})
}

func TestClient_ReverseGeocode(t *testing.T) {
	ctx := context.Background()
	coords := domain.Coordinates{Latitude: 48.137, Longitude: 11.575}

	t.Run("city with state from address details", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "48.137", r.URL.Query().Get("lat"))
			assert.Equal(t, "11.575", r.URL.Query().Get("lon"))
			w.Write([]byte(`{
				"display_name": "Munich, Bavaria, Germany",
				"lat": "48.1371", "lon": "11.5754",
				"address": {"city": "Munich", "state": "Bavaria", "country": "Germany"}
			}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		info, err := client.ReverseGeocode(ctx, coords)

		require.NoError(t, err)
		assert.Equal(t, "Munich", info.City)
		assert.Equal(t, "Germany", info.Country)
		require.NotNil(t, info.State)
		assert.Equal(t, "Bavaria", *info.State)
		assert.Equal(t, "Munich, Bavaria, Germany", info.FullAddress)
		assert.Equal(t, 48.1371, info.Latitude)
	})

	t.Run("village fallback when city and town are absent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"display_name": "Kleinort, Germany",
				"lat": "50.0", "lon": "10.0",
				"address": {"village": "Kleinort", "country": "Germany"}
			}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		info, err := client.ReverseGeocode(ctx, coords)

		require.NoError(t, err)
		assert.Equal(t, "Kleinort", info.City)
		assert.Nil(t, info.State)
	})

	t.Run("display name token when address has no locality", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"display_name": "Somewhere, Atlantic Ocean",
				"lat": "0", "lon": "0",
				"address": {}
			}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		info, err := client.ReverseGeocode(ctx, coords)

		require.NoError(t, err)
		assert.Equal(t, "Somewhere", info.City)
	})

	t.Run("empty result maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		_, err := client.ReverseGeocode(ctx, coords)

		assert.ErrorIs(t, err, apperrors.ErrLocationNotFound)
	})
}
