package overpass_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/discovery-microservice/internal/config"
	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/domain/repository"
	"github.com/discovery-microservice/internal/infrastructure/overpass"
	apperrors "github.com/discovery-microservice/internal/pkg/errors"
	"github.com/discovery-microservice/internal/pkg/metrics"
)

func newTestClient(baseURL string, timeout time.Duration) repository.AttractionRepository {
	return overpass.NewClient(
		&config.OverpassConfig{BaseURL: baseURL, RequestTimeout: timeout},
		metrics.NewMetricsForTesting(),
		zap.NewNop(),
	)
}

func TestClient_GetNearby(t *testing.T) {
	ctx := context.Background()
	coords := domain.Coordinates{Latitude: 52.52, Longitude: 13.405}

	t.Run("filters unnamed elements and sorts by distance", func(t *testing.T) {
		var gotBody string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			w.Write([]byte(`{"elements": [
				{"id": 1, "lat": 52.6, "lon": 13.405, "tags": {"name": "Far Fort", "historic": "fort"}},
				{"id": 2, "lat": 52.521, "lon": 13.405, "tags": {"name": "Near Museum", "tourism": "museum"}},
				{"id": 3, "lat": 52.53, "lon": 13.405, "tags": {"tourism": "viewpoint"}},
				{"id": 4, "tags": {"name": "No Coordinates", "tourism": "museum"}}
			]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		attractions, err := client.GetNearby(ctx, coords, 5000)

		require.NoError(t, err)
		require.Len(t, attractions, 2, "unnamed and coordinate-less elements are dropped")

		assert.Equal(t, "Near Museum", attractions[0].Name)
		assert.Equal(t, "Far Fort", attractions[1].Name)
		assert.Less(t, attractions[0].Distance, attractions[1].Distance)
		assert.Equal(t, 4.5, attractions[0].Rating)

		// запрос покрывает оба тега и все виды элементов
		assert.Contains(t, gotBody, "data=")
		for _, fragment := range []string{"tourism", "historic", "node", "way", "relation", "around%3A5000", "out+center"} {
			assert.Contains(t, gotBody, fragment)
		}
	})

	t.Run("way center is used when direct coordinates are absent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"elements": [
				{"id": 10, "center": {"lat": 52.53, "lon": 13.41}, "tags": {"name": "Palace Grounds", "tourism": "attraction"}}
			]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		attractions, err := client.GetNearby(ctx, coords, 5000)

		require.NoError(t, err)
		require.Len(t, attractions, 1)
		assert.Equal(t, 52.53, attractions[0].Coordinates.Latitude)
		assert.Equal(t, 13.41, attractions[0].Coordinates.Longitude)
	})

	t.Run("type priority tourism then historic then amenity", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"elements": [
				{"id": 1, "lat": 52.52, "lon": 13.40, "tags": {"name": "A", "tourism": "museum", "historic": "castle"}},
				{"id": 2, "lat": 52.52, "lon": 13.40, "tags": {"name": "B", "historic": "castle", "amenity": "theatre"}},
				{"id": 3, "lat": 52.52, "lon": 13.40, "tags": {"name": "C", "amenity": "theatre"}},
				{"id": 4, "lat": 52.52, "lon": 13.40, "tags": {"name": "D"}}
			]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		attractions, err := client.GetNearby(ctx, coords, 5000)

		require.NoError(t, err)
		require.Len(t, attractions, 4)

		types := map[string]string{}
		for _, a := range attractions {
			types[a.Name] = a.Type
		}
		assert.Equal(t, "museum", types["A"])
		assert.Equal(t, "castle", types["B"])
		assert.Equal(t, "theatre", types["C"])
		assert.Equal(t, "attraction", types["D"])
	})

	t.Run("slow interpreter maps to timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"elements": []}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 20*time.Millisecond)

		_, err := client.GetNearby(ctx, coords, 5000)

		assert.ErrorIs(t, err, apperrors.ErrProviderTimeout)
	})

	t.Run("server error maps to offline", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGatewayTimeout)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		_, err := client.GetNearby(ctx, coords, 5000)

		assert.ErrorIs(t, err, apperrors.ErrProviderOffline)
	})

	t.Run("garbage body maps to malformed response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json at all`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)

		_, err := client.GetNearby(ctx, coords, 5000)

		assert.ErrorIs(t, err, apperrors.ErrProviderResponse)
	})
}
