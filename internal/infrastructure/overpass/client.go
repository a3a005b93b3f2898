package overpass

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/discovery-microservice/internal/config"
	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/domain/repository"
	"github.com/discovery-microservice/internal/pkg/errors"
	"github.com/discovery-microservice/internal/pkg/metrics"
	"github.com/discovery-microservice/internal/pkg/utils"
	"go.uber.org/zap"
)

// Рейтинг-заглушка: провайдер не отдает оценок, значение чисто
// отображательное и смысловой нагрузки не несет
const placeholderRating = 4.5

type client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewClient создает клиент Overpass для выборки точек интереса
func NewClient(cfg *config.OverpassConfig, m *metrics.Metrics, logger *zap.Logger) repository.AttractionRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BaseURL,
		metrics: m,
		logger:  logger,
	}
}

// GetNearby запрашивает достопримечательности (tourism/historic) в радиусе
// radiusMeters и возвращает их отсортированными по возрастанию расстояния
func (c *client) GetNearby(ctx context.Context, coords domain.Coordinates, radiusMeters int) ([]domain.Attraction, error) {
	query := buildQuery(coords, radiusMeters)

	c.logger.Debug("Calling Overpass interpreter",
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude),
		zap.Int("radius_m", radiusMeters))

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderDuration.WithLabelValues("overpass").Observe(time.Since(start).Seconds())
	if err != nil {
		appErr := classifyTransportError(err)
		c.metrics.ProviderRequests.WithLabelValues("overpass", outcomeLabel(appErr)).Inc()
		c.logger.Error("Overpass request failed", zap.Error(err))
		return nil, appErr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ProviderRequests.WithLabelValues("overpass", "server_error").Inc()
		c.logger.Error("Overpass returned error status", zap.Int("status_code", resp.StatusCode))
		return nil, errors.ErrProviderOffline
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.metrics.ProviderRequests.WithLabelValues("overpass", "parse_error").Inc()
		c.logger.Warn("Failed to decode Overpass response", zap.Error(err))
		return nil, errors.ErrProviderResponse
	}

	c.metrics.ProviderRequests.WithLabelValues("overpass", "success").Inc()

	attractions := make([]domain.Attraction, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}

		lat, lon, ok := resolveCoordinates(el)
		if !ok {
			continue
		}

		attractions = append(attractions, domain.Attraction{
			ID:   el.ID,
			Name: name,
			Coordinates: domain.Coordinates{
				Latitude:  lat,
				Longitude: lon,
			},
			Type:     deriveType(el.Tags),
			Distance: utils.HaversineDistance(coords.Latitude, coords.Longitude, lat, lon),
			Rating:   placeholderRating,
		})
	}

	sort.SliceStable(attractions, func(i, j int) bool {
		return attractions[i].Distance < attractions[j].Distance
	})

	return attractions, nil
}

// buildQuery собирает Overpass QL запрос по тегам tourism/historic вокруг точки
func buildQuery(coords domain.Coordinates, radiusMeters int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:25];\n(\n")
	for _, tag := range []string{"tourism", "historic"} {
		for _, kind := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, "  %s[\"%s\"](around:%d,%f,%f);\n",
				kind, tag, radiusMeters, coords.Latitude, coords.Longitude)
		}
	}
	b.WriteString(");\nout center;")
	return b.String()
}

// resolveCoordinates берет прямые lat/lon узла либо центр way/relation
func resolveCoordinates(el overpassElement) (float64, float64, bool) {
	if el.Lat != nil && el.Lon != nil {
		return *el.Lat, *el.Lon, true
	}
	if el.Center != nil {
		return el.Center.Lat, el.Center.Lon, true
	}
	return 0, 0, false
}

// deriveType определяет тип по приоритету tourism -> historic -> amenity
func deriveType(tags map[string]string) string {
	if v := tags["tourism"]; v != "" {
		return v
	}
	if v := tags["historic"]; v != "" {
		return v
	}
	if v := tags["amenity"]; v != "" {
		return v
	}
	return "attraction"
}

func classifyTransportError(err error) *errors.AppError {
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) ||
		(stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.ErrProviderTimeout
	}
	return errors.ErrProviderOffline
}

func outcomeLabel(appErr *errors.AppError) string {
	if appErr == errors.ErrProviderTimeout {
		return "timeout"
	}
	return "offline"
}
