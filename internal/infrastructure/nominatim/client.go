package nominatim

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/discovery-microservice/internal/config"
	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/domain/repository"
	"github.com/discovery-microservice/internal/pkg/errors"
	"github.com/discovery-microservice/internal/pkg/metrics"
	"github.com/discovery-microservice/internal/pkg/ratelimit"
	"go.uber.org/zap"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *ratelimit.Limiter
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// searchHit - сырой элемент ответа Nominatim
type searchHit struct {
	PlaceID     int64     `json:"place_id"`
	DisplayName string    `json:"display_name"`
	Lat         string    `json:"lat"`
	Lon         string    `json:"lon"`
	Type        string    `json:"type"`
	Importance  float64   `json:"importance"`
	Address     atlasAddr `json:"address"`
}

type atlasAddr struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// NewClient создает клиент Nominatim для поиска и обратного геокодирования.
// Лимитер общий на процесс: провайдер требует не более одного запроса в
// секунду и описательный User-Agent.
func NewClient(
	cfg *config.NominatimConfig,
	limiter *ratelimit.Limiter,
	m *metrics.Metrics,
	logger *zap.Logger,
) repository.GeocodingRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   limiter,
		metrics:   m,
		logger:    logger,
	}
}

// SearchLocations выполняет текстовый поиск локаций
func (c *client) SearchLocations(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		// Пустой запрос не уходит в сеть
		return []domain.SearchResult{}, nil
	}

	if limit <= 0 {
		limit = 10
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return []domain.SearchResult{}, err
	}

	params := url.Values{}
	params.Set("q", trimmed)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("addressdetails", "1")

	var hits []searchHit
	if err := c.getJSON(ctx, c.baseURL+"/search?"+params.Encode(), &hits); err != nil {
		return []domain.SearchResult{}, err
	}

	// Провайдер уже отсортировал по релевантности, порядок сохраняем
	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		lat, errLat := strconv.ParseFloat(hit.Lat, 64)
		lon, errLon := strconv.ParseFloat(hit.Lon, 64)
		if errLat != nil || errLon != nil {
			c.logger.Debug("Skipping search hit with unparsable coordinates",
				zap.Int64("place_id", hit.PlaceID))
			continue
		}

		primary, secondary := splitDisplayName(hit.DisplayName, hit.Address)

		results = append(results, domain.SearchResult{
			ID:            hit.PlaceID,
			DisplayName:   hit.DisplayName,
			PrimaryName:   primary,
			SecondaryInfo: secondary,
			Coordinates:   domain.Coordinates{Latitude: lat, Longitude: lon},
			Type:          hit.Type,
			Importance:    hit.Importance,
		})
	}

	return results, nil
}

// ReverseGeocode определяет место по координатам
func (c *client) ReverseGeocode(ctx context.Context, coords domain.Coordinates) (*domain.CityInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("format", "json")

	var hit searchHit
	if err := c.getJSON(ctx, c.baseURL+"/reverse?"+params.Encode(), &hit); err != nil {
		return nil, err
	}

	if hit.DisplayName == "" {
		return nil, errors.ErrLocationNotFound
	}

	city := firstNonEmpty(
		hit.Address.City,
		hit.Address.Town,
		hit.Address.Village,
		firstToken(hit.DisplayName),
	)

	info := &domain.CityInfo{
		City:        city,
		Country:     hit.Address.Country,
		FullAddress: hit.DisplayName,
		// Координаты берем из ответа провайдера: он мог их нормализовать
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	}
	if hit.Address.State != "" {
		state := hit.Address.State
		info.State = &state
	}
	if lat, err := strconv.ParseFloat(hit.Lat, 64); err == nil {
		info.Latitude = lat
	}
	if lon, err := strconv.ParseFloat(hit.Lon, 64); err == nil {
		info.Longitude = lon
	}

	return info, nil
}

func (c *client) getJSON(ctx context.Context, rawURL string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Описательный идентификатор клиента обязателен по политике провайдера
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderDuration.WithLabelValues("nominatim").Observe(time.Since(start).Seconds())
	if err != nil {
		appErr := classifyTransportError(err)
		c.metrics.ProviderRequests.WithLabelValues("nominatim", outcomeLabel(appErr)).Inc()
		c.logger.Error("Nominatim request failed", zap.String("url", rawURL), zap.Error(err))
		return appErr
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.metrics.ProviderRequests.WithLabelValues("nominatim", "server_error").Inc()
		c.logger.Warn("Nominatim rate limited", zap.String("url", rawURL))
		return errors.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.ProviderRequests.WithLabelValues("nominatim", "server_error").Inc()
		c.logger.Error("Nominatim returned error status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("url", rawURL))
		return errors.ErrProviderOffline
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		c.metrics.ProviderRequests.WithLabelValues("nominatim", "parse_error").Inc()
		c.logger.Warn("Failed to decode Nominatim response", zap.Error(err))
		return errors.ErrProviderResponse
	}

	c.metrics.ProviderRequests.WithLabelValues("nominatim", "success").Inc()
	return nil
}

// splitDisplayName выделяет основное имя места и остаток адресного контекста.
// Основное имя - самый конкретный адресный уровень (city/town/village), иначе
// первый сегмент полного имени.
func splitDisplayName(displayName string, addr atlasAddr) (string, string) {
	primary := firstNonEmpty(addr.City, addr.Town, addr.Village)

	parts := strings.Split(displayName, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if primary == "" && len(parts) > 0 {
		primary = parts[0]
	}

	remainder := make([]string, 0, len(parts))
	removed := false
	for _, part := range parts {
		if !removed && part == primary {
			removed = true
			continue
		}
		if part != "" {
			remainder = append(remainder, part)
		}
	}

	return primary, strings.Join(remainder, ", ")
}

func firstToken(displayName string) string {
	parts := strings.SplitN(displayName, ",", 2)
	return strings.TrimSpace(parts[0])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
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
	switch appErr {
	case errors.ErrProviderTimeout:
		return "timeout"
	case errors.ErrProviderResponse:
		return "parse_error"
	default:
		return "offline"
	}
}
