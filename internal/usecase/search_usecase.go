package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/domain/repository"
	"github.com/discovery-microservice/internal/pkg/errors"
	"github.com/discovery-microservice/internal/pkg/metrics"
	"github.com/discovery-microservice/internal/pkg/utils"
	"github.com/discovery-microservice/internal/repository/cache"
	"github.com/discovery-microservice/internal/usecase/dto"
	"go.uber.org/zap"
)

// SearchUseCase - use case для поиска локаций и геокодирования
type SearchUseCase struct {
	geocodingRepo repository.GeocodingRepository
	store         *cache.TTLStore
	reporter      repository.FailureReporter
	metrics       *metrics.Metrics
	logger        *zap.Logger
	searchTTL     time.Duration
	cityTTL       time.Duration
}

// NewSearchUseCase - создание нового SearchUseCase
func NewSearchUseCase(
	geocodingRepo repository.GeocodingRepository,
	store *cache.TTLStore,
	reporter repository.FailureReporter,
	m *metrics.Metrics,
	logger *zap.Logger,
	searchTTL time.Duration,
	cityTTL time.Duration,
) *SearchUseCase {
	return &SearchUseCase{
		geocodingRepo: geocodingRepo,
		store:         store,
		reporter:      reporter,
		metrics:       m,
		logger:        logger,
		searchTTL:     searchTTL,
		cityTTL:       cityTTL,
	}
}

// Search - текстовый поиск локаций. Любой сбой провайдера превращается в
// пустой список: вызывающий никогда не получает ошибку сети.
func (uc *SearchUseCase) Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error) {
	if req.Limit == 0 {
		req.Limit = 10
	}

	trimmed := strings.TrimSpace(req.Query)
	if trimmed == "" {
		return &dto.SearchResponse{Results: []domain.SearchResult{}}, nil
	}

	key := cache.BuildSearchKey(trimmed, req.Limit)
	var cached []domain.SearchResult
	if ok, err := uc.store.GetJSON(ctx, key, &cached); err == nil && ok {
		uc.metrics.CacheLookups.WithLabelValues("search", "hit").Inc()
		return &dto.SearchResponse{Results: cached, Total: len(cached)}, nil
	}
	uc.metrics.CacheLookups.WithLabelValues("search", "miss").Inc()

	results, err := uc.geocodingRepo.SearchLocations(ctx, trimmed, req.Limit)
	if err != nil {
		uc.reportSearchFailure(ctx, err)
		return &dto.SearchResponse{Results: []domain.SearchResult{}}, nil
	}

	if len(results) > 0 {
		if err := uc.store.SetJSON(ctx, key, results, uc.searchTTL); err != nil {
			uc.logger.Warn("Failed to cache search results", zap.Error(err))
		}
	}

	return &dto.SearchResponse{Results: results, Total: len(results)}, nil
}

// SelectResult преобразует выбранный результат поиска в CityInfo
func (uc *SearchUseCase) SelectResult(req dto.SelectResultRequest) *dto.CityResponse {
	return &dto.CityResponse{City: convertSearchResult(req.Result)}
}

// ReverseGeocode - обратное геокодирование координат
func (uc *SearchUseCase) ReverseGeocode(ctx context.Context, req dto.ReverseGeocodeRequest) (*dto.CityResponse, error) {
	if !utils.ValidateCoordinates(req.Latitude, req.Longitude) {
		return nil, errors.ErrInvalidCoordinates
	}

	coords := domain.Coordinates{Latitude: req.Latitude, Longitude: req.Longitude}
	key := cache.BuildKey(cache.PrefixCity, coords, nil)

	var cached domain.CityInfo
	if ok, err := uc.store.GetJSON(ctx, key, &cached); err == nil && ok {
		uc.metrics.CacheLookups.WithLabelValues("city", "hit").Inc()
		return &dto.CityResponse{City: cached}, nil
	}
	uc.metrics.CacheLookups.WithLabelValues("city", "miss").Inc()

	info, err := uc.geocodingRepo.ReverseGeocode(ctx, coords)
	if err != nil || info == nil {
		uc.reportReverseFailure(ctx, err)
		return nil, errors.ErrLocationNotFound
	}

	if err := uc.store.SetJSON(ctx, key, info, uc.cityTTL); err != nil {
		uc.logger.Warn("Failed to cache city info", zap.Error(err))
	}

	return &dto.CityResponse{City: *info}, nil
}

// reportReverseFailure сигнализирует о сбое обратного геокодирования.
// Пустой ответ провайдера - тоже сбой: место не определено, коллектор
// должен это видеть, хоть и с низкой важностью.
func (uc *SearchUseCase) reportReverseFailure(ctx context.Context, err error) {
	failure := domain.Failure{
		Category:   failureCategoryFor(err),
		Source:     "reverse_geocoder",
		Severity:   domain.SeverityMedium,
		MessageKey: "error.geocoding.reverse",
		Retryable:  true,
	}
	if err == nil || err == errors.ErrLocationNotFound {
		failure.Category = domain.FailureNotFound
		failure.Severity = domain.SeverityLow
		failure.MessageKey = "error.geocoding.not_found"
		failure.Retryable = false
	}
	uc.reporter.Report(ctx, failure)
}

// reportSearchFailure сигнализирует о сбое поиска. Нечитаемый ответ
// провайдера намеренно молчалив: пользователю показывается пустой список.
func (uc *SearchUseCase) reportSearchFailure(ctx context.Context, err error) {
	switch err {
	case errors.ErrProviderResponse:
		uc.logger.Debug("Search response malformed, returning empty result")
		return
	case context.Canceled:
		return
	}

	uc.reporter.Report(ctx, domain.Failure{
		Category:   failureCategoryFor(err),
		Source:     "location_search",
		Severity:   domain.SeverityMedium,
		MessageKey: "error.search.unavailable",
		Retryable:  true,
	})
}

// convertSearchResult строит CityInfo из результата поиска: город - основное
// имя, страна - последний сегмент адресного контекста, регион - первый
// сегмент, если сегментов больше одного
func convertSearchResult(result domain.SearchResult) domain.CityInfo {
	info := domain.CityInfo{
		City:        result.PrimaryName,
		FullAddress: result.DisplayName,
		Latitude:    result.Coordinates.Latitude,
		Longitude:   result.Coordinates.Longitude,
	}

	if result.SecondaryInfo == "" {
		return info
	}

	parts := strings.Split(result.SecondaryInfo, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	info.Country = parts[len(parts)-1]
	if len(parts) > 1 {
		state := parts[0]
		info.State = &state
	}

	return info
}
