package usecase

import (
	"context"
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

// DiscoveryUseCase - верхнеуровневый пайплайн обнаружения: кеш, выборка
// точек интереса, запуск фонового ранжирования. Сбои провайдеров никогда
// не доходят до вызывающего: уже полученные данные всегда показываются.
type DiscoveryUseCase struct {
	attractionRepo repository.AttractionRepository
	store          *cache.TTLStore
	ranker         *InterestRanker
	movement       *MovementFilter
	reporter       repository.FailureReporter
	metrics        *metrics.Metrics
	logger         *zap.Logger
	defaultRadius  int
	maxResults     int
	rawTTL         time.Duration
}

// NewDiscoveryUseCase создает пайплайн обнаружения
func NewDiscoveryUseCase(
	attractionRepo repository.AttractionRepository,
	store *cache.TTLStore,
	ranker *InterestRanker,
	movement *MovementFilter,
	reporter repository.FailureReporter,
	m *metrics.Metrics,
	logger *zap.Logger,
	defaultRadius int,
	maxResults int,
	rawTTL time.Duration,
) *DiscoveryUseCase {
	return &DiscoveryUseCase{
		attractionRepo: attractionRepo,
		store:          store,
		ranker:         ranker,
		movement:       movement,
		reporter:       reporter,
		metrics:        m,
		logger:         logger,
		defaultRadius:  defaultRadius,
		maxResults:     maxResults,
		rawTTL:         rawTTL,
	}
}

// Discover возвращает достопримечательности вокруг точки. Фаза 1 отвечает
// немедленно из кеша или свежей выборки; фаза 2 (ранжирование по интересам)
// уходит в фон и обновляет кеш, не блокируя вызов.
func (uc *DiscoveryUseCase) Discover(ctx context.Context, req dto.DiscoverRequest) (*dto.DiscoverResponse, error) {
	if !utils.ValidateCoordinates(req.Latitude, req.Longitude) {
		return nil, errors.ErrInvalidCoordinates
	}

	radius := req.RadiusMeters
	if radius == 0 {
		radius = uc.defaultRadius
	}
	if !utils.ValidateRadius(radius) {
		return nil, errors.ErrInvalidRadius
	}

	coords := domain.Coordinates{Latitude: req.Latitude, Longitude: req.Longitude}
	rankedKey := cache.BuildKey(cache.PrefixRankedAttractions, coords, req.Interests)
	rawKey := cache.BuildKey(cache.PrefixRawAttractions, coords, req.Interests)

	// Готовый ранжированный результат - лучший ответ фазы 1
	var ranked []domain.Attraction
	if ok, err := uc.store.GetJSON(ctx, rankedKey, &ranked); err == nil && ok {
		uc.metrics.CacheLookups.WithLabelValues("ranked", "hit").Inc()
		return &dto.DiscoverResponse{Attractions: ranked, Ranked: true, Cached: true}, nil
	}
	uc.metrics.CacheLookups.WithLabelValues("ranked", "miss").Inc()

	var raw []domain.Attraction
	rawCached := false
	if ok, err := uc.store.GetJSON(ctx, rawKey, &raw); err == nil && ok {
		rawCached = true
		uc.metrics.CacheLookups.WithLabelValues("raw", "hit").Inc()
	} else {
		uc.metrics.CacheLookups.WithLabelValues("raw", "miss").Inc()
	}

	// Без работающего GPS за свежими данными не ходим
	if !req.GPSStatus.AllowsFetch() {
		uc.logger.Debug("GPS unavailable, serving cache only",
			zap.String("gps_status", string(req.GPSStatus)))
		resp := &dto.DiscoverResponse{Attractions: []domain.Attraction{}, Cached: rawCached}
		if rawCached {
			resp.Attractions = raw
			uc.ranker.RankInBackground(rankedKey, raw, req.Interests)
		}
		return resp, nil
	}

	// Незначительное смещение не оправдывает перезапрос провайдера
	if rawCached && req.Previous != nil {
		prev := domain.Coordinates{Latitude: req.Previous.Latitude, Longitude: req.Previous.Longitude}
		if !uc.movement.IsSignificant(&prev, coords) {
			uc.logger.Debug("Movement below threshold, serving cached attractions")
			uc.ranker.RankInBackground(rankedKey, raw, req.Interests)
			return &dto.DiscoverResponse{Attractions: raw, Cached: true}, nil
		}
	}

	attractions, err := uc.attractionRepo.GetNearby(ctx, coords, radius)
	if err != nil {
		uc.reporter.Report(ctx, domain.Failure{
			Category:   failureCategoryFor(err),
			Source:     "attraction_fetcher",
			Severity:   domain.SeverityMedium,
			MessageKey: "error.attractions.fetch",
			Retryable:  true,
		})

		// Закешированный сырой список лучше пустого ответа
		if rawCached {
			uc.ranker.RankInBackground(rankedKey, raw, req.Interests)
			return &dto.DiscoverResponse{Attractions: raw, Cached: true}, nil
		}
		return &dto.DiscoverResponse{Attractions: []domain.Attraction{}}, nil
	}

	if len(attractions) > uc.maxResults {
		attractions = attractions[:uc.maxResults]
	}

	if err := uc.store.SetJSON(ctx, rawKey, attractions, uc.rawTTL); err != nil {
		uc.logger.Warn("Failed to cache raw attractions", zap.String("key", rawKey), zap.Error(err))
	}

	uc.ranker.RankInBackground(rankedKey, attractions, req.Interests)

	return &dto.DiscoverResponse{Attractions: attractions}, nil
}
