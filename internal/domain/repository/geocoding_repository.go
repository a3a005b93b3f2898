package repository

import (
	"context"

	"github.com/discovery-microservice/internal/domain"
)

// GeocodingRepository определяет поиск локаций и обратное геокодирование
type GeocodingRepository interface {
	// SearchLocations выполняет текстовый поиск локаций.
	// Пустой запрос возвращает пустой результат без сетевого вызова.
	SearchLocations(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// ReverseGeocode определяет место по координатам.
	// Возвращает nil при любой сетевой ошибке или пустом ответе.
	ReverseGeocode(ctx context.Context, coords domain.Coordinates) (*domain.CityInfo, error)
}
