package repository

import (
	"context"

	"github.com/discovery-microservice/internal/domain"
)

// AttractionRepository определяет получение точек интереса вокруг координат
type AttractionRepository interface {
	// GetNearby возвращает достопримечательности в радиусе radiusMeters,
	// отсортированные по возрастанию расстояния. При сбое запроса или
	// разбора возвращает пустой список и ошибку, но никогда не паникует.
	GetNearby(ctx context.Context, coords domain.Coordinates, radiusMeters int) ([]domain.Attraction, error)
}
