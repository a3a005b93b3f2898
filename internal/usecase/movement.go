package usecase

import (
	"math"

	"github.com/discovery-microservice/internal/domain"
)

// MovementFilter решает, достаточно ли сместился GPS-фикс относительно
// предыдущего, чтобы оправдать обновление данных
type MovementFilter struct {
	threshold float64
}

// NewMovementFilter создает фильтр с порогом в градусах координат
func NewMovementFilter(threshold float64) *MovementFilter {
	return &MovementFilter{threshold: threshold}
}

// IsSignificant возвращает true, если предыдущего фикса нет либо дельта
// координат превышает порог по любой из осей. Сравниваются сырые дельты
// в координатном пространстве, не истинное расстояние: возле антимеридиана
// числовая дельта долготы велика при крошечном реальном смещении. Это
// наблюдаемое поведение, семантика зафиксирована до уточнения продуктом.
func (f *MovementFilter) IsSignificant(old *domain.Coordinates, current domain.Coordinates) bool {
	if old == nil {
		return true
	}

	return math.Abs(current.Latitude-old.Latitude) > f.threshold ||
		math.Abs(current.Longitude-old.Longitude) > f.threshold
}
