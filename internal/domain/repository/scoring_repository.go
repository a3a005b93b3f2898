package repository

import (
	"context"

	"github.com/discovery-microservice/internal/domain"
)

// ScoringRepository определяет внешний сервис оценки релевантности.
// Оценка - непрозрачное число, ядро её не вычисляет.
type ScoringRepository interface {
	// ScoreAttractions отправляет имена достопримечательностей и интересы
	// пользователя, возвращает оценки по имени
	ScoreAttractions(ctx context.Context, names []string, interests []string) ([]domain.AttractionScore, error)

	// Enabled сообщает, настроены ли учетные данные скоринга
	Enabled() bool
}
