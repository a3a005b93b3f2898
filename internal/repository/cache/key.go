package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/discovery-microservice/internal/domain"
)

// Префиксы пространств имен ключей кеша
const (
	PrefixRawAttractions    = "attractions:raw"
	PrefixRankedAttractions = "attractions:ranked"
	PrefixSearch            = "search"
	PrefixCity              = "city"
)

// BuildKey строит детерминированный ключ кеша из префикса, координат и
// интересов пользователя. Координаты округляются до 2 знаков, интересы
// дедуплицируются и сортируются: перестановка или дублирование интересов не
// меняет ключ. Пустой список интересов дает пустой хвостовой сегмент.
func BuildKey(prefix string, coords domain.Coordinates, interests []string) string {
	return fmt.Sprintf("%s:%.2f,%.2f:%s",
		prefix,
		coords.Latitude,
		coords.Longitude,
		strings.Join(normalizeInterests(interests), ","),
	)
}

// BuildSearchKey строит ключ кеша для текстового поиска
func BuildSearchKey(query string, limit int) string {
	return fmt.Sprintf("%s:%s:%d", PrefixSearch, strings.ToLower(strings.TrimSpace(query)), limit)
}

func normalizeInterests(interests []string) []string {
	if len(interests) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(interests))
	result := make([]string, 0, len(interests))
	for _, interest := range interests {
		trimmed := strings.TrimSpace(strings.ToLower(interest))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}

	sort.Strings(result)
	return result
}
