package scoring

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/discovery-microservice/internal/domain"
)

// Модель любит заворачивать JSON в markdown-ограждение, иногда с меткой языка
var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// decodeScores терпимо разбирает контент скорингового ответа: снимает
// markdown-ограждение, если оно есть, затем декодирует JSON-массив оценок
func decodeScores(content string) ([]domain.AttractionScore, error) {
	trimmed := strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		trimmed = m[1]
	}

	var scores []domain.AttractionScore
	if err := json.Unmarshal([]byte(trimmed), &scores); err != nil {
		return nil, fmt.Errorf("decode score array: %w", err)
	}

	return scores, nil
}
