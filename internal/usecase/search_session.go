package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/pkg/debounce"
	"github.com/discovery-microservice/internal/usecase/dto"
	"github.com/jonboulle/clockwork"
)

// SearchSession - сессия интерактивного поиска. Ввод пользователя приходит
// на каждое нажатие клавиши; сессия откладывает запрос к провайдеру до паузы
// ввода и отбрасывает результаты, перекрытые более новым вводом.
type SearchSession struct {
	search    *SearchUseCase
	debouncer *debounce.Debouncer
	limit     int

	mu      sync.Mutex
	results []domain.SearchResult
}

// NewSearchSession создает сессию поиска с заданным окном тишины
func NewSearchSession(search *SearchUseCase, delay time.Duration, limit int, clock clockwork.Clock) *SearchSession {
	return &SearchSession{
		search:    search,
		debouncer: debounce.New(delay, clock),
		limit:     limit,
	}
}

// Update принимает очередное состояние строки поиска. Запрос уходит только
// после паузы ввода; onResults вызывается с результатами, если к моменту
// ответа ввод не был перекрыт.
func (s *SearchSession) Update(ctx context.Context, query string, onResults func([]domain.SearchResult)) {
	s.debouncer.Trigger(func(gen uint64) {
		resp, err := s.search.Search(ctx, dto.SearchRequest{Query: query, Limit: s.limit})
		if err != nil {
			return
		}
		if !s.debouncer.Latest(gen) {
			return
		}

		s.mu.Lock()
		s.results = resp.Results
		s.mu.Unlock()

		if onResults != nil {
			onResults(resp.Results)
		}
	})
}

// Results возвращает последние принятые результаты
func (s *SearchSession) Results() []domain.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Close отменяет отложенный запрос и инвалидирует висящие ответы
func (s *SearchSession) Close() {
	s.debouncer.Cancel()

	s.mu.Lock()
	s.results = nil
	s.mu.Unlock()
}
