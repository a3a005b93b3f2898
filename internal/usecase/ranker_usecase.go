package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/domain/repository"
	"github.com/discovery-microservice/internal/pkg/errors"
	"github.com/discovery-microservice/internal/pkg/metrics"
	"github.com/discovery-microservice/internal/repository/cache"
	"github.com/discovery-microservice/internal/worker"
	"go.uber.org/zap"
)

// Оценка по умолчанию для достопримечательностей, которые скоринг не покрыл
const defaultInterestScore = 5.0

// InterestRanker выполняет вторую фазу обнаружения: фоновое ранжирование
// по интересам пользователя. Первая фаза (сырой список) уже показана
// пользователю, поэтому любой сбой здесь деградирует тихо.
type InterestRanker struct {
	scoringRepo repository.ScoringRepository
	store       *cache.TTLStore
	reporter    repository.FailureReporter
	background  *worker.Background
	metrics     *metrics.Metrics
	logger      *zap.Logger
	rankedTTL   time.Duration
	rankTimeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewInterestRanker создает ранкер достопримечательностей
func NewInterestRanker(
	scoringRepo repository.ScoringRepository,
	store *cache.TTLStore,
	reporter repository.FailureReporter,
	background *worker.Background,
	m *metrics.Metrics,
	logger *zap.Logger,
	rankedTTL time.Duration,
) *InterestRanker {
	return &InterestRanker{
		scoringRepo: scoringRepo,
		store:       store,
		reporter:    reporter,
		background:  background,
		metrics:     m,
		logger:      logger,
		rankedTTL:   rankedTTL,
		rankTimeout: 20 * time.Second,
		inflight:    make(map[string]struct{}),
	}
}

// RankInBackground запускает фазу 2 для ключа кеша. Вызывающий не ждет
// результата. На один ключ одновременно живет не больше одной задачи:
// повторный запрос того же ключа не породит второй вызов скоринга.
func (r *InterestRanker) RankInBackground(rankedKey string, attractions []domain.Attraction, interests []string) {
	if len(attractions) == 0 {
		return
	}

	// Без интересов или без ключа скоринга ранжировать нечем: сырой список
	// фиксируется как окончательный
	if len(interests) == 0 || !r.scoringRepo.Enabled() {
		if err := r.store.SetJSON(context.Background(), rankedKey, attractions, r.rankedTTL); err != nil {
			r.logger.Warn("Failed to persist unranked result", zap.String("key", rankedKey), zap.Error(err))
		}
		r.metrics.RankJobs.WithLabelValues("skipped").Inc()
		return
	}

	r.mu.Lock()
	if _, running := r.inflight[rankedKey]; running {
		r.mu.Unlock()
		r.metrics.RankJobs.WithLabelValues("deduped").Inc()
		r.logger.Debug("Ranking already in flight", zap.String("key", rankedKey))
		return
	}
	r.inflight[rankedKey] = struct{}{}
	r.mu.Unlock()

	// Инкремент до запуска: быстро завершившаяся задача декрементирует
	// только уже учтенное значение
	r.metrics.RankJobsInFlight.Inc()

	started := r.background.Go("rank:"+rankedKey, func(ctx context.Context) {
		defer func() {
			r.mu.Lock()
			delete(r.inflight, rankedKey)
			r.mu.Unlock()
			r.metrics.RankJobsInFlight.Dec()
		}()
		r.rank(ctx, rankedKey, attractions, interests)
	})
	if !started {
		r.mu.Lock()
		delete(r.inflight, rankedKey)
		r.mu.Unlock()
		r.metrics.RankJobsInFlight.Dec()
	}
}

// rank - тело фоновой задачи: один вызов скоринга, одна запись результата
func (r *InterestRanker) rank(ctx context.Context, rankedKey string, attractions []domain.Attraction, interests []string) {
	ctx, cancel := context.WithTimeout(ctx, r.rankTimeout)
	defer cancel()

	names := make([]string, len(attractions))
	for i, a := range attractions {
		names[i] = a.Name
	}

	scores, err := r.scoringRepo.ScoreAttractions(ctx, names, interests)
	switch {
	case err == nil:
		// штатный путь
	case err == errors.ErrProviderResponse:
		// Нечитаемый ответ скоринга: всем оценка по умолчанию, пользователя
		// не уведомляем
		r.logger.Warn("Scoring response undecodable, applying default scores",
			zap.String("key", rankedKey))
		scores = nil
	default:
		// Сетевой сбой: показанный сырой список остается окончательным,
		// без тихих повторов
		r.logger.Warn("Scoring call failed, raw order stands",
			zap.String("key", rankedKey),
			zap.Error(err))
		r.reporter.Report(ctx, domain.Failure{
			Category:   failureCategoryFor(err),
			Source:     "interest_ranker",
			Severity:   domain.SeverityLow,
			MessageKey: "error.ranking.unavailable",
			Retryable:  true,
		})
		r.metrics.RankJobs.WithLabelValues("failed").Inc()
		return
	}

	ranked := RankAttractions(ApplyScores(attractions, scores))

	if err := r.store.SetJSON(ctx, rankedKey, ranked, r.rankedTTL); err != nil {
		r.logger.Warn("Failed to cache ranked result", zap.String("key", rankedKey), zap.Error(err))
		r.metrics.RankJobs.WithLabelValues("failed").Inc()
		return
	}

	if scores == nil {
		r.metrics.RankJobs.WithLabelValues("degraded").Inc()
	} else {
		r.metrics.RankJobs.WithLabelValues("ranked").Inc()
	}

	r.logger.Info("Attractions ranked",
		zap.String("key", rankedKey),
		zap.Int("count", len(ranked)))
}

// ApplyScores сливает оценки в копию списка по точному совпадению имени.
// Достопримечательность без оценки получает оценку по умолчанию и пустую
// причину. Входной список не изменяется.
func ApplyScores(attractions []domain.Attraction, scores []domain.AttractionScore) []domain.Attraction {
	byName := make(map[string]domain.AttractionScore, len(scores))
	for _, s := range scores {
		byName[s.Name] = s
	}

	out := make([]domain.Attraction, len(attractions))
	copy(out, attractions)

	for i := range out {
		score, reason := defaultInterestScore, ""
		if s, ok := byName[out[i].Name]; ok {
			score, reason = s.Score, s.Reason
		}
		sc := score
		rs := reason
		out[i].InterestScore = &sc
		out[i].InterestReason = &rs
	}

	return out
}

// RankAttractions возвращает копию списка в итоговом порядке: по убыванию
// оценки, элементы без оценки после всех оцененных, при равенстве порядок
// исходного (отсортированного по расстоянию) списка сохраняется.
func RankAttractions(attractions []domain.Attraction) []domain.Attraction {
	out := make([]domain.Attraction, len(attractions))
	copy(out, attractions)

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].InterestScore, out[j].InterestScore
		switch {
		case si == nil:
			return false
		case sj == nil:
			return true
		default:
			return *si > *sj
		}
	})

	return out
}

func failureCategoryFor(err error) domain.FailureCategory {
	switch err {
	case errors.ErrProviderTimeout:
		return domain.FailureTimeout
	case errors.ErrProviderResponse:
		return domain.FailureParse
	case errors.ErrRateLimited:
		return domain.FailureRateLimit
	default:
		return domain.FailureOffline
	}
}
