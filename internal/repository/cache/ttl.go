package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/discovery-microservice/internal/domain/repository"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Entry - конверт значения в кеше. Срок жизни проверяется по timestamp
// при чтении, независимо от TTL бэкенда.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`  // unix millis на момент записи
	ExpiresIn int64           `json:"expires_in"` // millis
}

// TTLStore оборачивает CacheRepository конвертом с собственным сроком жизни.
// Просроченная или нечитаемая запись при чтении удаляется и считается
// отсутствующей. Запись - слепая перезапись, чтение перед записью не нужно.
type TTLStore struct {
	repo   repository.CacheRepository
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewTTLStore создает TTL-обертку над кешем
func NewTTLStore(repo repository.CacheRepository, clock clockwork.Clock, logger *zap.Logger) *TTLStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TTLStore{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

// GetJSON читает значение по ключу в dst. Возвращает false, если записи нет,
// она просрочена или не разбирается.
func (s *TTLStore) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Warn("Dropping unreadable cache entry", zap.String("key", key), zap.Error(err))
		s.deleteQuiet(ctx, key)
		return false, nil
	}

	age := s.clock.Now().UnixMilli() - entry.Timestamp
	if age > entry.ExpiresIn {
		s.logger.Debug("Cache entry expired",
			zap.String("key", key),
			zap.Int64("age_ms", age),
		)
		s.deleteQuiet(ctx, key)
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, dst); err != nil {
		s.logger.Warn("Dropping cache entry with unreadable payload", zap.String("key", key), zap.Error(err))
		s.deleteQuiet(ctx, key)
		return false, nil
	}

	return true, nil
}

// SetJSON записывает значение с конвертом. Серверный TTL бэкенда ставится с
// запасом: авторитетный срок жизни - конверт.
func (s *TTLStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	entry := Entry{
		Data:      data,
		Timestamp: s.clock.Now().UnixMilli(),
		ExpiresIn: ttl.Milliseconds(),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	return s.repo.Set(ctx, key, raw, 2*ttl)
}

func (s *TTLStore) deleteQuiet(ctx context.Context, key string) {
	if err := s.repo.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete cache entry", zap.String("key", key), zap.Error(err))
	}
}
