package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/discovery-microservice/internal/domain"
)

// MockAttractionRepository is a mock of AttractionRepository
type MockAttractionRepository struct {
	mock.Mock
}

func (m *MockAttractionRepository) GetNearby(ctx context.Context, coords domain.Coordinates, radiusMeters int) ([]domain.Attraction, error) {
	args := m.Called(ctx, coords, radiusMeters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attraction), args.Error(1)
}

// MockGeocodingRepository is a mock of GeocodingRepository
type MockGeocodingRepository struct {
	mock.Mock
}

func (m *MockGeocodingRepository) SearchLocations(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

func (m *MockGeocodingRepository) ReverseGeocode(ctx context.Context, coords domain.Coordinates) (*domain.CityInfo, error) {
	args := m.Called(ctx, coords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CityInfo), args.Error(1)
}

// MockScoringRepository is a mock of ScoringRepository
type MockScoringRepository struct {
	mock.Mock
}

func (m *MockScoringRepository) ScoreAttractions(ctx context.Context, names []string, interests []string) ([]domain.AttractionScore, error) {
	args := m.Called(ctx, names, interests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttractionScore), args.Error(1)
}

func (m *MockScoringRepository) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// recordingReporter собирает репорты о сбоях, безопасен для горутин
type recordingReporter struct {
	mu       sync.Mutex
	failures []domain.Failure
}

func (r *recordingReporter) Report(_ context.Context, failure domain.Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failure)
}

func (r *recordingReporter) Reported() []domain.Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Failure, len(r.failures))
	copy(out, r.failures)
	return out
}

// memoryCache - CacheRepository в памяти для тестов use case
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.data[key]
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func ptrFloat64(v float64) *float64 {
	return &v
}
