package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/pkg/metrics"
	"github.com/discovery-microservice/internal/repository/cache"
	"github.com/discovery-microservice/internal/usecase"
)

func TestSearchSession(t *testing.T) {
	ctx := context.Background()
	berlin := []domain.SearchResult{{ID: 1, PrimaryName: "Berlin", DisplayName: "Berlin, Germany"}}
	bern := []domain.SearchResult{{ID: 2, PrimaryName: "Bern", DisplayName: "Bern, Switzerland"}}

	newSession := func(geocoding *MockGeocodingRepository, clock clockwork.Clock) *usecase.SearchSession {
		logger := zap.NewNop()
		search := usecase.NewSearchUseCase(
			geocoding,
			cache.NewTTLStore(newMemoryCache(), nil, logger),
			&recordingReporter{},
			metrics.NewMetricsForTesting(),
			logger,
			time.Hour,
			time.Hour,
		)
		return usecase.NewSearchSession(search, 300*time.Millisecond, 10, clock)
	}

	t.Run("rapid keystrokes collapse into one provider call", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		geocoding := &MockGeocodingRepository{}
		geocoding.On("SearchLocations", mock.Anything, "Berlin", 10).Return(berlin, nil)
		session := newSession(geocoding, clock)

		var (
			mu  sync.Mutex
			got []domain.SearchResult
		)
		deliver := func(results []domain.SearchResult) {
			mu.Lock()
			got = results
			mu.Unlock()
		}

		session.Update(ctx, "Ber", deliver)
		session.Update(ctx, "Berl", deliver)
		session.Update(ctx, "Berlin", deliver)

		clock.BlockUntil(1)
		clock.Advance(300 * time.Millisecond)

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(got) == 1 && got[0].PrimaryName == "Berlin"
		}, 2*time.Second, 10*time.Millisecond)

		geocoding.AssertNumberOfCalls(t, "SearchLocations", 1)
		assert.Equal(t, berlin, session.Results())
	})

	t.Run("input arriving mid window postpones the call", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		geocoding := &MockGeocodingRepository{}
		geocoding.On("SearchLocations", mock.Anything, "Bern", 10).Return(bern, nil)
		session := newSession(geocoding, clock)

		session.Update(ctx, "Ber", nil)
		clock.BlockUntil(1)
		clock.Advance(200 * time.Millisecond)

		session.Update(ctx, "Bern", nil)
		clock.BlockUntil(1)
		clock.Advance(200 * time.Millisecond)

		// первое окно истекло бы здесь, но было сброшено вторым вводом
		geocoding.AssertNotCalled(t, "SearchLocations", mock.Anything, "Ber", 10)

		clock.Advance(100 * time.Millisecond)

		assert.Eventually(t, func() bool {
			return len(session.Results()) == 1 && session.Results()[0].PrimaryName == "Bern"
		}, 2*time.Second, 10*time.Millisecond)

		geocoding.AssertNumberOfCalls(t, "SearchLocations", 1)
	})

	t.Run("close drops pending call and clears results", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		geocoding := &MockGeocodingRepository{}
		session := newSession(geocoding, clock)

		session.Update(ctx, "Berlin", nil)
		clock.BlockUntil(1)
		session.Close()
		clock.Advance(300 * time.Millisecond)

		time.Sleep(50 * time.Millisecond)
		geocoding.AssertNotCalled(t, "SearchLocations", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, session.Results())
	})

	t.Run("superseded response is not applied", func(t *testing.T) {
		release := make(chan struct{})
		clock := clockwork.NewFakeClock()
		geocoding := &MockGeocodingRepository{}
		geocoding.On("SearchLocations", mock.Anything, "Berlin", 10).
			Run(func(mock.Arguments) { <-release }).
			Return(berlin, nil)
		geocoding.On("SearchLocations", mock.Anything, "Bern", 10).Return(bern, nil)
		session := newSession(geocoding, clock)

		var delivered []string
		var mu sync.Mutex
		deliver := func(results []domain.SearchResult) {
			mu.Lock()
			delivered = append(delivered, results[0].PrimaryName)
			mu.Unlock()
		}

		// первый запрос зависает в провайдере, пока его перекрывает второй
		session.Update(ctx, "Berlin", deliver)
		clock.BlockUntil(1)
		clock.Advance(300 * time.Millisecond)

		session.Update(ctx, "Bern", deliver)
		clock.BlockUntil(1)
		clock.Advance(300 * time.Millisecond)

		assert.Eventually(t, func() bool {
			results := session.Results()
			return len(results) == 1 && results[0].PrimaryName == "Bern"
		}, 2*time.Second, 10*time.Millisecond)

		close(release)
		time.Sleep(50 * time.Millisecond)

		// устаревший ответ про Berlin отброшен
		mu.Lock()
		assert.Equal(t, []string{"Bern"}, delivered)
		mu.Unlock()
		assert.Equal(t, bern, session.Results())
	})
}
