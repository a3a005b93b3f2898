package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Limiter выдерживает минимальный интервал между последовательными исходными
// запросами. Состояние "время последнего запроса" живет в самом лимитере и
// внедряется в клиентов, поэтому в тестах его можно создавать заново и
// управлять временем через фейковые часы. Запросы никогда не отклоняются,
// только задерживаются.
type Limiter struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	interval time.Duration
	next     time.Time
}

// New создает лимитер с минимальным интервалом между запросами
func New(interval time.Duration, clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{
		clock:    clock,
		interval: interval,
	}
}

// Wait блокирует до наступления следующего разрешенного слота или отмены
// контекста. Конкурентные вызовы выстраиваются в очередь: каждый резервирует
// свой слот под мьютексом.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.clock.Now()

	var wait time.Duration
	if l.next.After(now) {
		wait = l.next.Sub(now)
		l.next = l.next.Add(l.interval)
	} else {
		l.next = now.Add(l.interval)
	}
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := l.clock.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		// Слот не использован, возвращаем его: отмененный запрос не должен
		// задерживать последующие
		l.mu.Lock()
		l.next = l.next.Add(-l.interval)
		l.mu.Unlock()
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
