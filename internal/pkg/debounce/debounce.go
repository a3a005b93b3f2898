package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer откладывает действие до паузы во входном потоке. Каждый новый
// Trigger сбрасывает окно и отменяет отложенный вызов предыдущего. Номер
// поколения позволяет отбрасывать устаревшие асинхронные результаты: ответ
// на запрос, который уже перекрыт более новым, применять нельзя.
type Debouncer struct {
	mu    sync.Mutex
	clock clockwork.Clock
	delay time.Duration
	gen   uint64
	timer clockwork.Timer
}

// New создает дебаунсер с заданным окном тишины
func New(delay time.Duration, clock clockwork.Clock) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{
		clock: clock,
		delay: delay,
	}
}

// Trigger планирует fn после окна тишины и возвращает номер поколения.
// Отложенный вызов предыдущего Trigger отменяется.
func (d *Debouncer) Trigger(fn func(gen uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, func() {
		if d.Latest(gen) {
			fn(gen)
		}
	})

	return gen
}

// Cancel отменяет отложенный вызов и инвалидирует выданные поколения
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Latest сообщает, остается ли поколение актуальным
func (d *Debouncer) Latest(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen == gen
}
