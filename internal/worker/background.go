package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// shutdownTimeout - максимальное время ожидания завершения фоновых задач
	shutdownTimeout = 30 * time.Second
)

// Background запускает fire-and-forget задачи и умеет дождаться их при
// остановке сервиса. Вызывающий не ждет завершения задачи и не держит на
// нее ссылку.
type Background struct {
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewBackground создает раннер фоновых задач
func NewBackground(logger *zap.Logger) *Background {
	ctx, cancel := context.WithCancel(context.Background())
	return &Background{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Go запускает задачу в отдельной горутине. Возвращает false, если раннер
// уже остановлен. Паника внутри задачи не роняет процесс.
func (b *Background) Go(name string, fn func(ctx context.Context)) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.Warn("Background runner is stopped, task rejected", zap.String("task", name))
		return false
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Background task panicked",
					zap.String("task", name),
					zap.Any("panic", r))
			}
		}()

		start := time.Now()
		fn(b.ctx)
		b.logger.Debug("Background task finished",
			zap.String("task", name),
			zap.Duration("took", time.Since(start)))
	}()

	return true
}

// Stop перестает принимать новые задачи и ждет завершения запущенных
// с таймаутом. По истечении таймаута оставшиеся задачи отменяются через
// контекст.
func (b *Background) Stop() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("All background tasks finished")
		b.cancel()
		return nil
	case <-time.After(shutdownTimeout):
		b.cancel()
		b.logger.Warn("Background tasks shutdown timed out",
			zap.Duration("timeout", shutdownTimeout))
		return fmt.Errorf("background tasks shutdown timed out after %v", shutdownTimeout)
	}
}
