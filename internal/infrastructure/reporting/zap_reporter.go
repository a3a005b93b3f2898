package reporting

import (
	"context"

	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/domain/repository"
	"go.uber.org/zap"
)

// zapReporter - реализация коллектора ошибок поверх структурного лога.
// Продакшн-вариант шлет отчеты во внешний сервис, контракт тот же:
// вызов ни при каких условиях не блокирует и не роняет вызывающего.
type zapReporter struct {
	logger *zap.Logger
}

// NewZapReporter создает репортер сбоев поверх zap
func NewZapReporter(logger *zap.Logger) repository.FailureReporter {
	return &zapReporter{logger: logger}
}

func (r *zapReporter) Report(_ context.Context, failure domain.Failure) {
	fields := []zap.Field{
		zap.String("category", string(failure.Category)),
		zap.String("source", failure.Source),
		zap.String("severity", string(failure.Severity)),
		zap.String("message_key", failure.MessageKey),
		zap.Bool("retryable", failure.Retryable),
	}

	switch failure.Severity {
	case domain.SeverityLow:
		r.logger.Info("Failure reported", fields...)
	case domain.SeverityHigh:
		r.logger.Error("Failure reported", fields...)
	default:
		r.logger.Warn("Failure reported", fields...)
	}
}
