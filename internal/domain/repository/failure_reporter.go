package repository

import (
	"context"

	"github.com/discovery-microservice/internal/domain"
)

// FailureReporter - внешний коллектор ошибок. Вызовы fire-and-forget:
// ядро не блокируется и не зависит от результата.
type FailureReporter interface {
	Report(ctx context.Context, failure domain.Failure)
}
