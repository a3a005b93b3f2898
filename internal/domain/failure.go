package domain

// FailureCategory классифицирует невосстановимые сбои внешних вызовов
type FailureCategory string

const (
	FailureValidation FailureCategory = "validation"
	FailureTimeout    FailureCategory = "timeout"
	FailureOffline    FailureCategory = "offline"
	FailureServer     FailureCategory = "server"
	FailureParse      FailureCategory = "parse"
	FailureNotFound   FailureCategory = "not_found"
	FailureRateLimit  FailureCategory = "rate_limit"
)

// FailureSeverity - насколько сбой важен для пользователя
type FailureSeverity string

const (
	SeverityLow    FailureSeverity = "low"
	SeverityMedium FailureSeverity = "medium"
	SeverityHigh   FailureSeverity = "high"
)

// Failure - отчет о сбое для внешнего коллектора ошибок.
// Ядро отправляет его на каждый невосстановимый сбой, но никогда не ждет
// и не зависит от результата отправки.
type Failure struct {
	Category   FailureCategory `json:"category"`
	Source     string          `json:"source"`
	Severity   FailureSeverity `json:"severity"`
	MessageKey string          `json:"message_key"`
	Retryable  bool            `json:"retryable,omitempty"`
}
