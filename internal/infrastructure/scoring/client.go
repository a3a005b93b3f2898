package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/discovery-microservice/internal/config"
	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/domain/repository"
	"github.com/discovery-microservice/internal/pkg/errors"
	"github.com/discovery-microservice/internal/pkg/metrics"
	"go.uber.org/zap"
)

const systemPrompt = "You rate tourist attractions for a traveler. " +
	"Given attraction names and the traveler's interests, return ONLY a JSON array " +
	"of objects {\"name\": string, \"score\": number 0-10, \"reason\": string}. " +
	"Score how well each attraction matches the interests. Keep reasons short."

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewClient создает клиент скорингового сервиса (chat-completions API)
func NewClient(cfg *config.ScoringConfig, m *metrics.Metrics, logger *zap.Logger) repository.ScoringRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		metrics: m,
		logger:  logger,
	}
}

// Enabled сообщает, настроен ли ключ скоринга
func (c *client) Enabled() bool {
	return c.apiKey != ""
}

// ScoreAttractions запрашивает оценки релевантности по именам и интересам.
// Сетевые сбои и сбои разбора различаются кодом ошибки: при нечитаемом
// контенте вызывающая сторона деградирует до оценок по умолчанию.
func (c *client) ScoreAttractions(ctx context.Context, names []string, interests []string) ([]domain.AttractionScore, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{
				Role: "user",
				Content: fmt.Sprintf("Attractions:\n%s\n\nInterests: %s",
					strings.Join(names, "\n"),
					strings.Join(interests, ", ")),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal scoring request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderDuration.WithLabelValues("scoring").Observe(time.Since(start).Seconds())
	if err != nil {
		appErr := classifyTransportError(err)
		c.metrics.ProviderRequests.WithLabelValues("scoring", outcomeLabel(appErr)).Inc()
		c.logger.Warn("Scoring request failed", zap.Error(err))
		return nil, appErr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ProviderRequests.WithLabelValues("scoring", "server_error").Inc()
		c.logger.Warn("Scoring service returned error status", zap.Int("status_code", resp.StatusCode))
		return nil, errors.ErrProviderOffline
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.metrics.ProviderRequests.WithLabelValues("scoring", "parse_error").Inc()
		c.logger.Warn("Failed to decode scoring response", zap.Error(err))
		return nil, errors.ErrProviderResponse
	}

	if len(parsed.Choices) == 0 {
		c.metrics.ProviderRequests.WithLabelValues("scoring", "parse_error").Inc()
		return nil, errors.ErrProviderResponse
	}

	scores, err := decodeScores(parsed.Choices[0].Message.Content)
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues("scoring", "parse_error").Inc()
		c.logger.Warn("Scoring content is not a valid score array", zap.Error(err))
		return nil, errors.ErrProviderResponse
	}

	c.metrics.ProviderRequests.WithLabelValues("scoring", "success").Inc()
	return scores, nil
}

func classifyTransportError(err error) *errors.AppError {
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) ||
		(stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.ErrProviderTimeout
	}
	return errors.ErrProviderOffline
}

func outcomeLabel(appErr *errors.AppError) string {
	if appErr == errors.ErrProviderTimeout {
		return "timeout"
	}
	return "offline"
}
