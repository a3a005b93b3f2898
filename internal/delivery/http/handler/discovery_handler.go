package handler

import (
	"time"

	"github.com/discovery-microservice/internal/pkg/utils"
	"github.com/discovery-microservice/internal/pkg/validator"
	"github.com/discovery-microservice/internal/usecase"
	"github.com/discovery-microservice/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DiscoveryHandler - обработчик обнаружения достопримечательностей
type DiscoveryHandler struct {
	discoveryUC *usecase.DiscoveryUseCase
	logger      *zap.Logger
}

// NewDiscoveryHandler - создание нового DiscoveryHandler
func NewDiscoveryHandler(discoveryUC *usecase.DiscoveryUseCase, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryUC: discoveryUC,
		logger:      logger,
	}
}

// Discover - достопримечательности вокруг точки. Ответ приходит сразу,
// ранжирование по интересам догоняет кеш в фоне.
func (h *DiscoveryHandler) Discover(c *fiber.Ctx) error {
	var req dto.DiscoverRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	start := time.Now()
	result, err := h.discoveryUC.Discover(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    len(result.Attractions),
		Ranked:   result.Ranked,
		Cached:   result.Cached,
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000.0,
	})
}
