package handler

import (
	"context"
	"sync"
	"time"

	"github.com/discovery-microservice/internal/domain"
	"github.com/discovery-microservice/internal/pkg/errors"
	"github.com/discovery-microservice/internal/pkg/utils"
	"github.com/discovery-microservice/internal/pkg/validator"
	"github.com/discovery-microservice/internal/usecase"
	"github.com/discovery-microservice/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	typeaheadLimit     = 10
	sessionIdleTimeout = 5 * time.Minute
)

// TypeaheadHandler - поиск по мере набора. Каждое нажатие клавиши приходит
// отдельным запросом; сессия дебаунсит обращения к провайдеру и отбрасывает
// ответы, перекрытые более новым вводом. Клиент забирает свежие результаты
// отдельным GET.
type TypeaheadHandler struct {
	searchUC *usecase.SearchUseCase
	clock    clockwork.Clock
	delay    time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*typeaheadSession
}

type typeaheadSession struct {
	session  *usecase.SearchSession
	lastSeen time.Time
}

// NewTypeaheadHandler - создание нового TypeaheadHandler
func NewTypeaheadHandler(searchUC *usecase.SearchUseCase, delay time.Duration, clock clockwork.Clock, logger *zap.Logger) *TypeaheadHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TypeaheadHandler{
		searchUC: searchUC,
		clock:    clock,
		delay:    delay,
		logger:   logger,
		sessions: make(map[string]*typeaheadSession),
	}
}

// Update - очередное состояние строки поиска. Отвечает сразу последними
// принятыми результатами сессии; запрос к провайдеру уйдет после паузы ввода.
func (h *TypeaheadHandler) Update(c *fiber.Ctx) error {
	var req dto.TypeaheadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	session := h.getOrCreate(req.SessionID)

	// Контекст запроса умирает вместе с ответом, а поиск уходит позже
	session.Update(context.Background(), req.Query, nil)

	results := session.Results()
	return utils.SendSuccess(c, dto.SearchResponse{Results: results, Total: len(results)}, nil)
}

// Results - последние принятые результаты сессии
func (h *TypeaheadHandler) Results(c *fiber.Ctx) error {
	h.mu.Lock()
	entry, ok := h.sessions[c.Params("session_id")]
	if ok {
		entry.lastSeen = h.clock.Now()
	}
	h.mu.Unlock()

	var results []domain.SearchResult
	if ok {
		results = entry.session.Results()
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	return utils.SendSuccess(c, dto.SearchResponse{Results: results, Total: len(results)}, nil)
}

// Close - завершение сессии, отложенный запрос отменяется
func (h *TypeaheadHandler) Close(c *fiber.Ctx) error {
	id := c.Params("session_id")

	h.mu.Lock()
	entry, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if ok {
		entry.session.Close()
	}

	return utils.SendSuccess(c, fiber.Map{"closed": ok}, nil)
}

func (h *TypeaheadHandler) getOrCreate(id string) *usecase.SearchSession {
	now := h.clock.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	// Заброшенные сессии убираются попутно, отдельного фонового обхода нет
	for key, entry := range h.sessions {
		if key != id && now.Sub(entry.lastSeen) > sessionIdleTimeout {
			entry.session.Close()
			delete(h.sessions, key)
		}
	}

	entry, ok := h.sessions[id]
	if !ok {
		entry = &typeaheadSession{
			session: usecase.NewSearchSession(h.searchUC, h.delay, typeaheadLimit, h.clock),
		}
		h.sessions[id] = entry
	}
	entry.lastSeen = now

	return entry.session
}
