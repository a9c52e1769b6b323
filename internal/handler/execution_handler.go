package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/praxis-lms/praxis-go-api/internal/dto"
	"github.com/praxis-lms/praxis-go-api/internal/grading"
	"github.com/praxis-lms/praxis-go-api/internal/languages"
	"github.com/praxis-lms/praxis-go-api/internal/service"
	"github.com/praxis-lms/praxis-go-api/internal/utils"
)

// ExecutionHandler exposes the ad-hoc execution endpoints: a scratchpad
// run and grading against caller-supplied test cases. Nothing here is
// persisted.
type ExecutionHandler struct {
	service   service.ExecutionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewExecutionHandler constructs the handler.
func NewExecutionHandler(service service.ExecutionService, validator *validator.Validate, logger zerolog.Logger) *ExecutionHandler {
	return &ExecutionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "execution_handler").Logger(),
	}
}

// Register wires the sandbox-backed endpoints into the router group.
func (h *ExecutionHandler) Register(router fiber.Router) {
	router.Post("/execute", h.execute)
	router.Post("/test", h.test)
}

// RegisterPublic wires the endpoints that neither authenticate nor touch
// the sandbox.
func (h *ExecutionHandler) RegisterPublic(router fiber.Router) {
	router.Get("/languages", h.languages)
}

func (h *ExecutionHandler) execute(c *fiber.Ctx) error {
	var payload dto.ExecuteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Execute(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "code executed", response)
}

func (h *ExecutionHandler) test(c *fiber.Ctx) error {
	var payload dto.TestCodeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.TestCode(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "code tested", response)
}

func (h *ExecutionHandler) languages(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "languages retrieved", dto.NewLanguageResponses())
}

func (h *ExecutionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, languages.ErrUnsupportedLanguage):
		return utils.SendError(c, fiber.StatusBadRequest, "language not supported")
	case errors.Is(err, grading.ErrNoTestCases):
		return utils.SendError(c, fiber.StatusBadRequest, "at least one test case is required")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return utils.SendError(c, fiber.StatusRequestTimeout, "execution cancelled")
	default:
		h.logger.Error().Err(err).Msg("execution failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
