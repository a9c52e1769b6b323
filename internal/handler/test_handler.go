package handler

import (
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

// TestHandler exposes the test catalog and test submissions, both coding
// and MCQ.
type TestHandler struct {
	catalog     service.CatalogService
	grading     service.GradingService
	submissions service.SubmissionService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewTestHandler constructs the handler.
func NewTestHandler(catalog service.CatalogService, grading service.GradingService, submissions service.SubmissionService, validator *validator.Validate, logger zerolog.Logger) *TestHandler {
	return &TestHandler{
		catalog:     catalog,
		grading:     grading,
		submissions: submissions,
		validator:   validator,
		logger:      logger.With().Str("component", "test_handler").Logger(),
	}
}

// Register wires the student-facing endpoints into the router group.
func (h *TestHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("/:id/coding-submissions", h.submitCoding)
	router.Post("/:id/mcq-submissions", h.submitMCQ)
	router.Get("/:id/submissions", h.listSubmissions)
}

// RegisterAuthoring wires the endpoints that create catalog content.
func (h *TestHandler) RegisterAuthoring(router fiber.Router) {
	router.Post("", h.create)
}

func (h *TestHandler) create(c *fiber.Ctx) error {
	var payload dto.TestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.catalog.CreateTest(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "test created", response)
}

func (h *TestHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.catalog.GetTest(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "test retrieved", response)
}

func (h *TestHandler) submitCoding(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload dto.CodingTestSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.grading.SubmitCodingTest(c.Context(), userID, id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "test graded", response)
}

func (h *TestHandler) submitMCQ(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload dto.MCQTestSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.grading.SubmitMCQTest(c.Context(), userID, id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "test graded", response)
}

func (h *TestHandler) listSubmissions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	responses, err := h.submissions.ListByTest(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", responses)
}

func (h *TestHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrTestNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "test not found")
	case errors.Is(err, service.ErrTestKindMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, "submission does not match test kind")
	case errors.Is(err, service.ErrInvalidQuestion):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, languages.ErrUnsupportedLanguage):
		return utils.SendError(c, fiber.StatusBadRequest, "language not supported")
	case errors.Is(err, grading.ErrNoTestCases):
		return utils.SendError(c, fiber.StatusBadRequest, "problem has no test cases")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrGradingFault):
		h.logger.Error().Err(err).Msg("grading pipeline failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "grading failed")
	default:
		h.logger.Error().Err(err).Msg("test operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
