package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/praxis-lms/praxis-go-api/internal/dto"
	"github.com/praxis-lms/praxis-go-api/internal/grading"
	"github.com/praxis-lms/praxis-go-api/internal/languages"
	"github.com/praxis-lms/praxis-go-api/internal/repository"
	"github.com/praxis-lms/praxis-go-api/internal/service"
	"github.com/praxis-lms/praxis-go-api/internal/utils"
)

// ProblemHandler exposes the problem catalog and problem submissions.
type ProblemHandler struct {
	catalog     service.CatalogService
	grading     service.GradingService
	submissions service.SubmissionService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewProblemHandler constructs the handler.
func NewProblemHandler(catalog service.CatalogService, grading service.GradingService, submissions service.SubmissionService, validator *validator.Validate, logger zerolog.Logger) *ProblemHandler {
	return &ProblemHandler{
		catalog:     catalog,
		grading:     grading,
		submissions: submissions,
		validator:   validator,
		logger:      logger.With().Str("component", "problem_handler").Logger(),
	}
}

// Register wires the student-facing endpoints into the router group.
func (h *ProblemHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("/:id/submissions", h.submit)
	router.Get("/:id/submissions", h.listSubmissions)
}

// RegisterAuthoring wires the endpoints that create catalog content.
func (h *ProblemHandler) RegisterAuthoring(router fiber.Router) {
	router.Post("", h.create)
}

func (h *ProblemHandler) create(c *fiber.Ctx) error {
	var payload dto.ProblemCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.catalog.CreateProblem(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "problem created", response)
}

func (h *ProblemHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	responses, total, err := h.catalog.ListProblems(c.Context(), repository.ProblemQuery{
		Difficulty: c.Query("difficulty"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problems retrieved", fiber.Map{
		"problems": responses,
		"total":    total,
	})
}

func (h *ProblemHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.catalog.GetProblem(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem retrieved", response)
}

func (h *ProblemHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload dto.ProblemSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.grading.SubmitProblem(c.Context(), userID, id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission graded", response)
}

func (h *ProblemHandler) listSubmissions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	responses, err := h.submissions.ListByProblem(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", responses)
}

func (h *ProblemHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem not found")
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
		h.logger.Error().Err(err).Msg("problem operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
