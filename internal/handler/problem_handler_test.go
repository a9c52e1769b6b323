package handler_test

import (
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/praxis-lms/praxis-go-api/internal/config"
	"github.com/praxis-lms/praxis-go-api/internal/dto"
	"github.com/praxis-lms/praxis-go-api/internal/execution"
	"github.com/praxis-lms/praxis-go-api/internal/grading"
	"github.com/praxis-lms/praxis-go-api/internal/handler"
	"github.com/praxis-lms/praxis-go-api/internal/models"
	"github.com/praxis-lms/praxis-go-api/internal/repository"
	"github.com/praxis-lms/praxis-go-api/internal/router"
	"github.com/praxis-lms/praxis-go-api/internal/service"
	"github.com/praxis-lms/praxis-go-api/pkg/sandbox"
)

func setupGradingApp(t *testing.T, executor sandbox.Executor, role string) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A private in-memory database exists per connection, so the pool must
	// stay at one.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Problem{}, &models.ProblemCase{}, &models.Test{}, &models.Question{}, &models.Submission{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	runner := execution.NewRunner(executor, execution.Config{WorkspaceRoot: t.TempDir(), Timeout: time.Second}, logger)
	cases := grading.NewRunner(runner, logger)
	limiter := service.NewSessionLimiter(2)

	submissionRepo := repository.NewSubmissionRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	testRepo := repository.NewTestRepository(db)

	gradingService := service.NewGradingService(submissionRepo, problemRepo, testRepo, cases, nil, nil, nil, limiter, validate, logger, service.GradingConfig{})
	submissionService := service.NewSubmissionService(submissionRepo, logger)
	catalogService, err := service.NewCatalogService(problemRepo, testRepo, validate, logger)
	require.NoError(t, err)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		ProblemHandler:    handler.NewProblemHandler(catalogService, gradingService, submissionService, validate, logger),
		TestHandler:       handler.NewTestHandler(catalogService, gradingService, submissionService, validate, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app
}

func twoSumCreateRequest() dto.ProblemCreateRequest {
	return dto.ProblemCreateRequest{
		Title:     "Two Sum",
		Statement: "Return indices of the two numbers that add up to target.",
		Points:    10,
		TestCases: []dto.TestCasePayload{
			{Input: map[string]any{"nums": []any{2, 7, 11, 15}, "target": 9}, ExpectedOutput: []any{0, 1}},
			{Input: map[string]any{"nums": []any{3, 3}, "target": 6}, ExpectedOutput: []any{0, 1}},
		},
	}
}

func TestProblemSubmissionFlow(t *testing.T) {
	executor := &scriptedExecutor{responses: map[string]sandbox.RunResult{
		"[[2,7,11,15],9]\n": {Stdout: "[0,1]\n"},
		"[[3,3],6]\n":       {Stdout: "[0,1]\n"},
	}}
	app := setupGradingApp(t, executor, "teacher")

	resp := postJSON(t, app, "/api/v1/problems", twoSumCreateRequest())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.ProblemResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	require.NotZero(t, created.Data.ID)
	require.Len(t, created.Data.TestCases, 2)

	problemPath := "/api/v1/problems/" + strconv.FormatUint(uint64(created.Data.ID), 10)
	resp = postJSON(t, app, problemPath+"/submissions", dto.ProblemSubmissionRequest{
		Language: "python",
		Source:   "solution",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var graded struct {
		Data dto.ProblemSubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &graded)
	require.True(t, graded.Data.Passed)
	require.Equal(t, 10, graded.Data.Score)
	require.Equal(t, models.SubmissionStatusCompleted, graded.Data.Status)

	// The stored submission is visible on the query surface, source included
	// because the viewer owns it.
	req := httptest.NewRequest("GET", "/api/v1/submissions/"+strconv.FormatUint(uint64(graded.Data.SubmissionID), 10), nil)
	queryResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, queryResp.StatusCode)

	var stored struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, queryResp, &stored)
	require.Equal(t, "solution", stored.Data.Source)
	require.Equal(t, models.SubmissionStatusCompleted, stored.Data.Status)
}

func TestProblemSubmissionWrongAnswerStillPersists(t *testing.T) {
	executor := &scriptedExecutor{responses: map[string]sandbox.RunResult{
		"[[2,7,11,15],9]\n": {Stdout: "[1,1]\n"},
		"[[3,3],6]\n":       {Stdout: "[1,1]\n"},
	}}
	app := setupGradingApp(t, executor, "teacher")

	resp := postJSON(t, app, "/api/v1/problems", twoSumCreateRequest())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		Data dto.ProblemResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)

	problemPath := "/api/v1/problems/" + strconv.FormatUint(uint64(created.Data.ID), 10)
	resp = postJSON(t, app, problemPath+"/submissions", dto.ProblemSubmissionRequest{
		Language: "python",
		Source:   "wrong",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var graded struct {
		Data dto.ProblemSubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &graded)
	require.False(t, graded.Data.Passed)
	require.Equal(t, 0, graded.Data.Score)
	require.Equal(t, models.SubmissionStatusCompleted, graded.Data.Status)
}

func TestProblemSubmissionUnknownProblemIs404(t *testing.T) {
	app := setupGradingApp(t, &scriptedExecutor{responses: map[string]sandbox.RunResult{}}, "student")

	resp := postJSON(t, app, "/api/v1/problems/999/submissions", dto.ProblemSubmissionRequest{
		Language: "python",
		Source:   "solution",
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProblemCreationForbiddenForStudents(t *testing.T) {
	app := setupGradingApp(t, &scriptedExecutor{responses: map[string]sandbox.RunResult{}}, "student")

	resp := postJSON(t, app, "/api/v1/problems", twoSumCreateRequest())
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
