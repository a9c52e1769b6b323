package handler_test

import (
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/praxis-lms/praxis-go-api/internal/dto"
	"github.com/praxis-lms/praxis-go-api/internal/models"
	"github.com/praxis-lms/praxis-go-api/pkg/sandbox"
)

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }

func createTwoSum(t *testing.T, app *fiber.App) dto.ProblemResponse {
	t.Helper()
	resp := postJSON(t, app, "/api/v1/problems", twoSumCreateRequest())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		Data dto.ProblemResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	return created.Data
}

func TestCodingTestSubmissionFlow(t *testing.T) {
	executor := &scriptedExecutor{responses: map[string]sandbox.RunResult{
		"[[2,7,11,15],9]\n": {Stdout: "[0,1]\n"},
		"[[3,3],6]\n":       {Stdout: "[0,1]\n"},
	}}
	app := setupGradingApp(t, executor, "teacher")

	problem := createTwoSum(t, app)

	resp := postJSON(t, app, "/api/v1/tests", dto.TestCreateRequest{
		Title: "Arrays practical",
		Kind:  models.QuestionKindCoding,
		Questions: []dto.QuestionPayload{
			{Kind: models.QuestionKindCoding, ProblemID: uintPtr(problem.ID), Points: 10},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var createdTest struct {
		Data dto.TestResponse `json:"data"`
	}
	decodeResponse(t, resp, &createdTest)

	testPath := "/api/v1/tests/" + strconv.FormatUint(uint64(createdTest.Data.ID), 10)
	resp = postJSON(t, app, testPath+"/coding-submissions", dto.CodingTestSubmissionRequest{
		Submissions: []dto.CodingTestEntry{
			{ProblemID: problem.ID, Language: "python", Source: "solution"},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var graded struct {
		Data dto.CodingTestSubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &graded)
	require.Equal(t, 10, graded.Data.Score)
	require.Equal(t, 10, graded.Data.MaxScore)
	require.True(t, graded.Data.Results[0].Passed)
}

func TestMCQTestSubmissionFlow(t *testing.T) {
	app := setupGradingApp(t, &scriptedExecutor{responses: map[string]sandbox.RunResult{}}, "teacher")

	resp := postJSON(t, app, "/api/v1/tests", dto.TestCreateRequest{
		Title: "Data structures quiz",
		Kind:  models.QuestionKindMCQ,
		Questions: []dto.QuestionPayload{
			{Kind: models.QuestionKindMCQ, Text: "Which structure is LIFO?", Options: []string{"queue", "stack"}, CorrectOption: intPtr(1)},
			{Kind: models.QuestionKindMCQ, Text: "Which structure is FIFO?", Options: []string{"queue", "stack"}, CorrectOption: intPtr(0)},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var createdTest struct {
		Data dto.TestResponse `json:"data"`
	}
	decodeResponse(t, resp, &createdTest)
	require.Len(t, createdTest.Data.Questions, 2)

	questions := createdTest.Data.Questions
	testPath := "/api/v1/tests/" + strconv.FormatUint(uint64(createdTest.Data.ID), 10)
	resp = postJSON(t, app, testPath+"/mcq-submissions", dto.MCQTestSubmissionRequest{
		Answers: []dto.MCQAnswer{
			{QuestionID: questions[0].ID, SelectedOption: 1},
			{QuestionID: questions[1].ID, SelectedOption: 1},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var graded struct {
		Data dto.MCQTestSubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &graded)
	require.Equal(t, 10, graded.Data.Score)
	require.Equal(t, 20, graded.Data.MaxScore)
	require.Equal(t, 50, graded.Data.PercentageScore)
	require.True(t, graded.Data.Results[0].Correct)
	require.False(t, graded.Data.Results[1].Correct)
}

func TestMCQSubmissionToCodingTestRejected(t *testing.T) {
	executor := &scriptedExecutor{responses: map[string]sandbox.RunResult{}}
	app := setupGradingApp(t, executor, "teacher")
	problem := createTwoSum(t, app)

	resp := postJSON(t, app, "/api/v1/tests", dto.TestCreateRequest{
		Title: "Arrays practical",
		Kind:  models.QuestionKindCoding,
		Questions: []dto.QuestionPayload{
			{Kind: models.QuestionKindCoding, ProblemID: uintPtr(problem.ID)},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var createdTest struct {
		Data dto.TestResponse `json:"data"`
	}
	decodeResponse(t, resp, &createdTest)

	testPath := "/api/v1/tests/" + strconv.FormatUint(uint64(createdTest.Data.ID), 10)
	resp = postJSON(t, app, testPath+"/mcq-submissions", dto.MCQTestSubmissionRequest{
		Answers: []dto.MCQAnswer{{QuestionID: 1, SelectedOption: 0}},
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateTestWithMalformedQuestionRejected(t *testing.T) {
	app := setupGradingApp(t, &scriptedExecutor{responses: map[string]sandbox.RunResult{}}, "teacher")

	resp := postJSON(t, app, "/api/v1/tests", dto.TestCreateRequest{
		Title: "Broken quiz",
		Kind:  models.QuestionKindMCQ,
		Questions: []dto.QuestionPayload{
			{Kind: models.QuestionKindMCQ, Text: "Only one option", Options: []string{"yes"}, CorrectOption: intPtr(0)},
		},
	})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetTestHidesCorrectOption(t *testing.T) {
	app := setupGradingApp(t, &scriptedExecutor{responses: map[string]sandbox.RunResult{}}, "teacher")

	resp := postJSON(t, app, "/api/v1/tests", dto.TestCreateRequest{
		Title: "Secrets quiz",
		Kind:  models.QuestionKindMCQ,
		Questions: []dto.QuestionPayload{
			{Kind: models.QuestionKindMCQ, Text: "Pick", Options: []string{"a", "b"}, CorrectOption: intPtr(1)},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var createdTest struct {
		Data dto.TestResponse `json:"data"`
	}
	decodeResponse(t, resp, &createdTest)

	resp = getJSON(t, app, "/api/v1/tests/"+strconv.FormatUint(uint64(createdTest.Data.ID), 10))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	require.NotContains(t, body, "correct_option")
}
