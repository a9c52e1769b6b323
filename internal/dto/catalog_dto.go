package dto

import (
	"github.com/praxis-lms/praxis-go-api/internal/languages"
	"github.com/praxis-lms/praxis-go-api/internal/models"
)

// ProblemCreateRequest defines a new coding problem with its test cases.
type ProblemCreateRequest struct {
	Title      string            `json:"title" validate:"required,min=3,max=255"`
	Statement  string            `json:"statement" validate:"required,min=1"`
	Difficulty string            `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Points     int               `json:"points" validate:"gte=0"`
	Tags       []string          `json:"tags"`
	TestCases  []TestCasePayload `json:"test_cases" validate:"required,min=1"`
}

// QuestionPayload is the tagged union carried by test creation requests.
// Kind decides which fields are meaningful; the payload is validated against
// a JSON schema per kind at the boundary.
type QuestionPayload struct {
	Kind          string   `json:"kind"`
	Points        int      `json:"points,omitempty"`
	ProblemID     *uint    `json:"problem_id,omitempty"`
	Text          string   `json:"text,omitempty"`
	Options       []string `json:"options,omitempty"`
	CorrectOption *int     `json:"correct_option,omitempty"`
}

// TestCreateRequest defines a new test with its ordered questions.
type TestCreateRequest struct {
	Title       string            `json:"title" validate:"required,min=3,max=255"`
	Description string            `json:"description"`
	Kind        string            `json:"kind" validate:"required,oneof=mcq coding"`
	Questions   []QuestionPayload `json:"questions" validate:"required,min=1"`
}

// ProblemCaseResponse exposes one test case of a problem.
type ProblemCaseResponse struct {
	ID          uint   `json:"id"`
	Position    int    `json:"position"`
	Input       any    `json:"input"`
	Expected    any    `json:"expected_output"`
	Explanation string `json:"explanation,omitempty"`
}

// ProblemResponse represents a problem to API consumers.
type ProblemResponse struct {
	ID         uint                  `json:"id"`
	Title      string                `json:"title"`
	Statement  string                `json:"statement"`
	Difficulty string                `json:"difficulty"`
	Points     int                   `json:"points"`
	Tags       []string              `json:"tags,omitempty"`
	TestCases  []ProblemCaseResponse `json:"test_cases,omitempty"`
}

// NewProblemResponse builds a response DTO from a model.
func NewProblemResponse(problem models.Problem) ProblemResponse {
	response := ProblemResponse{
		ID:         problem.ID,
		Title:      problem.Title,
		Statement:  problem.Statement,
		Difficulty: problem.Difficulty,
		Points:     problem.Points,
		Tags:       problem.TagsSlice(),
	}

	for _, testCase := range problem.TestCases {
		input, _ := testCase.DecodedInput()
		expected, _ := testCase.DecodedExpected()
		response.TestCases = append(response.TestCases, ProblemCaseResponse{
			ID:          testCase.ID,
			Position:    testCase.Position,
			Input:       input,
			Expected:    expected,
			Explanation: testCase.Explanation,
		})
	}

	return response
}

// QuestionResponse represents one question without leaking the correct answer.
type QuestionResponse struct {
	ID        uint     `json:"id"`
	Position  int      `json:"position"`
	Kind      string   `json:"kind"`
	Points    int      `json:"points"`
	ProblemID *uint    `json:"problem_id,omitempty"`
	Text      string   `json:"text,omitempty"`
	Options   []string `json:"options,omitempty"`
}

// TestResponse represents a test to API consumers.
type TestResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Kind        string             `json:"kind"`
	Questions   []QuestionResponse `json:"questions"`
}

// NewTestResponse builds a response DTO from a model.
func NewTestResponse(test models.Test) TestResponse {
	response := TestResponse{
		ID:          test.ID,
		Title:       test.Title,
		Description: test.Description,
		Kind:        test.Kind,
		Questions:   make([]QuestionResponse, 0, len(test.Questions)),
	}

	for _, question := range test.Questions {
		options, _ := question.OptionsSlice()
		response.Questions = append(response.Questions, QuestionResponse{
			ID:        question.ID,
			Position:  question.Position,
			Kind:      question.Kind,
			Points:    question.Points,
			ProblemID: question.ProblemID,
			Text:      question.Text,
			Options:   options,
		})
	}

	return response
}

// LanguageResponse describes one supported runtime.
type LanguageResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Compiled bool   `json:"compiled"`
}

// NewLanguageResponses lists the supported runtimes.
func NewLanguageResponses() []LanguageResponse {
	runtimes := languages.List()
	responses := make([]LanguageResponse, 0, len(runtimes))
	for _, runtime := range runtimes {
		responses = append(responses, LanguageResponse{
			ID:       runtime.ID,
			Name:     runtime.Name,
			Compiled: runtime.Compiled(),
		})
	}
	return responses
}
