package dto

import "github.com/praxis-lms/praxis-go-api/internal/grading"

// ExecuteRequest asks for a one-off sandboxed run of a piece of code.
type ExecuteRequest struct {
	Language string `json:"language" validate:"required"`
	Source   string `json:"source" validate:"required,min=1"`
	Stdin    string `json:"stdin"`
}

// ExecuteResponse carries the program's output. Error is set for code-level
// failures (compile error, crash, timeout); it is not an API fault.
type ExecuteResponse struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// TestCasePayload is one caller-supplied input/expected-output pair.
type TestCasePayload struct {
	Input          any    `json:"input"`
	ExpectedOutput any    `json:"expected_output"`
	Explanation    string `json:"explanation,omitempty"`
}

// TestCodeRequest grades code against caller-supplied test cases without
// persisting a submission.
type TestCodeRequest struct {
	Language  string            `json:"language" validate:"required"`
	Source    string            `json:"source" validate:"required,min=1"`
	TestCases []TestCasePayload `json:"test_cases" validate:"required,min=1"`
}

// CaseResultResponse is the verdict for a single test case.
type CaseResultResponse struct {
	Index          int    `json:"index"`
	Passed         bool   `json:"passed"`
	ActualOutput   any    `json:"actual_output,omitempty"`
	ExpectedOutput any    `json:"expected_output"`
	Error          string `json:"error,omitempty"`
}

// TestCodeResponse aggregates per-case verdicts.
type TestCodeResponse struct {
	Passed  bool                 `json:"passed"`
	Results []CaseResultResponse `json:"results"`
}

// NewCaseResultResponses converts runner results into the API shape.
func NewCaseResultResponses(results []grading.CaseResult) []CaseResultResponse {
	responses := make([]CaseResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, CaseResultResponse{
			Index:          result.Index,
			Passed:         result.Passed,
			ActualOutput:   result.Actual,
			ExpectedOutput: result.Expected,
			Error:          result.Error,
		})
	}
	return responses
}

// NewTestCodeResponse builds a response DTO from a grading report.
func NewTestCodeResponse(report grading.Report) TestCodeResponse {
	return TestCodeResponse{
		Passed:  report.Passed,
		Results: NewCaseResultResponses(report.Results),
	}
}
