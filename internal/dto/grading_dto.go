package dto

import (
	"github.com/praxis-lms/praxis-go-api/internal/grading"
	"github.com/praxis-lms/praxis-go-api/pkg/ai"
)

// ProblemSubmissionRequest is one attempt at solving a coding problem.
type ProblemSubmissionRequest struct {
	Language string `json:"language" validate:"required"`
	Source   string `json:"source" validate:"required,min=1"`
}

// AdvisoryResponse carries the qualitative complexity feedback. It is
// advisory only and never affects the verdict.
type AdvisoryResponse struct {
	TimeComplexity  string   `json:"time_complexity"`
	SpaceComplexity string   `json:"space_complexity"`
	Feedback        string   `json:"feedback"`
	Optimizations   []string `json:"optimizations,omitempty"`
}

// NewAdvisoryResponse converts an advisory report into the API shape.
func NewAdvisoryResponse(report ai.AdvisoryReport) *AdvisoryResponse {
	return &AdvisoryResponse{
		TimeComplexity:  report.TimeComplexity,
		SpaceComplexity: report.SpaceComplexity,
		Feedback:        report.Feedback,
		Optimizations:   report.Optimizations,
	}
}

// ProblemSubmissionResponse is the graded outcome of one problem submission.
type ProblemSubmissionResponse struct {
	SubmissionID uint                 `json:"submission_id"`
	Status       string               `json:"status"`
	Passed       bool                 `json:"passed"`
	Score        int                  `json:"score"`
	MaxScore     int                  `json:"max_score"`
	Results      []CaseResultResponse `json:"results"`
	Advisory     *AdvisoryResponse    `json:"advisory,omitempty"`
}

// CodingTestEntry is one answer inside a coding test submission.
type CodingTestEntry struct {
	ProblemID uint   `json:"problem_id" validate:"required,gt=0"`
	Language  string `json:"language" validate:"required"`
	Source    string `json:"source" validate:"required,min=1"`
}

// CodingTestSubmissionRequest submits answers for every coding question of a test.
type CodingTestSubmissionRequest struct {
	Submissions []CodingTestEntry `json:"submissions" validate:"required,min=1,dive"`
}

// QuestionResultResponse is the graded outcome for one question of a test.
type QuestionResultResponse struct {
	ProblemID   uint                 `json:"problem_id"`
	Passed      bool                 `json:"passed"`
	EarnedScore int                  `json:"earned_score"`
	MaxScore    int                  `json:"max_score"`
	Results     []CaseResultResponse `json:"results,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// CodingTestSubmissionResponse aggregates a coding test's question verdicts.
type CodingTestSubmissionResponse struct {
	SubmissionID uint                     `json:"submission_id"`
	Status       string                   `json:"status"`
	Score        int                      `json:"score"`
	MaxScore     int                      `json:"max_score"`
	Results      []QuestionResultResponse `json:"results"`
}

// MCQAnswer is one selected option for an MCQ question.
type MCQAnswer struct {
	QuestionID     uint `json:"question_id" validate:"required,gt=0"`
	SelectedOption int  `json:"selected_option" validate:"gte=0"`
}

// MCQTestSubmissionRequest submits answers for an MCQ test.
type MCQTestSubmissionRequest struct {
	Answers []MCQAnswer `json:"answers" validate:"required,min=1,dive"`
}

// MCQResultResponse is the verdict for one MCQ answer.
type MCQResultResponse struct {
	QuestionID  uint   `json:"question_id"`
	Correct     bool   `json:"correct"`
	EarnedScore int    `json:"earned_score"`
	Error       string `json:"error,omitempty"`
}

// MCQTestSubmissionResponse aggregates an MCQ test's verdicts.
type MCQTestSubmissionResponse struct {
	SubmissionID    uint                `json:"submission_id"`
	Status          string              `json:"status"`
	Score           int                 `json:"score"`
	MaxScore        int                 `json:"max_score"`
	PercentageScore int                 `json:"percentage_score"`
	Results         []MCQResultResponse `json:"results"`
}

// NewQuestionResultResponse builds a question result from a verdict.
func NewQuestionResultResponse(problemID uint, verdict grading.Verdict) QuestionResultResponse {
	return QuestionResultResponse{
		ProblemID:   problemID,
		Passed:      verdict.Passed,
		EarnedScore: verdict.Score,
		MaxScore:    verdict.MaxScore,
		Results:     NewCaseResultResponses(verdict.Results),
	}
}
