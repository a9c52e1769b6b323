package dto

import (
	"encoding/json"
	"time"

	"github.com/praxis-lms/praxis-go-api/internal/models"
)

// SubmissionResponse represents one stored submission to API consumers.
type SubmissionResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ProblemID *uint     `json:"problem_id,omitempty"`
	TestID    *uint     `json:"test_id,omitempty"`
	Language  string    `json:"language"`
	Source    string    `json:"source,omitempty"`
	Status    string    `json:"status"`
	Results   any       `json:"results,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSubmissionResponse builds a response DTO from a model. The source is
// only included for the submission's owner.
func NewSubmissionResponse(submission models.Submission, includeSource bool) SubmissionResponse {
	response := SubmissionResponse{
		ID:        submission.ID,
		UserID:    submission.UserID,
		ProblemID: submission.ProblemID,
		TestID:    submission.TestID,
		Language:  submission.Language,
		Status:    submission.Status,
		Error:     submission.Error,
		CreatedAt: submission.CreatedAt,
	}

	if includeSource {
		response.Source = submission.Source
	}

	if len(submission.Results) > 0 {
		var results any
		if err := json.Unmarshal(submission.Results, &results); err == nil {
			response.Results = results
		}
	}

	return response
}

// NewSubmissionResponses converts a list of models, newest first preserved.
func NewSubmissionResponses(submissions []models.Submission, includeSource bool) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission, includeSource))
	}
	return responses
}
