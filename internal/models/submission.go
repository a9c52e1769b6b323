package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission lifecycle states. A submission is created pending and moves
// exactly once to completed or failed. Failing every test case is still a
// completed grading cycle; failed is reserved for infrastructure faults.
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusCompleted = "completed"
	SubmissionStatusFailed    = "failed"
)

// Submission is one attempt at solving a problem or sitting a test.
// Records are append-only: results are attached, never removed.
type Submission struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ProblemID *uint          `gorm:"index" json:"problem_id,omitempty"`
	TestID    *uint          `gorm:"index" json:"test_id,omitempty"`
	Language  string         `gorm:"size:32" json:"language"`
	Source    string         `gorm:"type:text" json:"source"`
	Status    string         `gorm:"size:32;not null" json:"status"`
	Results   datatypes.JSON `json:"results,omitempty"`
	Error     string         `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Graded reports whether the grading engine has finished with the submission.
func (s Submission) Graded() bool {
	return s.Status == SubmissionStatusCompleted || s.Status == SubmissionStatusFailed
}
