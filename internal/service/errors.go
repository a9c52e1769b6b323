package service

import "errors"

// Sentinel errors surfaced across the grading services. Handlers map these
// onto HTTP statuses.
var (
	ErrProblemNotFound    = errors.New("problem not found")
	ErrTestNotFound       = errors.New("test not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrTestKindMismatch   = errors.New("test kind mismatch")

	// ErrGradingFault marks infrastructure-level failures of the grading
	// pipeline itself: storage faults, malformed records. A submission hit
	// by one is recorded as failed, never completed.
	ErrGradingFault = errors.New("grading fault")
)
