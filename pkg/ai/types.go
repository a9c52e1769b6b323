package ai

import (
	"context"
	"errors"
)

// ErrAdvisoryUnavailable indicates the advisory backend failed or is not
// configured. Advisory output never gates pass/fail verdicts, so callers
// degrade instead of failing the submission.
var ErrAdvisoryUnavailable = errors.New("advisory unavailable")

// AdvisoryInput carries the artefacts needed to analyse a submission.
type AdvisoryInput struct {
	Language         string
	Source           string
	ProblemStatement string
}

// AdvisoryReport is the qualitative feedback produced for a submission.
type AdvisoryReport struct {
	TimeComplexity  string   `json:"time_complexity"`
	SpaceComplexity string   `json:"space_complexity"`
	Feedback        string   `json:"feedback"`
	Optimizations   []string `json:"optimizations,omitempty"`
}

// Advisor describes a model capable of commenting on code complexity and
// optimization opportunities.
type Advisor interface {
	Analyze(ctx context.Context, input AdvisoryInput) (AdvisoryReport, error)
}
