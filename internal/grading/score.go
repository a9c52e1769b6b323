package grading

import "math"

// Score computes partial credit for one question: the question's point value
// scaled by the fraction of passing cases, rounded half away from zero.
func Score(points, passed, total int) int {
	if total <= 0 || points <= 0 {
		return 0
	}
	return int(math.Round(float64(points) * float64(passed) / float64(total)))
}

// Percentage converts earned/max points into a rounded percentage score.
func Percentage(earned, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(earned) / float64(max)))
}

// Verdict is the aggregated grading outcome for one submission. It is
// derived from a report and never mutated afterwards.
type Verdict struct {
	Passed   bool         `json:"passed"`
	Score    int          `json:"score"`
	MaxScore int          `json:"max_score"`
	Results  []CaseResult `json:"results"`
}

// NewVerdict scores a report against a question's point value.
func NewVerdict(points int, report Report) Verdict {
	passed := 0
	for _, result := range report.Results {
		if result.Passed {
			passed++
		}
	}

	return Verdict{
		Passed:   report.Passed,
		Score:    Score(points, passed, len(report.Results)),
		MaxScore: points,
		Results:  report.Results,
	}
}
