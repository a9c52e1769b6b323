package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/praxis-lms/praxis-go-api/internal/execution"
)

// ErrNoTestCases indicates a grading request arrived without any test cases.
// An empty set would pass vacuously, so it is rejected at submission time.
var ErrNoTestCases = errors.New("no test cases provided")

// Case is one input/expected-output pair.
type Case struct {
	Input       any
	Expected    any
	Explanation string
}

// CaseResult records the verdict for one test case.
type CaseResult struct {
	Index    int    `json:"index"`
	Passed   bool   `json:"passed"`
	Actual   any    `json:"actual_output,omitempty"`
	Expected any    `json:"expected_output"`
	Error    string `json:"error,omitempty"`
}

// Report aggregates per-case verdicts for one submission.
type Report struct {
	Passed  bool         `json:"passed"`
	Results []CaseResult `json:"results"`
}

// Runner grades one submission against an ordered set of test cases.
type Runner struct {
	exec   *execution.Runner
	logger zerolog.Logger
}

// NewRunner constructs a test case runner on top of the execution runner.
func NewRunner(exec *execution.Runner, logger zerolog.Logger) *Runner {
	return &Runner{
		exec:   exec,
		logger: logger.With().Str("component", "testcase_runner").Logger(),
	}
}

// RunCases executes the submission once per test case, sequentially, and
// compares the parsed output against the expected value. A failing or
// erroring case never aborts the remaining cases; every case gets a verdict.
func (r *Runner) RunCases(ctx context.Context, source, language string, cases []Case) (Report, error) {
	if len(cases) == 0 {
		return Report{}, ErrNoTestCases
	}

	report := Report{Passed: true, Results: make([]CaseResult, 0, len(cases))}

	for index, testCase := range cases {
		caseResult := CaseResult{Index: index, Expected: testCase.Expected}

		stdin, err := EncodeInput(testCase.Input)
		if err != nil {
			caseResult.Error = fmt.Sprintf("encode input: %v", err)
			report.Passed = false
			report.Results = append(report.Results, caseResult)
			continue
		}

		result, err := r.exec.Execute(ctx, source, language, stdin)
		switch {
		case err != nil:
			caseResult.Error = err.Error()
		case result.Failed():
			caseResult.Error = result.Error
		default:
			actual := ParseOutput(result.Output)
			caseResult.Actual = actual
			caseResult.Passed = Equal(testCase.Expected, actual)
		}

		if !caseResult.Passed {
			report.Passed = false
		}
		report.Results = append(report.Results, caseResult)
	}

	return report, nil
}

// EncodeInput serializes a test case input into the single JSON line fed to
// the program on stdin. Named-parameter objects become positional arrays
// ordered by lexicographic parameter name, so every language sees the same
// canonical form.
func EncodeInput(input any) (string, error) {
	switch v := input.(type) {
	case nil:
		return "", nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		args := make([]any, 0, len(keys))
		for _, key := range keys {
			args = append(args, v[key])
		}
		return encodeJSONLine(args)
	default:
		return encodeJSONLine(input)
	}
}

func encodeJSONLine(value any) (string, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(payload) + "\n", nil
}
