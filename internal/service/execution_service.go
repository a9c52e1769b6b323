package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/praxis-lms/praxis-go-api/internal/dto"
	"github.com/praxis-lms/praxis-go-api/internal/execution"
	"github.com/praxis-lms/praxis-go-api/internal/grading"
)

// ExecutionService exposes ad-hoc code execution without persistence: a
// scratchpad run and a grade-against-supplied-cases operation.
type ExecutionService interface {
	Execute(ctx context.Context, payload dto.ExecuteRequest) (dto.ExecuteResponse, error)
	TestCode(ctx context.Context, payload dto.TestCodeRequest) (dto.TestCodeResponse, error)
}

type executionService struct {
	runner    *execution.Runner
	cases     *grading.Runner
	limiter   *SessionLimiter
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewExecutionService constructs the execution service.
func NewExecutionService(runner *execution.Runner, cases *grading.Runner, limiter *SessionLimiter, validate *validator.Validate, logger zerolog.Logger) ExecutionService {
	return &executionService{
		runner:    runner,
		cases:     cases,
		limiter:   limiter,
		validator: validate,
		logger:    logger.With().Str("component", "execution_service").Logger(),
	}
}

func (s *executionService) Execute(ctx context.Context, payload dto.ExecuteRequest) (dto.ExecuteResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExecuteResponse{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return dto.ExecuteResponse{}, err
	}
	defer s.limiter.Release()

	result, err := s.runner.Execute(ctx, payload.Source, payload.Language, payload.Stdin)
	if err != nil {
		return dto.ExecuteResponse{}, err
	}

	return dto.ExecuteResponse{Output: result.Output, Error: result.Error}, nil
}

func (s *executionService) TestCode(ctx context.Context, payload dto.TestCodeRequest) (dto.TestCodeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestCodeResponse{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return dto.TestCodeResponse{}, err
	}
	defer s.limiter.Release()

	cases := make([]grading.Case, 0, len(payload.TestCases))
	for _, testCase := range payload.TestCases {
		cases = append(cases, grading.Case{
			Input:       testCase.Input,
			Expected:    testCase.ExpectedOutput,
			Explanation: testCase.Explanation,
		})
	}

	report, err := s.cases.RunCases(ctx, payload.Source, payload.Language, cases)
	if err != nil {
		return dto.TestCodeResponse{}, err
	}

	return dto.NewTestCodeResponse(report), nil
}
