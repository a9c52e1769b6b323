package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/praxis-lms/praxis-go-api/internal/dto"
	"github.com/praxis-lms/praxis-go-api/internal/models"
	"github.com/praxis-lms/praxis-go-api/internal/repository"
)

// ErrInvalidQuestion indicates a question payload failed schema validation.
var ErrInvalidQuestion = errors.New("invalid question payload")

// Question payloads are structurally heterogeneous, so each variant is
// pinned down by a schema instead of being accepted as an open dictionary.
const questionSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["kind"],
  "oneOf": [
    {
      "properties": {
        "kind": {"const": "coding"},
        "problem_id": {"type": "integer", "minimum": 1},
        "points": {"type": "integer", "minimum": 0}
      },
      "required": ["kind", "problem_id"]
    },
    {
      "properties": {
        "kind": {"const": "mcq"},
        "text": {"type": "string", "minLength": 1},
        "options": {"type": "array", "items": {"type": "string"}, "minItems": 2},
        "correct_option": {"type": "integer", "minimum": 0}
      },
      "required": ["kind", "text", "options", "correct_option"]
    }
  ]
}`

// CatalogService ingests problem and test definitions on behalf of the
// surrounding CRUD layer and serves the read paths the grading core needs.
type CatalogService interface {
	CreateProblem(ctx context.Context, payload dto.ProblemCreateRequest) (dto.ProblemResponse, error)
	GetProblem(ctx context.Context, id uint) (dto.ProblemResponse, error)
	ListProblems(ctx context.Context, query repository.ProblemQuery) ([]dto.ProblemResponse, int64, error)
	CreateTest(ctx context.Context, payload dto.TestCreateRequest) (dto.TestResponse, error)
	GetTest(ctx context.Context, id uint) (dto.TestResponse, error)
}

type catalogService struct {
	problems  repository.ProblemRepository
	tests     repository.TestRepository
	schema    *jsonschema.Schema
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(problems repository.ProblemRepository, tests repository.TestRepository, validate *validator.Validate, logger zerolog.Logger) (CatalogService, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("question.json", strings.NewReader(questionSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add question schema: %w", err)
	}
	schema, err := compiler.Compile("question.json")
	if err != nil {
		return nil, fmt.Errorf("compile question schema: %w", err)
	}

	return &catalogService{
		problems:  problems,
		tests:     tests,
		schema:    schema,
		sanitizer: bluemonday.StrictPolicy(),
		validator: validate,
		logger:    logger.With().Str("component", "catalog_service").Logger(),
	}, nil
}

func (s *catalogService) CreateProblem(ctx context.Context, payload dto.ProblemCreateRequest) (dto.ProblemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProblemResponse{}, err
	}

	problem := models.Problem{
		Title:      s.sanitizer.Sanitize(payload.Title),
		Statement:  s.sanitizer.Sanitize(payload.Statement),
		Difficulty: payload.Difficulty,
		Points:     payload.Points,
		Tags:       strings.Join(payload.Tags, ","),
	}
	if problem.Points <= 0 {
		problem.Points = models.DefaultQuestionPoints
	}

	for index, testCase := range payload.TestCases {
		input, err := json.Marshal(testCase.Input)
		if err != nil {
			return dto.ProblemResponse{}, fmt.Errorf("encode input for case %d: %w", index, err)
		}
		expected, err := json.Marshal(testCase.ExpectedOutput)
		if err != nil {
			return dto.ProblemResponse{}, fmt.Errorf("encode expected output for case %d: %w", index, err)
		}
		problem.TestCases = append(problem.TestCases, models.ProblemCase{
			Position:    index,
			Input:       datatypes.JSON(input),
			Expected:    datatypes.JSON(expected),
			Explanation: s.sanitizer.Sanitize(testCase.Explanation),
		})
	}

	if err := s.problems.Create(ctx, &problem); err != nil {
		return dto.ProblemResponse{}, err
	}

	return dto.NewProblemResponse(problem), nil
}

func (s *catalogService) GetProblem(ctx context.Context, id uint) (dto.ProblemResponse, error) {
	problem, err := s.problems.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrProblemNotFound
		}
		return dto.ProblemResponse{}, err
	}
	return dto.NewProblemResponse(problem), nil
}

func (s *catalogService) ListProblems(ctx context.Context, query repository.ProblemQuery) ([]dto.ProblemResponse, int64, error) {
	problems, total, err := s.problems.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.ProblemResponse, 0, len(problems))
	for _, problem := range problems {
		responses = append(responses, dto.NewProblemResponse(problem))
	}
	return responses, total, nil
}

func (s *catalogService) CreateTest(ctx context.Context, payload dto.TestCreateRequest) (dto.TestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestResponse{}, err
	}

	test := models.Test{
		Title:       s.sanitizer.Sanitize(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		Kind:        payload.Kind,
	}

	for index, question := range payload.Questions {
		if err := s.validateQuestion(question, payload.Kind); err != nil {
			return dto.TestResponse{}, fmt.Errorf("question %d: %w", index, err)
		}

		row := models.Question{
			Position: index,
			Kind:     question.Kind,
			Points:   question.Points,
		}
		if row.Points <= 0 {
			row.Points = models.DefaultQuestionPoints
		}

		switch question.Kind {
		case models.QuestionKindCoding:
			row.ProblemID = question.ProblemID
		case models.QuestionKindMCQ:
			row.Text = s.sanitizer.Sanitize(question.Text)
			options := make([]string, 0, len(question.Options))
			for _, option := range question.Options {
				options = append(options, s.sanitizer.Sanitize(option))
			}
			encoded, err := json.Marshal(options)
			if err != nil {
				return dto.TestResponse{}, fmt.Errorf("question %d: encode options: %w", index, err)
			}
			row.Options = datatypes.JSON(encoded)
			row.CorrectOption = *question.CorrectOption
		}

		test.Questions = append(test.Questions, row)
	}

	if err := s.tests.Create(ctx, &test); err != nil {
		return dto.TestResponse{}, err
	}

	return dto.NewTestResponse(test), nil
}

func (s *catalogService) GetTest(ctx context.Context, id uint) (dto.TestResponse, error) {
	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrTestNotFound
		}
		return dto.TestResponse{}, err
	}
	return dto.NewTestResponse(test), nil
}

// validateQuestion checks the tagged payload against its schema and the
// invariants the schema cannot express.
func (s *catalogService) validateQuestion(question dto.QuestionPayload, testKind string) error {
	if question.Kind != testKind {
		return fmt.Errorf("%w: kind %q does not match test kind %q", ErrInvalidQuestion, question.Kind, testKind)
	}

	encoded, err := json.Marshal(question)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}

	var value any
	if err := json.Unmarshal(encoded, &value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}

	if err := s.schema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}

	if question.Kind == models.QuestionKindMCQ && *question.CorrectOption >= len(question.Options) {
		return fmt.Errorf("%w: correct_option out of range", ErrInvalidQuestion)
	}

	return nil
}
