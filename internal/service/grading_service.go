package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/praxis-lms/praxis-go-api/internal/dto"
	"github.com/praxis-lms/praxis-go-api/internal/grading"
	"github.com/praxis-lms/praxis-go-api/internal/languages"
	"github.com/praxis-lms/praxis-go-api/internal/models"
	"github.com/praxis-lms/praxis-go-api/internal/repository"
	"github.com/praxis-lms/praxis-go-api/pkg/ai"
	"github.com/praxis-lms/praxis-go-api/pkg/events"
)

// GradingService grades submissions and records their lifecycle. Every
// submission ends completed (graded, whatever the verdict) or failed
// (the pipeline itself broke); a student failing every test case still
// gets a completed submission with score zero.
type GradingService interface {
	SubmitProblem(ctx context.Context, userID, problemID uint, payload dto.ProblemSubmissionRequest) (dto.ProblemSubmissionResponse, error)
	SubmitCodingTest(ctx context.Context, userID, testID uint, payload dto.CodingTestSubmissionRequest) (dto.CodingTestSubmissionResponse, error)
	SubmitMCQTest(ctx context.Context, userID, testID uint, payload dto.MCQTestSubmissionRequest) (dto.MCQTestSubmissionResponse, error)
}

// GradingConfig describes grading pipeline knobs.
type GradingConfig struct {
	ProblemCacheTTL time.Duration
}

type gradingService struct {
	submissions repository.SubmissionRepository
	problems    repository.ProblemRepository
	tests       repository.TestRepository
	cases       *grading.Runner
	advisor     ai.Advisor
	publisher   events.Publisher
	cache       *redis.Client
	limiter     *SessionLimiter
	validator   *validator.Validate
	logger      zerolog.Logger
	cfg         GradingConfig
}

// NewGradingService constructs the grading service. Advisor, publisher and
// cache are optional; a nil value disables the corresponding concern.
func NewGradingService(
	submissions repository.SubmissionRepository,
	problems repository.ProblemRepository,
	tests repository.TestRepository,
	cases *grading.Runner,
	advisor ai.Advisor,
	publisher events.Publisher,
	cache *redis.Client,
	limiter *SessionLimiter,
	validate *validator.Validate,
	logger zerolog.Logger,
	cfg GradingConfig,
) GradingService {
	if cfg.ProblemCacheTTL <= 0 {
		cfg.ProblemCacheTTL = 5 * time.Minute
	}

	return &gradingService{
		submissions: submissions,
		problems:    problems,
		tests:       tests,
		cases:       cases,
		advisor:     advisor,
		publisher:   publisher,
		cache:       cache,
		limiter:     limiter,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		cfg:         cfg,
	}
}

func (s *gradingService) SubmitProblem(ctx context.Context, userID, problemID uint, payload dto.ProblemSubmissionRequest) (dto.ProblemSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProblemSubmissionResponse{}, err
	}
	if !languages.Supported(payload.Language) {
		return dto.ProblemSubmissionResponse{}, languages.ErrUnsupportedLanguage
	}

	problem, err := s.problem(ctx, problemID)
	if err != nil {
		return dto.ProblemSubmissionResponse{}, err
	}

	cases, err := problemCases(problem)
	if err != nil {
		return dto.ProblemSubmissionResponse{}, fmt.Errorf("%w: %v", ErrGradingFault, err)
	}
	if len(cases) == 0 {
		return dto.ProblemSubmissionResponse{}, grading.ErrNoTestCases
	}

	submission := models.Submission{
		UserID:    userID,
		ProblemID: &problemID,
		Language:  payload.Language,
		Source:    payload.Source,
		Status:    models.SubmissionStatusPending,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.ProblemSubmissionResponse{}, fmt.Errorf("%w: %v", ErrGradingFault, err)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return dto.ProblemSubmissionResponse{}, s.markFailed(ctx, submission.ID, err)
	}
	report, err := s.cases.RunCases(ctx, payload.Source, payload.Language, cases)
	s.limiter.Release()
	if err != nil {
		return dto.ProblemSubmissionResponse{}, s.markFailed(ctx, submission.ID, err)
	}

	points := problem.Points
	if points <= 0 {
		points = models.DefaultQuestionPoints
	}
	verdict := grading.NewVerdict(points, report)

	results, err := json.Marshal(verdict)
	if err != nil {
		return dto.ProblemSubmissionResponse{}, s.markFailed(ctx, submission.ID, err)
	}
	if err := s.submissions.UpdateResult(ctx, submission.ID, models.SubmissionStatusCompleted, results, ""); err != nil {
		return dto.ProblemSubmissionResponse{}, s.markFailed(ctx, submission.ID, err)
	}

	response := dto.ProblemSubmissionResponse{
		SubmissionID: submission.ID,
		Status:       models.SubmissionStatusCompleted,
		Passed:       verdict.Passed,
		Score:        verdict.Score,
		MaxScore:     verdict.MaxScore,
		Results:      dto.NewCaseResultResponses(verdict.Results),
	}

	if s.advisor != nil {
		advisory, err := s.advisor.Analyze(ctx, ai.AdvisoryInput{
			Language:         payload.Language,
			Source:           payload.Source,
			ProblemStatement: problem.Statement,
		})
		if err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("advisory analysis unavailable")
		} else {
			response.Advisory = dto.NewAdvisoryResponse(advisory)
		}
	}

	s.publishGraded(ctx, submission, models.SubmissionStatusCompleted, verdict.Score, verdict.MaxScore)
	return response, nil
}

func (s *gradingService) SubmitCodingTest(ctx context.Context, userID, testID uint, payload dto.CodingTestSubmissionRequest) (dto.CodingTestSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CodingTestSubmissionResponse{}, err
	}

	test, err := s.test(ctx, testID)
	if err != nil {
		return dto.CodingTestSubmissionResponse{}, err
	}
	if test.Kind != models.QuestionKindCoding {
		return dto.CodingTestSubmissionResponse{}, ErrTestKindMismatch
	}

	submission := models.Submission{
		UserID: userID,
		TestID: &testID,
		Status: models.SubmissionStatusPending,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.CodingTestSubmissionResponse{}, fmt.Errorf("%w: %v", ErrGradingFault, err)
	}

	maxScore := 0
	questionByProblem := map[uint]models.Question{}
	for _, question := range test.Questions {
		if question.Kind != models.QuestionKindCoding || question.ProblemID == nil {
			continue
		}
		questionByProblem[*question.ProblemID] = question
		maxScore += questionPoints(question)
	}

	score := 0
	results := make([]dto.QuestionResultResponse, 0, len(payload.Submissions))

	// Every entry is graded independently; a broken entry contributes a
	// zero-score sub-result instead of aborting the whole test.
	for _, entry := range payload.Submissions {
		question, ok := questionByProblem[entry.ProblemID]
		if !ok {
			results = append(results, dto.QuestionResultResponse{
				ProblemID: entry.ProblemID,
				Error:     "problem not found in test",
			})
			continue
		}

		verdict, gradeErr := s.gradeEntry(ctx, entry, questionPoints(question))
		if gradeErr != nil {
			results = append(results, dto.QuestionResultResponse{
				ProblemID: entry.ProblemID,
				MaxScore:  questionPoints(question),
				Error:     gradeErr.Error(),
			})
			continue
		}

		score += verdict.Score
		results = append(results, dto.NewQuestionResultResponse(entry.ProblemID, verdict))
	}

	payloadJSON, err := json.Marshal(map[string]any{
		"score":     score,
		"max_score": maxScore,
		"results":   results,
	})
	if err != nil {
		return dto.CodingTestSubmissionResponse{}, s.markFailed(ctx, submission.ID, err)
	}
	if err := s.submissions.UpdateResult(ctx, submission.ID, models.SubmissionStatusCompleted, payloadJSON, ""); err != nil {
		return dto.CodingTestSubmissionResponse{}, s.markFailed(ctx, submission.ID, err)
	}

	s.publishGraded(ctx, submission, models.SubmissionStatusCompleted, score, maxScore)

	return dto.CodingTestSubmissionResponse{
		SubmissionID: submission.ID,
		Status:       models.SubmissionStatusCompleted,
		Score:        score,
		MaxScore:     maxScore,
		Results:      results,
	}, nil
}

func (s *gradingService) SubmitMCQTest(ctx context.Context, userID, testID uint, payload dto.MCQTestSubmissionRequest) (dto.MCQTestSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MCQTestSubmissionResponse{}, err
	}

	test, err := s.test(ctx, testID)
	if err != nil {
		return dto.MCQTestSubmissionResponse{}, err
	}
	if test.Kind != models.QuestionKindMCQ {
		return dto.MCQTestSubmissionResponse{}, ErrTestKindMismatch
	}

	submission := models.Submission{
		UserID: userID,
		TestID: &testID,
		Status: models.SubmissionStatusPending,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.MCQTestSubmissionResponse{}, fmt.Errorf("%w: %v", ErrGradingFault, err)
	}

	questionByID := map[uint]models.Question{}
	maxScore := 0
	for _, question := range test.Questions {
		if question.Kind != models.QuestionKindMCQ {
			continue
		}
		questionByID[question.ID] = question
		maxScore += models.DefaultQuestionPoints
	}

	score := 0
	results := make([]dto.MCQResultResponse, 0, len(payload.Answers))

	for _, answer := range payload.Answers {
		question, ok := questionByID[answer.QuestionID]
		if !ok {
			results = append(results, dto.MCQResultResponse{
				QuestionID: answer.QuestionID,
				Error:      "question not found in test",
			})
			continue
		}

		result := dto.MCQResultResponse{QuestionID: answer.QuestionID}
		if answer.SelectedOption == question.CorrectOption {
			result.Correct = true
			result.EarnedScore = models.DefaultQuestionPoints
			score += models.DefaultQuestionPoints
		}
		results = append(results, result)
	}

	percentage := grading.Percentage(score, maxScore)

	payloadJSON, err := json.Marshal(map[string]any{
		"score":            score,
		"max_score":        maxScore,
		"percentage_score": percentage,
		"results":          results,
	})
	if err != nil {
		return dto.MCQTestSubmissionResponse{}, s.markFailed(ctx, submission.ID, err)
	}
	if err := s.submissions.UpdateResult(ctx, submission.ID, models.SubmissionStatusCompleted, payloadJSON, ""); err != nil {
		return dto.MCQTestSubmissionResponse{}, s.markFailed(ctx, submission.ID, err)
	}

	s.publishGraded(ctx, submission, models.SubmissionStatusCompleted, score, maxScore)

	return dto.MCQTestSubmissionResponse{
		SubmissionID:    submission.ID,
		Status:          models.SubmissionStatusCompleted,
		Score:           score,
		MaxScore:        maxScore,
		PercentageScore: percentage,
		Results:         results,
	}, nil
}

// gradeEntry runs one coding test entry through the sandbox and scores it.
func (s *gradingService) gradeEntry(ctx context.Context, entry dto.CodingTestEntry, points int) (grading.Verdict, error) {
	if !languages.Supported(entry.Language) {
		return grading.Verdict{}, languages.ErrUnsupportedLanguage
	}

	problem, err := s.problem(ctx, entry.ProblemID)
	if err != nil {
		return grading.Verdict{}, err
	}

	cases, err := problemCases(problem)
	if err != nil {
		return grading.Verdict{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return grading.Verdict{}, err
	}
	defer s.limiter.Release()

	report, err := s.cases.RunCases(ctx, entry.Source, entry.Language, cases)
	if err != nil {
		return grading.Verdict{}, err
	}

	return grading.NewVerdict(points, report), nil
}

// problem fetches a problem with its test cases through the read-through
// cache. Problems are read-only to the grading core, so a short TTL is safe.
func (s *gradingService) problem(ctx context.Context, id uint) (models.Problem, error) {
	cacheKey := fmt.Sprintf("problem:%d", id)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var problem models.Problem
			if unmarshalErr := json.Unmarshal([]byte(cached), &problem); unmarshalErr == nil {
				s.logger.Debug().Uint("problem_id", id).Msg("problem cache hit")
				return problem, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read problem cache")
		}
	}

	problem, err := s.problems.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Problem{}, ErrProblemNotFound
		}
		return models.Problem{}, fmt.Errorf("%w: %v", ErrGradingFault, err)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(problem); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cfg.ProblemCacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store problem cache")
			}
		}
	}

	return problem, nil
}

func (s *gradingService) test(ctx context.Context, id uint) (models.Test, error) {
	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Test{}, ErrTestNotFound
		}
		return models.Test{}, fmt.Errorf("%w: %v", ErrGradingFault, err)
	}
	return test, nil
}

// markFailed flips the submission to failed and wraps the cause as a
// grading fault. Used only for pipeline failures, never for failing code.
func (s *gradingService) markFailed(ctx context.Context, id uint, cause error) error {
	if err := s.submissions.UpdateResult(ctx, id, models.SubmissionStatusFailed, nil, cause.Error()); err != nil {
		s.logger.Error().Err(err).Uint("submission_id", id).Msg("failed to mark submission failed")
	}
	return fmt.Errorf("%w: %v", ErrGradingFault, cause)
}

func (s *gradingService) publishGraded(ctx context.Context, submission models.Submission, status string, score, maxScore int) {
	if s.publisher == nil {
		return
	}

	event := events.SubmissionGraded{
		SubmissionID: submission.ID,
		UserID:       submission.UserID,
		ProblemID:    submission.ProblemID,
		TestID:       submission.TestID,
		Status:       status,
		Score:        score,
		MaxScore:     maxScore,
		GradedAt:     time.Now(),
	}
	if err := s.publisher.PublishSubmissionGraded(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish graded event")
	}
}

func questionPoints(question models.Question) int {
	if question.Points > 0 {
		return question.Points
	}
	return models.DefaultQuestionPoints
}

func problemCases(problem models.Problem) ([]grading.Case, error) {
	cases := make([]grading.Case, 0, len(problem.TestCases))
	for _, testCase := range problem.TestCases {
		input, err := testCase.DecodedInput()
		if err != nil {
			return nil, fmt.Errorf("decode input for case %d: %v", testCase.ID, err)
		}
		expected, err := testCase.DecodedExpected()
		if err != nil {
			return nil, fmt.Errorf("decode expected output for case %d: %v", testCase.ID, err)
		}
		cases = append(cases, grading.Case{
			Input:       input,
			Expected:    expected,
			Explanation: testCase.Explanation,
		})
	}
	return cases, nil
}
