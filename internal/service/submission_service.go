package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/praxis-lms/praxis-go-api/internal/dto"
	"github.com/praxis-lms/praxis-go-api/internal/repository"
)

// SubmissionService exposes the submission query surface: by id, by user,
// by problem and by test, always newest first.
type SubmissionService interface {
	Get(ctx context.Context, id uint, viewerID uint) (dto.SubmissionResponse, error)
	ListByUser(ctx context.Context, userID uint, viewerID uint) ([]dto.SubmissionResponse, error)
	ListByProblem(ctx context.Context, problemID uint) ([]dto.SubmissionResponse, error)
	ListByTest(ctx context.Context, testID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
}

// NewSubmissionService constructs the submission query service.
func NewSubmissionService(submissions repository.SubmissionRepository, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Get(ctx context.Context, id uint, viewerID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	includeSource := viewerID != 0 && viewerID == submission.UserID
	return dto.NewSubmissionResponse(submission, includeSource), nil
}

func (s *submissionService) ListByUser(ctx context.Context, userID uint, viewerID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(submissions, viewerID == userID), nil
}

func (s *submissionService) ListByProblem(ctx context.Context, problemID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(submissions, false), nil
}

func (s *submissionService) ListByTest(ctx context.Context, testID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(submissions, false), nil
}
