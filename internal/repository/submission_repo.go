package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/praxis-lms/praxis-go-api/internal/models"
)

// SubmissionRepository is the append-only log of grading attempts. Ids are
// unique under concurrent creation and records are never deleted.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Submission, error)
	ListByProblem(ctx context.Context, problemID uint) ([]models.Submission, error)
	ListByTest(ctx context.Context, testID uint) ([]models.Submission, error)
	UpdateResult(ctx context.Context, id uint, status string, results datatypes.JSON, errMessage string) error
}

// NewSubmissionRepository constructs a gorm backed submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.Status == "" {
		submission.Status = models.SubmissionStatusPending
	}
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Submission, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *submissionRepository) ListByProblem(ctx context.Context, problemID uint) ([]models.Submission, error) {
	return r.list(ctx, "problem_id = ?", problemID)
}

func (r *submissionRepository) ListByTest(ctx context.Context, testID uint) ([]models.Submission, error) {
	return r.list(ctx, "test_id = ?", testID)
}

func (r *submissionRepository) list(ctx context.Context, query string, arg any) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at DESC, id DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) UpdateResult(ctx context.Context, id uint, status string, results datatypes.JSON, errMessage string) error {
	updates := map[string]any{
		"status": status,
		"error":  errMessage,
	}
	if results != nil {
		updates["results"] = results
	}

	tx := r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
