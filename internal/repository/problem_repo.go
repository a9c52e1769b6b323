package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/praxis-lms/praxis-go-api/internal/models"
)

// ProblemQuery filters the problem listing.
type ProblemQuery struct {
	Difficulty string
	Search     string
	Page       int
	PageSize   int
}

// ProblemRepository exposes persistence helpers for coding problems.
type ProblemRepository interface {
	Create(ctx context.Context, problem *models.Problem) error
	List(ctx context.Context, query ProblemQuery) ([]models.Problem, int64, error)
	GetByID(ctx context.Context, id uint) (models.Problem, error)
}

// NewProblemRepository constructs a gorm backed problem repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

type problemRepository struct {
	db *gorm.DB
}

func (r *problemRepository) Create(ctx context.Context, problem *models.Problem) error {
	return r.db.WithContext(ctx).Create(problem).Error
}

func (r *problemRepository) List(ctx context.Context, query ProblemQuery) ([]models.Problem, int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.Problem{})

	if query.Difficulty != "" {
		tx = tx.Where("difficulty = ?", query.Difficulty)
	}
	if query.Search != "" {
		like := "%" + query.Search + "%"
		tx = tx.Where("title LIKE ? OR tags LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var problems []models.Problem
	err := tx.Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&problems).Error
	if err != nil {
		return nil, 0, err
	}
	return problems, total, nil
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	err := r.db.WithContext(ctx).
		Preload("TestCases", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&problem, id).Error
	if err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}
