package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/praxis-lms/praxis-go-api/internal/models"
)

// TestRepository exposes persistence helpers for tests and their questions.
type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (models.Test, error)
}

// NewTestRepository constructs a gorm backed test repository.
func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

type testRepository struct {
	db *gorm.DB
}

func (r *testRepository) Create(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *testRepository) GetByID(ctx context.Context, id uint) (models.Test, error) {
	var test models.Test
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&test, id).Error
	if err != nil {
		return models.Test{}, err
	}
	return test, nil
}
