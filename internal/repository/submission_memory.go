package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/praxis-lms/praxis-go-api/internal/models"
)

// memorySubmissionRepository is an in-process SubmissionRepository. Ids come
// from an atomic counter, so concurrent creates never collide. It backs unit
// tests and deployments without a database, and doubles as the proof that
// the grading core does not depend on the persistence backend.
type memorySubmissionRepository struct {
	mu      sync.RWMutex
	lastID  atomic.Uint64
	records map[uint]models.Submission
}

// NewMemorySubmissionRepository constructs an in-memory submission repository.
func NewMemorySubmissionRepository() SubmissionRepository {
	return &memorySubmissionRepository{records: map[uint]models.Submission{}}
}

func (r *memorySubmissionRepository) Create(_ context.Context, submission *models.Submission) error {
	submission.ID = uint(r.lastID.Add(1))
	if submission.Status == "" {
		submission.Status = models.SubmissionStatusPending
	}
	now := time.Now()
	submission.CreatedAt = now
	submission.UpdatedAt = now

	r.mu.Lock()
	r.records[submission.ID] = *submission
	r.mu.Unlock()
	return nil
}

func (r *memorySubmissionRepository) GetByID(_ context.Context, id uint) (models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	submission, ok := r.records[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (r *memorySubmissionRepository) ListByUser(_ context.Context, userID uint) ([]models.Submission, error) {
	return r.filter(func(s models.Submission) bool { return s.UserID == userID }), nil
}

func (r *memorySubmissionRepository) ListByProblem(_ context.Context, problemID uint) ([]models.Submission, error) {
	return r.filter(func(s models.Submission) bool { return s.ProblemID != nil && *s.ProblemID == problemID }), nil
}

func (r *memorySubmissionRepository) ListByTest(_ context.Context, testID uint) ([]models.Submission, error) {
	return r.filter(func(s models.Submission) bool { return s.TestID != nil && *s.TestID == testID }), nil
}

func (r *memorySubmissionRepository) UpdateResult(_ context.Context, id uint, status string, results datatypes.JSON, errMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	submission, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	submission.Status = status
	submission.Error = errMessage
	if results != nil {
		submission.Results = results
	}
	submission.UpdatedAt = time.Now()
	r.records[id] = submission
	return nil
}

func (r *memorySubmissionRepository) filter(keep func(models.Submission) bool) []models.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.Submission
	for _, submission := range r.records {
		if keep(submission) {
			result = append(result, submission)
		}
	}

	// Newest first, matching the database ordering.
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}
