package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/praxis-lms/praxis-go-api/internal/models"
	"github.com/praxis-lms/praxis-go-api/internal/repository"
)

func seedSubmission(t *testing.T, repo repository.SubmissionRepository, userID uint, problemID uint) models.Submission {
	t.Helper()
	submission := models.Submission{
		UserID:    userID,
		ProblemID: &problemID,
		Language:  "python",
		Source:    "print('secret solution')",
		Status:    models.SubmissionStatusCompleted,
		Results:   datatypes.JSON([]byte(`{"score":10}`)),
	}
	require.NoError(t, repo.Create(context.Background(), &submission))
	return submission
}

func TestGetSubmissionIncludesSourceForOwner(t *testing.T) {
	repo := repository.NewMemorySubmissionRepository()
	service := NewSubmissionService(repo, zerolog.Nop())
	seeded := seedSubmission(t, repo, 7, 1)

	response, err := service.Get(context.Background(), seeded.ID, 7)
	require.NoError(t, err)
	require.Equal(t, seeded.Source, response.Source)
	require.NotNil(t, response.Results)
}

func TestGetSubmissionHidesSourceFromOthers(t *testing.T) {
	repo := repository.NewMemorySubmissionRepository()
	service := NewSubmissionService(repo, zerolog.Nop())
	seeded := seedSubmission(t, repo, 7, 1)

	response, err := service.Get(context.Background(), seeded.ID, 8)
	require.NoError(t, err)
	require.Empty(t, response.Source)
	require.Equal(t, seeded.UserID, response.UserID)
}

func TestGetSubmissionNotFound(t *testing.T) {
	service := NewSubmissionService(repository.NewMemorySubmissionRepository(), zerolog.Nop())

	_, err := service.Get(context.Background(), 999, 7)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestListByUserNewestFirst(t *testing.T) {
	repo := repository.NewMemorySubmissionRepository()
	service := NewSubmissionService(repo, zerolog.Nop())
	first := seedSubmission(t, repo, 7, 1)
	second := seedSubmission(t, repo, 7, 2)
	seedSubmission(t, repo, 8, 1)

	responses, err := service.ListByUser(context.Background(), 7, 7)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	require.Equal(t, second.ID, responses[0].ID)
	require.Equal(t, first.ID, responses[1].ID)
	require.NotEmpty(t, responses[0].Source, "owner listing includes source")
}

func TestListByProblemOmitsSource(t *testing.T) {
	repo := repository.NewMemorySubmissionRepository()
	service := NewSubmissionService(repo, zerolog.Nop())
	seedSubmission(t, repo, 7, 1)
	seedSubmission(t, repo, 8, 1)
	seedSubmission(t, repo, 9, 2)

	responses, err := service.ListByProblem(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	for _, response := range responses {
		require.Empty(t, response.Source)
	}
}
