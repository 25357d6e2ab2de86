package services

import (
	"errors"
	"testing"
	"time"

	"github.com/prepstack/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankResult(studentID uint, score float64, submittedAt time.Time) *models.Result {
	return &models.Result{
		TestID:      1,
		StudentID:   studentID,
		Score:       score,
		SubmittedAt: submittedAt,
	}
}

func TestRankResults_ScoreThenSubmissionTime(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Two tied on score: the earlier submission ranks higher.
	results := []*models.Result{
		rankResult(10, 8, base.Add(2*time.Minute)),
		rankResult(20, 8, base.Add(1*time.Minute)),
		rankResult(30, 5, base.Add(3*time.Minute)),
	}

	ranked := RankResults(results)
	require.Len(t, ranked, 3)

	assert.Equal(t, uint(20), ranked[0].Result.StudentID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, uint(10), ranked[1].Result.StudentID)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, uint(30), ranked[2].Result.StudentID)
	assert.Equal(t, 3, ranked[2].Rank)

	for _, r := range ranked {
		assert.Equal(t, 3, r.TotalStudents)
	}
}

func TestRankResults_FullTieBreaksOnStudentID(t *testing.T) {
	submittedAt := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	results := []*models.Result{
		rankResult(42, 7, submittedAt),
		rankResult(7, 7, submittedAt),
	}

	ranked := RankResults(results)
	require.Len(t, ranked, 2)
	assert.Equal(t, uint(7), ranked[0].Result.StudentID)
	assert.Equal(t, uint(42), ranked[1].Result.StudentID)

	// Same snapshot in the opposite input order yields the same order.
	reversed := RankResults([]*models.Result{results[1], results[0]})
	assert.Equal(t, uint(7), reversed[0].Result.StudentID)
	assert.Equal(t, uint(42), reversed[1].Result.StudentID)
}

func TestRankResults_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	results := []*models.Result{
		rankResult(1, 2, base),
		rankResult(2, 9, base),
	}

	RankResults(results)
	assert.Equal(t, uint(1), results[0].StudentID)
	assert.Equal(t, uint(2), results[1].StudentID)
}

func TestRankOf(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	results := []*models.Result{
		rankResult(1, 4, base),
		rankResult(2, 9, base),
		rankResult(3, 6, base),
	}

	rank, total, err := RankOf(results, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)
	assert.Equal(t, 3, total)

	rank, total, err = RankOf(results, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, rank)
	assert.Equal(t, 3, total)
}

func TestRankOf_NoResultForStudent(t *testing.T) {
	results := []*models.Result{
		rankResult(1, 4, time.Now().UTC()),
	}

	_, _, err := RankOf(results, 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResultNotFound))
}

func TestRankOf_EmptyCohort(t *testing.T) {
	_, total, err := RankOf(nil, 1)
	require.Error(t, err)
	assert.Equal(t, 0, total)
}
