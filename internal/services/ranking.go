package services

import (
	"sort"

	"github.com/prepstack/exam-service/internal/models"
)

// RankedResult pairs a result with its 1-based position in the test's total
// order and the cohort size.
type RankedResult struct {
	Result        *models.Result
	Rank          int
	TotalStudents int
}

// RankResults produces a total order over one test's results: score
// descending, then submission time ascending (earlier submission wins the
// tie), then student ID ascending. The final key makes the order total, so
// repeated calls over the same snapshot can never flap even when both score
// and timestamp tie. Ranks are sequential; ties do not share a rank.
func RankResults(results []*models.Result) []RankedResult {
	sorted := make([]*models.Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return lessRanked(sorted[i], sorted[j])
	})

	ranked := make([]RankedResult, len(sorted))
	for i, result := range sorted {
		ranked[i] = RankedResult{
			Result:        result,
			Rank:          i + 1,
			TotalStudents: len(sorted),
		}
	}
	return ranked
}

// RankOf returns the student's rank and the cohort size for one test.
// A student with no result gets ErrResultNotFound: "no result" is a distinct
// state from "ranked last".
func RankOf(results []*models.Result, studentID uint) (rank, totalStudents int, err error) {
	for _, ranked := range RankResults(results) {
		if ranked.Result.StudentID == studentID {
			return ranked.Rank, ranked.TotalStudents, nil
		}
	}
	return 0, len(results), ErrResultNotFound
}

func lessRanked(a, b *models.Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.StudentID < b.StudentID
}
