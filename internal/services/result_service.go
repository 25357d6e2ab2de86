package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prepstack/exam-service/internal/cache"
	"github.com/prepstack/exam-service/internal/events"
	"github.com/prepstack/exam-service/internal/models"
	"github.com/prepstack/exam-service/internal/repositories"
	"github.com/prepstack/exam-service/internal/utils"
	"github.com/prepstack/exam-service/internal/validator"
)

type resultService struct {
	repo           repositories.Repository
	cache          cache.CacheService
	publisher      events.EventPublisher
	clock          Clock
	logger         utils.Logger
	validator      *validator.Validator
	leaderboardTTL time.Duration
}

func NewResultService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	clock Clock,
	logger utils.Logger,
	v *validator.Validator,
	leaderboardTTL time.Duration,
) ResultService {
	return &resultService{
		repo:           repo,
		cache:          cacheService,
		publisher:      publisher,
		clock:          clock,
		logger:         logger,
		validator:      v,
		leaderboardTTL: leaderboardTTL,
	}
}

// ===== SUBMISSION =====

// SubmitTest runs the full submission path: authorize, grade, persist,
// strictly in that order. Persistence is one atomic insert; the unique index
// on (test_id, student_id) settles any duplicate race the guard's existence
// check lets through.
func (s *resultService) SubmitTest(ctx context.Context, req *SubmitTestRequest) (*SubmitTestResponse, error) {
	s.logger.Info("Submitting test",
		"test_id", req.TestID,
		"student_id", req.StudentID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	test, err := s.authorizeSubmission(ctx, req.TestID, req.StudentID, now)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetActiveByUIDs(ctx, test.QuestionUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load question snapshot: %w", err)
	}

	result, err := GradeTest(test, questions, req.Answers, req.TimeTakenSeconds, now)
	if err != nil {
		if errors.Is(err, ErrIncompleteQuestionSet) {
			// Data corruption between the test definition and the question
			// store, not a user mistake.
			s.logger.Error("Question snapshot incomplete for test",
				"test_id", test.ID,
				"error", err)
		}
		return nil, err
	}
	result.StudentID = req.StudentID

	if err := s.repo.Result().InsertIfAbsent(ctx, result); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			// Lost a concurrent duplicate-submission race; the stored row wins.
			return nil, s.duplicateError(ctx, req.TestID, req.StudentID)
		}
		return nil, fmt.Errorf("failed to persist result: %w", err)
	}

	s.invalidateLeaderboard(ctx, req.TestID)
	s.publishResultSubmitted(result)

	s.logger.Info("Test submitted successfully",
		"test_id", req.TestID,
		"student_id", req.StudentID,
		"result_id", result.ID,
		"score", result.Score)

	return &SubmitTestResponse{
		ResultID:    result.ID,
		TestID:      result.TestID,
		Score:       result.Score,
		TotalMarks:  result.TotalMarks,
		Percentage:  result.Percentage,
		SubmittedAt: result.SubmittedAt,
		Summary:     result.Summary.Data(),
	}, nil
}

// authorizeSubmission checks, in order: test exists, window has opened,
// window has not closed, no prior result. Both window boundaries are
// inclusive. The prior-result check is advisory; the insert's uniqueness
// constraint is the final authority.
func (s *resultService) authorizeSubmission(ctx context.Context, testID, studentID uint, now time.Time) (*models.Test, error) {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if now.Before(test.StartTime) {
		return nil, &SubmissionWindowError{Now: now, StartTime: test.StartTime, EndTime: test.EndTime, Err: ErrTestNotStarted}
	}
	if now.After(test.EndTime) {
		return nil, &SubmissionWindowError{Now: now, StartTime: test.StartTime, EndTime: test.EndTime, Err: ErrTestEnded}
	}

	if _, err := s.repo.Result().GetByTestAndStudent(ctx, testID, studentID); err == nil {
		return nil, s.duplicateError(ctx, testID, studentID)
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing result: %w", err)
	}

	return test, nil
}

func (s *resultService) duplicateError(ctx context.Context, testID, studentID uint) error {
	dup := &DuplicateSubmissionError{TestID: testID, StudentID: studentID}
	if existing, err := s.repo.Result().GetByTestAndStudent(ctx, testID, studentID); err == nil {
		dup.SubmittedAt = existing.SubmittedAt
	}
	return dup
}

// ===== READS =====

func (s *resultService) GetTestResultWithRank(ctx context.Context, testID, studentID uint) (*ResultWithRank, error) {
	result, err := s.repo.Result().GetByTestAndStudent(ctx, testID, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	all, err := s.repo.Result().ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}

	rank, total, err := RankOf(all, studentID)
	if err != nil {
		return nil, err
	}

	return &ResultWithRank{
		Result:        result,
		Rank:          rank,
		TotalStudents: total,
	}, nil
}

// GetTestLeaderboard returns the test's ranked results, served from a
// short-TTL cache. The snapshot may trail a submission that lands
// microseconds later; ranks are advisory, so that is accepted.
func (s *resultService) GetTestLeaderboard(ctx context.Context, testID uint) (*Leaderboard, error) {
	key := leaderboardKey(testID)

	var cached Leaderboard
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	if _, err := s.repo.Test().GetByID(ctx, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	results, err := s.repo.Result().ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}

	board := &Leaderboard{
		TestID:        testID,
		TotalStudents: len(results),
		Entries:       make([]LeaderboardEntry, 0, len(results)),
	}
	for _, ranked := range RankResults(results) {
		board.Entries = append(board.Entries, LeaderboardEntry{
			Rank:        ranked.Rank,
			StudentID:   ranked.Result.StudentID,
			StudentName: ranked.Result.Student.FullName,
			Score:       ranked.Result.Score,
			Percentage:  ranked.Result.Percentage,
			SubmittedAt: ranked.Result.SubmittedAt,
		})
	}

	if err := s.cache.Set(ctx, key, board, s.leaderboardTTL); err != nil {
		s.logger.Warn("Failed to cache leaderboard", "test_id", testID, "error", err)
	}

	return board, nil
}

// GetStudentResults returns every result the student has, each annotated with
// the student's rank within that test's cohort.
func (s *resultService) GetStudentResults(ctx context.Context, studentID uint) ([]*ResultWithRank, error) {
	results, err := s.repo.Result().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student results: %w", err)
	}

	annotated := make([]*ResultWithRank, 0, len(results))
	for _, result := range results {
		cohort, err := s.repo.Result().ListByTest(ctx, result.TestID)
		if err != nil {
			return nil, fmt.Errorf("failed to list results for test %d: %w", result.TestID, err)
		}
		rank, total, err := RankOf(cohort, studentID)
		if err != nil {
			return nil, err
		}
		annotated = append(annotated, &ResultWithRank{
			Result:        result,
			TestTitle:     result.Test.Title,
			Rank:          rank,
			TotalStudents: total,
		})
	}

	return annotated, nil
}

// ===== HELPERS =====

func (s *resultService) invalidateLeaderboard(ctx context.Context, testID uint) {
	if err := s.cache.Delete(ctx, leaderboardKey(testID)); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "test_id", testID, "error", err)
	}
}

func (s *resultService) publishResultSubmitted(result *models.Result) {
	event := events.NewResultEvent(events.EventResultSubmitted, &events.ResultSubmittedEvent{
		ResultID:    result.ID,
		TestID:      result.TestID,
		StudentID:   result.StudentID,
		Score:       result.Score,
		TotalMarks:  result.TotalMarks,
		Percentage:  result.Percentage,
		SubmittedAt: result.SubmittedAt,
	})

	// Publish outside the request path; a broker outage must not fail a
	// graded, persisted submission.
	go func() {
		if err := s.publisher.PublishResultEvent(context.Background(), event); err != nil {
			s.logger.Error("Failed to publish result submitted event",
				"result_id", result.ID,
				"error", err)
		}
	}()
}

func leaderboardKey(testID uint) string {
	return fmt.Sprintf("leaderboard:test:%d", testID)
}
