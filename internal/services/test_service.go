package services

import (
	"context"
	"fmt"

	"github.com/prepstack/exam-service/internal/cache"
	"github.com/prepstack/exam-service/internal/events"
	"github.com/prepstack/exam-service/internal/models"
	"github.com/prepstack/exam-service/internal/repositories"
	"github.com/prepstack/exam-service/internal/utils"
	"github.com/prepstack/exam-service/internal/validator"
	"gorm.io/datatypes"
)

type testService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	clock     Clock
	logger    utils.Logger
	validator *validator.Validator
}

func NewTestService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	clock Clock,
	logger utils.Logger,
	v *validator.Validator,
) TestService {
	return &testService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		validator: v,
	}
}

func (s *testService) Create(ctx context.Context, req *CreateTestRequest, creatorID uint) (*models.Test, error) {
	s.logger.Info("Creating test", "title", req.Title, "creator_id", creatorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeWindow
	}

	if err := s.verifyQuestionUIDs(ctx, req.QuestionUIDs); err != nil {
		return nil, err
	}

	test := &models.Test{
		Title:            req.Title,
		Description:      req.Description,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Duration:         req.Duration,
		MarksPerQuestion: req.MarksPerQuestion,
		NegativeMarks:    req.NegativeMarks,
		QuestionUIDs:     datatypes.NewJSONSlice(req.QuestionUIDs),
		VideoLink:        req.VideoLink,
		IntroPage:        req.IntroPage,
		IsActive:         true,
		CreatedBy:        creatorID,
	}
	if test.MarksPerQuestion == 0 {
		test.MarksPerQuestion = 1
	}

	if err := s.repo.Test().Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	s.logger.Info("Test created", "test_id", test.ID, "questions", test.QuestionCount())
	return test, nil
}

func (s *testService) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	test, err := s.repo.Test().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, nil
}

// Update applies a partial update. When only one of start/end time is
// supplied, the window is validated against the stored value of the other
// field; a request that would invalidate the window is rejected and the test
// stays unchanged.
func (s *testService) Update(ctx context.Context, id uint, req *UpdateTestRequest) (*models.Test, error) {
	s.logger.Info("Updating test", "test_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	test, err := s.repo.Test().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	startTime := test.StartTime
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	endTime := test.EndTime
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	if !endTime.After(startTime) {
		return nil, ErrInvalidTimeWindow
	}

	if req.QuestionUIDs != nil {
		if err := s.verifyQuestionUIDs(ctx, req.QuestionUIDs); err != nil {
			return nil, err
		}
		test.QuestionUIDs = datatypes.NewJSONSlice(req.QuestionUIDs)
	}

	test.StartTime = startTime
	test.EndTime = endTime
	if req.Title != nil {
		test.Title = *req.Title
	}
	if req.Description != nil {
		test.Description = req.Description
	}
	if req.Duration != nil {
		test.Duration = *req.Duration
	}
	if req.MarksPerQuestion != nil {
		test.MarksPerQuestion = *req.MarksPerQuestion
	}
	if req.NegativeMarks != nil {
		test.NegativeMarks = *req.NegativeMarks
	}
	if req.VideoLink != nil {
		test.VideoLink = *req.VideoLink
	}
	if req.IntroPage != nil {
		test.IntroPage = *req.IntroPage
	}
	if req.IsActive != nil {
		test.IsActive = *req.IsActive
	}

	if err := s.repo.Test().Update(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}

	s.logger.Info("Test updated", "test_id", test.ID)
	return test, nil
}

// Delete hard-deletes the test and cascades to all of its results.
func (s *testService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting test", "test_id", id)

	if err := s.repo.Test().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to delete test: %w", err)
	}

	if err := s.cache.Delete(ctx, leaderboardKey(id)); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "test_id", id, "error", err)
	}

	event := events.NewResultEvent(events.EventTestDeleted, &events.TestDeletedEvent{
		TestID:         id,
		ResultsDeleted: true,
	})
	go func() {
		if err := s.publisher.PublishResultEvent(context.Background(), event); err != nil {
			s.logger.Error("Failed to publish test deleted event", "test_id", id, "error", err)
		}
	}()

	s.logger.Info("Test deleted", "test_id", id)
	return nil
}

func (s *testService) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	tests, total, err := s.repo.Test().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tests: %w", err)
	}
	return tests, total, nil
}

func (s *testService) ListAvailable(ctx context.Context) ([]*models.Test, error) {
	tests, err := s.repo.Test().ListAvailable(ctx, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list available tests: %w", err)
	}
	return tests, nil
}

// verifyQuestionUIDs requires every referenced UID to resolve to an active
// question; a gap means the test would be ungradable.
func (s *testService) verifyQuestionUIDs(ctx context.Context, uids []string) error {
	found, err := s.repo.Question().GetActiveByUIDs(ctx, uids)
	if err != nil {
		return fmt.Errorf("failed to verify question uids: %w", err)
	}

	var missing []string
	for _, uid := range uids {
		if _, ok := found[uid]; !ok {
			missing = append(missing, uid)
		}
	}
	if len(missing) > 0 {
		return &UnknownQuestionsError{MissingUIDs: missing}
	}
	return nil
}
