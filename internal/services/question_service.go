package services

import (
	"context"
	"fmt"

	"github.com/prepstack/exam-service/internal/models"
	"github.com/prepstack/exam-service/internal/repositories"
	"github.com/prepstack/exam-service/internal/utils"
	"github.com/prepstack/exam-service/internal/validator"
	"gorm.io/datatypes"
)

// questionService covers the authoring surface grading depends on: creating
// questions and reading them back by UID. Editing lives elsewhere; graded
// results keep their own copy of the correct answer either way.
type questionService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger utils.Logger, v *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID uint) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question := &models.Question{
		UID:           req.UID,
		Prompt:        datatypes.NewJSONType(req.Prompt),
		Explanation:   datatypes.NewJSONType(req.Explanation),
		Options:       datatypes.NewJSONSlice(req.Options),
		CorrectAnswer: req.CorrectAnswer,
		IsActive:      true,
		CreatedBy:     creatorID,
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: uid %s already exists", ErrConflict, req.UID)
		}
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "uid", question.UID, "creator_id", creatorID)
	return question, nil
}

func (s *questionService) GetByUID(ctx context.Context, uid string) (*models.Question, error) {
	question, err := s.repo.Question().GetByUID(ctx, uid)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}
