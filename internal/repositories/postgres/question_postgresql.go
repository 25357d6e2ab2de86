package postgres

import (
	"context"

	"github.com/prepstack/exam-service/internal/models"
	"github.com/prepstack/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) *QuestionPostgreSQL {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return translateError(q.db.WithContext(ctx).Create(question).Error)
}

func (q *QuestionPostgreSQL) GetByUID(ctx context.Context, uid string) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).Where("uid = ?", uid).First(&question).Error; err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetActiveByUIDs(ctx context.Context, uids []string) (map[string]*models.Question, error) {
	if len(uids) == 0 {
		return map[string]*models.Question{}, nil
	}

	var questions []*models.Question
	if err := q.db.WithContext(ctx).
		Where("uid IN ? AND is_active = ?", uids, true).
		Find(&questions).Error; err != nil {
		return nil, translateError(err)
	}

	byUID := make(map[string]*models.Question, len(questions))
	for _, question := range questions {
		byUID[question.UID] = question
	}
	return byUID, nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var questions []*models.Question
	var total int64

	query := q.db.WithContext(ctx).Model(&models.Question{})
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, translateError(err)
	}

	return questions, total, nil
}
