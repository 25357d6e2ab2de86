package postgres

import (
	"context"
	"time"

	"github.com/prepstack/exam-service/internal/models"
	"github.com/prepstack/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) *TestPostgreSQL {
	return &TestPostgreSQL{db: db}
}

func (t *TestPostgreSQL) Create(ctx context.Context, test *models.Test) error {
	return translateError(t.db.WithContext(ctx).Create(test).Error)
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &test, nil
}

func (t *TestPostgreSQL) Update(ctx context.Context, test *models.Test) error {
	return translateError(t.db.WithContext(ctx).Save(test).Error)
}

// Delete removes the test and every result graded against it in one
// transaction. Hard delete: callers needing an audit trail snapshot first.
func (t *TestPostgreSQL) Delete(ctx context.Context, id uint) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("test_id = ?", id).Delete(&models.Result{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Delete(&models.Test{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translateError(err)
}

func (t *TestPostgreSQL) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	var tests []*models.Test
	var total int64

	query := t.db.WithContext(ctx).Model(&models.Test{})
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
	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, translateError(err)
	}

	return tests, total, nil
}

func (t *TestPostgreSQL) ListAvailable(ctx context.Context, now time.Time) ([]*models.Test, error) {
	var tests []*models.Test
	if err := t.db.WithContext(ctx).
		Where("is_active = ? AND end_time > ?", true, now).
		Order("start_time ASC").
		Find(&tests).Error; err != nil {
		return nil, translateError(err)
	}
	return tests, nil
}
