package postgres

import (
	"context"

	"github.com/prepstack/exam-service/internal/models"
	"gorm.io/gorm"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) *ResultPostgreSQL {
	return &ResultPostgreSQL{db: db}
}

// InsertIfAbsent relies on the unique index on (test_id, student_id): the
// insert is a single statement, so a request that dies mid-flight leaves no
// partial result, and the second of two racing submissions gets
// ErrDuplicateKey instead of a second row.
func (r *ResultPostgreSQL) InsertIfAbsent(ctx context.Context, result *models.Result) error {
	return translateError(r.db.WithContext(ctx).Create(result).Error)
}

func (r *ResultPostgreSQL) GetByTestAndStudent(ctx context.Context, testID, studentID uint) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Where("test_id = ? AND student_id = ?", testID, studentID).
		First(&result).Error; err != nil {
		return nil, translateError(err)
	}
	return &result, nil
}

// ListByTest returns every result for a test in one read, the consistent
// snapshot the ranking service sorts. Ordering here is only a pre-sort; the
// ranking comparator is authoritative.
func (r *ResultPostgreSQL) ListByTest(ctx context.Context, testID uint) ([]*models.Result, error) {
	var results []*models.Result
	if err := r.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Preload("Student").
		Order("score DESC, submitted_at ASC").
		Find(&results).Error; err != nil {
		return nil, translateError(err)
	}
	return results, nil
}

func (r *ResultPostgreSQL) ListByStudent(ctx context.Context, studentID uint) ([]*models.Result, error) {
	var results []*models.Result
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("Test").
		Order("submitted_at DESC").
		Find(&results).Error; err != nil {
		return nil, translateError(err)
	}
	return results, nil
}

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) *UserPostgreSQL {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}
