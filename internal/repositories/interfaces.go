package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/prepstack/exam-service/internal/models"
)

// ===== SENTINEL ERRORS =====

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert violates a uniqueness
	// constraint. For results this is the loser of a concurrent
	// duplicate-submission race.
	ErrDuplicateKey = errors.New("duplicate key")
)

// IsNotFoundError checks if error represents a "not found" condition
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateKeyError checks if error represents a uniqueness violation
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	IsActive  *bool  `json:"is_active"`
	CreatedBy *uint  `json:"created_by"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "created_at", "uid"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

type TestFilters struct {
	IsActive  *bool  `json:"is_active"`
	CreatedBy *uint  `json:"created_by"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "start_time", "created_at", "title"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

// QuestionRepository is the question snapshot store. Grading addresses
// questions by UID, never by storage key.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByUID(ctx context.Context, uid string) (*models.Question, error)

	// GetActiveByUIDs returns the active questions for the requested UIDs,
	// keyed by UID. Missing entries are the caller's problem: the scoring
	// engine treats any gap as an incomplete snapshot, never skips.
	GetActiveByUIDs(ctx context.Context, uids []string) (map[string]*models.Question, error)

	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
}

type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	Update(ctx context.Context, test *models.Test) error

	// Delete hard-deletes the test together with all of its results.
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)

	// ListAvailable returns active tests whose submission window has not yet
	// closed at the given instant.
	ListAvailable(ctx context.Context, now time.Time) ([]*models.Test, error)
}

type ResultRepository interface {
	// InsertIfAbsent persists a graded result as a single atomic insert.
	// A second result for the same (test, student) pair fails with
	// ErrDuplicateKey; it never overwrites.
	InsertIfAbsent(ctx context.Context, result *models.Result) error

	GetByTestAndStudent(ctx context.Context, testID, studentID uint) (*models.Result, error)
	ListByTest(ctx context.Context, testID uint) ([]*models.Result, error)
	ListByStudent(ctx context.Context, studentID uint) ([]*models.Result, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Repository aggregates the per-entity repositories behind one handle.
type Repository interface {
	Question() QuestionRepository
	Test() TestRepository
	Result() ResultRepository
	User() UserRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
}
