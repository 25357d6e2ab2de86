package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/prepstack/exam-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the gorm-backed implementation of repositories.Repository.
type Repository struct {
	db       *gorm.DB
	question *QuestionPostgreSQL
	test     *TestPostgreSQL
	result   *ResultPostgreSQL
	user     *UserPostgreSQL
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		question: NewQuestionPostgreSQL(db),
		test:     NewTestPostgreSQL(db),
		result:   NewResultPostgreSQL(db),
		user:     NewUserPostgreSQL(db),
	}
}

func (r *Repository) Question() repositories.QuestionRepository { return r.question }
func (r *Repository) Test() repositories.TestRepository         { return r.test }
func (r *Repository) Result() repositories.ResultRepository     { return r.result }
func (r *Repository) User() repositories.UserRepository         { return r.user }

// WithTransaction runs fn against a repository bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// translateError maps gorm errors onto the repository sentinels so services
// never import gorm.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicateKey
	default:
		return err
	}
}

// applyPaginationAndSort applies shared limit/offset/order handling.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy != "" {
		order := sortBy
		if sortOrder == "desc" {
			order += " DESC"
		}
		query = query.Order(order)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
