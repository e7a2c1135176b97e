package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/prepdeck/examprep-service/internal/models"
	"github.com/prepdeck/examprep-service/internal/repositories"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) Append(ctx context.Context, result *models.TestResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

// AppendBatch writes up to MaxBatchSize result rows in one transaction.
func (r *ResultPostgreSQL) AppendBatch(ctx context.Context, results []*models.TestResult) error {
	if len(results) == 0 {
		return nil
	}
	if len(results) > repositories.MaxBatchSize {
		return fmt.Errorf("%w: %d > %d", repositories.ErrBatchTooLarge, len(results), repositories.MaxBatchSize)
	}
	return r.db.WithContext(ctx).CreateInBatches(results, repositories.MaxBatchSize).Error
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, id string) (*models.TestResult, error) {
	var result models.TestResult
	if err := r.db.WithContext(ctx).First(&result, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByUser lists a user's results newest-completed first.
func (r *ResultPostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	var results []*models.TestResult
	var total int64

	query := r.db.WithContext(ctx).Model(&models.TestResult{}).Where("user_id = ?", userID)
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("completed_at desc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *ResultPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}
	return query
}
