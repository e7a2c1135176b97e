package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepdeck/examprep-service/internal/models"
	"github.com/prepdeck/examprep-service/internal/repositories"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, id string) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

// GetQuestions returns the test's question set in display order.
func (t *TestPostgreSQL) GetQuestions(ctx context.Context, testID string) ([]models.Question, error) {
	var questions []models.Question
	if err := t.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("position asc").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (t *TestPostgreSQL) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	var tests []*models.Test
	var total int64

	query := t.db.WithContext(ctx).Model(&models.Test{})
	query = t.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = t.applyPaginationAndSort(query, filters)
	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	// Question counts are computed, not stored.
	for _, test := range tests {
		var count int64
		if err := t.db.WithContext(ctx).Model(&models.Question{}).
			Where("test_id = ?", test.ID).
			Count(&count).Error; err != nil {
			return nil, 0, err
		}
		test.QuestionCount = int(count)
	}

	return tests, total, nil
}

func (t *TestPostgreSQL) applyFilters(query *gorm.DB, filters repositories.TestFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filters.Search+"%")
	}
	return query
}

func (t *TestPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.TestFilters) *gorm.DB {
	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
