package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/prepdeck/examprep-service/internal/models"
)

// MaxBatchSize caps how many result rows a single batched write may carry.
const MaxBatchSize = 499

// TestRepository reads the test catalog and question sets. The attempt
// engine only ever reads through this interface.
type TestRepository interface {
	GetByID(ctx context.Context, id string) (*models.Test, error)
	GetQuestions(ctx context.Context, testID string) ([]models.Question, error)
	List(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)
}

// ResultRepository persists completed attempt records.
type ResultRepository interface {
	Append(ctx context.Context, result *models.TestResult) error
	AppendBatch(ctx context.Context, results []*models.TestResult) error
	GetByID(ctx context.Context, id string) (*models.TestResult, error)
	GetByUser(ctx context.Context, userID string, filters ResultFilters) ([]*models.TestResult, int64, error)
}

// UserRepository reads identity-provider-mirrored accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

// Repository aggregates the persistence gateway.
type Repository interface {
	Test() TestRepository
	Result() ResultRepository
	User() UserRepository
}

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	Status    *models.TestStatus `json:"status"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	TestID   *string    `json:"test_id"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ErrBatchTooLarge is returned when a batched write exceeds MaxBatchSize.
var ErrBatchTooLarge = errors.New("batched write exceeds maximum operation count")

// IsNotFoundError reports whether err is the gateway's missing-row error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
