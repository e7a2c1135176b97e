package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/prepdeck/examprep-service/internal/models"
	"github.com/prepdeck/examprep-service/internal/repositories"
	"github.com/prepdeck/examprep-service/internal/utils"
)

// TestLoader fetches a test and its ordered question set, applying the
// defaulting the rest of the system relies on: no empty section labels, no
// empty section lists. It refuses to hand out tests an attempt could not
// run against.
type TestLoader interface {
	Load(ctx context.Context, testID string) (*models.Test, []models.Question, error)
	List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error)
	Get(ctx context.Context, testID string) (*models.Test, error)
}

type testLoader struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewTestLoader(repo repositories.Repository, logger utils.Logger) TestLoader {
	return &testLoader{repo: repo, logger: logger}
}

// Load resolves the test and its questions for a new attempt. Fails with
// ErrTestNotFound or ErrEmptyQuestionSet before any timer can start.
func (l *testLoader) Load(ctx context.Context, testID string) (*models.Test, []models.Question, error) {
	test, err := l.Get(ctx, testID)
	if err != nil {
		return nil, nil, err
	}
	if test.Status != models.TestStatusPublished {
		l.logger.Warn("Refused attempt against unpublished test",
			"test_id", testID,
			"status", string(test.Status))
		return nil, nil, ErrTestNotPublished
	}

	questions, err := l.repo.Test().GetQuestions(ctx, testID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get questions: %w", err)
	}
	if len(questions) == 0 {
		l.logger.Warn("Test has no questions", "test_id", testID)
		return nil, nil, ErrEmptyQuestionSet
	}

	for i := range questions {
		if strings.TrimSpace(questions[i].Section) == "" {
			questions[i].Section = models.DefaultSection
		}
	}

	return test, questions, nil
}

func (l *testLoader) Get(ctx context.Context, testID string) (*models.Test, error) {
	test, err := l.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	normalizeSections(test)
	return test, nil
}

func (l *testLoader) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	tests, total, err := l.repo.Test().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tests: %w", err)
	}
	for _, test := range tests {
		normalizeSections(test)
	}
	return tests, total, nil
}

func normalizeSections(test *models.Test) {
	sections := make([]string, 0, len(test.Sections))
	for _, s := range test.Sections {
		if strings.TrimSpace(s) != "" {
			sections = append(sections, s)
		}
	}
	if len(sections) == 0 {
		sections = []string{models.DefaultSection}
	}
	test.Sections = sections
}
