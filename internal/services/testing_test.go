package services

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/prepdeck/examprep-service/internal/events"
	"github.com/prepdeck/examprep-service/internal/handoff"
	"github.com/prepdeck/examprep-service/internal/models"
	"github.com/prepdeck/examprep-service/internal/repositories"
	"github.com/prepdeck/examprep-service/internal/utils"
)

// fakeRepository is an in-memory persistence gateway for service tests.
type fakeRepository struct {
	mu        sync.Mutex
	tests     map[string]*models.Test
	questions map[string][]models.Question
	users     map[string]*models.User
	results   []*models.TestResult

	appendErr error
	appends   int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		tests:     make(map[string]*models.Test),
		questions: make(map[string][]models.Question),
		users:     make(map[string]*models.User),
	}
}

func (f *fakeRepository) Test() repositories.TestRepository     { return (*fakeTestRepo)(f) }
func (f *fakeRepository) Result() repositories.ResultRepository { return (*fakeResultRepo)(f) }
func (f *fakeRepository) User() repositories.UserRepository     { return (*fakeUserRepo)(f) }

type fakeTestRepo fakeRepository

func (f *fakeTestRepo) GetByID(ctx context.Context, id string) (*models.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	test, ok := f.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *test
	return &cp, nil
}

func (f *fakeTestRepo) GetQuestions(ctx context.Context, testID string) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	qs := make([]models.Question, len(f.questions[testID]))
	copy(qs, f.questions[testID])
	return qs, nil
}

func (f *fakeTestRepo) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tests := make([]*models.Test, 0, len(f.tests))
	for _, test := range f.tests {
		cp := *test
		tests = append(tests, &cp)
	}
	return tests, int64(len(tests)), nil
}

type fakeResultRepo fakeRepository

func (f *fakeResultRepo) Append(ctx context.Context, result *models.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends++
	if f.appendErr != nil {
		return f.appendErr
	}
	f.results = append(f.results, result)
	return nil
}

func (f *fakeResultRepo) AppendBatch(ctx context.Context, results []*models.TestResult) error {
	if len(results) > repositories.MaxBatchSize {
		return repositories.ErrBatchTooLarge
	}
	for _, result := range results {
		if err := f.Append(ctx, result); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeResultRepo) GetByID(ctx context.Context, id string) (*models.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, result := range f.results {
		if result.ID == id {
			return result, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeResultRepo) GetByUser(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.TestResult
	for _, result := range f.results {
		if result.UserID == userID {
			out = append(out, result)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeResultRepo) stored() []*models.TestResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.TestResult, len(f.results))
	copy(out, f.results)
	return out
}

func (f *fakeResultRepo) appendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appends
}

type fakeUserRepo fakeRepository

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

// fixture wires an attempt service over fakes with a slow ticker so tests
// drive time explicitly unless they opt in to the countdown.
type fixture struct {
	repo      *fakeRepository
	publisher *events.MockEventPublisher
	store     *handoff.MemoryStore
	svc       *attemptService
	logger    utils.Logger
}

func newFixture() *fixture {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	store := handoff.NewMemoryStore(time.Minute)

	loader := NewTestLoader(repo, logger)
	svc := NewAttemptService(loader, repo, publisher, store, logger).(*attemptService)
	svc.tickInterval = time.Hour // tests drive ticks themselves

	return &fixture{
		repo:      repo,
		publisher: publisher,
		store:     store,
		svc:       svc,
		logger:    logger,
	}
}

func (f *fixture) seedTest(id string, durationMinutes int, correct ...int) {
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()

	f.repo.tests[id] = &models.Test{
		ID:       id,
		Title:    "Mock Test " + id,
		Duration: durationMinutes,
		Status:   models.TestStatusPublished,
		Sections: []string{"General"},
	}

	questions := make([]models.Question, len(correct))
	for i, ans := range correct {
		questions[i] = models.Question{
			ID:            id + "-q" + string(rune('1'+i)),
			TestID:        id,
			QuestionText:  "question",
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: ans,
			Section:       "General",
			Position:      i,
		}
	}
	f.repo.questions[id] = questions
}
