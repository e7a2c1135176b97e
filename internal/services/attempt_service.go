package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prepdeck/examprep-service/internal/attempt"
	"github.com/prepdeck/examprep-service/internal/events"
	"github.com/prepdeck/examprep-service/internal/handoff"
	"github.com/prepdeck/examprep-service/internal/identity"
	"github.com/prepdeck/examprep-service/internal/models"
	"github.com/prepdeck/examprep-service/internal/repositories"
	"github.com/prepdeck/examprep-service/internal/utils"
)

// AttemptService runs timed attempts: it loads question sets, owns the
// per-attempt countdown goroutines, and performs the submission side
// effects exactly once per attempt.
type AttemptService interface {
	Start(ctx context.Context, testID string, user *identity.User) (attempt.View, error)
	Get(ctx context.Context, attemptID, userID string) (attempt.View, error)

	SelectAnswer(ctx context.Context, attemptID, userID string, option int) (attempt.View, error)
	ClearAnswer(ctx context.Context, attemptID, userID string) (attempt.View, error)
	ToggleReviewMark(ctx context.Context, attemptID, userID string) (attempt.View, error)
	SaveAndNext(ctx context.Context, attemptID, userID string) (attempt.View, error)
	JumpTo(ctx context.Context, attemptID, userID string, index int) (attempt.View, error)

	Submit(ctx context.Context, attemptID, userID string) (*attempt.Result, error)
	Abandon(ctx context.Context, attemptID, userID string) error
}

type attemptService struct {
	loader    TestLoader
	repo      repositories.Repository
	publisher events.EventPublisher
	results   handoff.Store
	logger    utils.Logger

	tickInterval time.Duration
	retention    time.Duration
	now          func() time.Time

	mu       sync.Mutex
	attempts map[string]*attempt.Attempt
	active   map[string]string // userID|testID -> attemptID, in-progress only
}

func NewAttemptService(
	loader TestLoader,
	repo repositories.Repository,
	publisher events.EventPublisher,
	results handoff.Store,
	logger utils.Logger,
) AttemptService {
	return &attemptService{
		loader:       loader,
		repo:         repo,
		publisher:    publisher,
		results:      results,
		logger:       logger,
		tickInterval: time.Second,
		retention:    10 * time.Minute,
		now:          time.Now,
		attempts:     make(map[string]*attempt.Attempt),
		active:       make(map[string]string),
	}
}

// Start loads the test and begins a new attempt with a running countdown.
// Load failures (missing test, empty question set) surface before any
// timer starts; the state machine is never created for them.
func (s *attemptService) Start(ctx context.Context, testID string, user *identity.User) (attempt.View, error) {
	userID := ""
	if user != nil {
		userID = user.ID
	}

	s.logger.Info("Starting test attempt", "test_id", testID, "user_id", userID)

	test, questions, err := s.loader.Load(ctx, testID)
	if err != nil {
		return attempt.View{}, err
	}

	if user != nil {
		s.mirrorUser(ctx, user)
	}

	att, err := attempt.NewWithClock(uuid.NewString(), test, questions, userID, s.now)
	if err != nil {
		// Unreachable while the loader enforces a non-empty set; mapped
		// anyway so the caller sees a load failure, not a panic.
		return attempt.View{}, ErrEmptyQuestionSet
	}

	s.mu.Lock()
	if userID != "" {
		key := activeKey(userID, testID)
		if existingID, ok := s.active[key]; ok {
			if existing, found := s.attempts[existingID]; found && !existing.Submitted() {
				s.mu.Unlock()
				return attempt.View{}, ErrAttemptInProgress
			}
		}
		s.active[key] = att.ID
	}
	s.attempts[att.ID] = att
	s.mu.Unlock()

	go s.runCountdown(att)

	if err := s.publisher.PublishAttemptEvent(ctx, events.NewAttemptEvent(events.EventAttemptStarted, events.AttemptStartedEvent{
		AttemptID: att.ID,
		TestID:    test.ID,
		TestTitle: test.Title,
		UserID:    userID,
		StartedAt: s.now(),
		TimeLimit: test.Duration * 60,
	})); err != nil {
		s.logger.LogError(err, "Failed to publish attempt started event", "attempt_id", att.ID)
	}

	s.logger.Info("Test attempt started",
		"attempt_id", att.ID,
		"test_id", testID,
		"questions", len(questions),
		"duration_seconds", test.Duration*60)

	return att.Snapshot(), nil
}

// runCountdown drives the attempt's clock until submission or abandonment.
// When a tick reaches zero the engine performs the timeout submission
// inside its own lock; only the side effects run out here.
func (s *attemptService) runCountdown(att *attempt.Attempt) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-att.Done():
			return
		case <-ticker.C:
			if res, fired := att.Tick(); fired {
				s.logger.Info("Attempt timed out, auto-submitted",
					"attempt_id", att.ID,
					"score", res.Score)
				s.finalize(context.Background(), res)
				return
			}
		}
	}
}

func (s *attemptService) Get(ctx context.Context, attemptID, userID string) (attempt.View, error) {
	att, err := s.lookup(attemptID, userID)
	if err != nil {
		return attempt.View{}, err
	}
	return att.Snapshot(), nil
}

func (s *attemptService) SelectAnswer(ctx context.Context, attemptID, userID string, option int) (attempt.View, error) {
	att, err := s.lookup(attemptID, userID)
	if err != nil {
		return attempt.View{}, err
	}
	if att.Submitted() {
		return attempt.View{}, ErrAttemptAlreadySubmitted
	}
	att.SelectAnswer(option)
	return att.Snapshot(), nil
}

func (s *attemptService) ClearAnswer(ctx context.Context, attemptID, userID string) (attempt.View, error) {
	att, err := s.lookup(attemptID, userID)
	if err != nil {
		return attempt.View{}, err
	}
	if att.Submitted() {
		return attempt.View{}, ErrAttemptAlreadySubmitted
	}
	att.ClearAnswer()
	return att.Snapshot(), nil
}

func (s *attemptService) ToggleReviewMark(ctx context.Context, attemptID, userID string) (attempt.View, error) {
	att, err := s.lookup(attemptID, userID)
	if err != nil {
		return attempt.View{}, err
	}
	if att.Submitted() {
		return attempt.View{}, ErrAttemptAlreadySubmitted
	}
	att.ToggleReviewMark()
	return att.Snapshot(), nil
}

func (s *attemptService) SaveAndNext(ctx context.Context, attemptID, userID string) (attempt.View, error) {
	att, err := s.lookup(attemptID, userID)
	if err != nil {
		return attempt.View{}, err
	}
	if att.Submitted() {
		return attempt.View{}, ErrAttemptAlreadySubmitted
	}
	att.SaveAndNext()
	return att.Snapshot(), nil
}

func (s *attemptService) JumpTo(ctx context.Context, attemptID, userID string, index int) (attempt.View, error) {
	att, err := s.lookup(attemptID, userID)
	if err != nil {
		return attempt.View{}, err
	}
	if att.Submitted() {
		return attempt.View{}, ErrAttemptAlreadySubmitted
	}
	att.JumpTo(index)
	return att.Snapshot(), nil
}

// Submit finishes the attempt manually. Re-submitting a finished attempt
// returns the original result and performs no further side effects.
func (s *attemptService) Submit(ctx context.Context, attemptID, userID string) (*attempt.Result, error) {
	att, err := s.lookup(attemptID, userID)
	if err != nil {
		return nil, err
	}

	res, first := att.Submit(models.TriggerManual)
	if first {
		s.finalize(ctx, res)
	}
	return res, nil
}

// Abandon tears the attempt down without scoring: the engine closes so
// the countdown goroutine exits, and nothing is persisted, staged, or
// published. Already-submitted attempts cannot be abandoned.
func (s *attemptService) Abandon(ctx context.Context, attemptID, userID string) error {
	att, err := s.lookup(attemptID, userID)
	if err != nil {
		return err
	}
	if !att.Abandon() {
		return ErrAttemptAlreadySubmitted
	}

	s.remove(att)
	s.logger.Info("Attempt abandoned", "attempt_id", attemptID)
	return nil
}

// finalize runs the post-submission side effects. It is reached exactly
// once per attempt: only the caller that owned the first submission (tick
// or manual) gets here. Failures are reported but never block the result.
func (s *attemptService) finalize(ctx context.Context, res *attempt.Result) {
	if res.UserID != "" {
		record := resultRecord(res)
		if err := s.repo.Result().Append(ctx, record); err != nil {
			s.logger.LogError(err, "Failed to persist attempt result",
				"attempt_id", res.AttemptID,
				"user_id", res.UserID)
		}
	}

	if err := s.results.Put(ctx, res); err != nil {
		s.logger.LogError(err, "Failed to stage result for hand-off", "attempt_id", res.AttemptID)
	}

	if err := s.publisher.PublishAttemptEvent(ctx, events.NewAttemptEvent(events.EventAttemptCompleted, events.AttemptCompletedEvent{
		AttemptID:      res.AttemptID,
		TestID:         res.TestID,
		TestTitle:      res.TestTitle,
		UserID:         res.UserID,
		Score:          res.Score,
		TotalQuestions: res.TotalQuestions,
		Trigger:        string(res.Trigger),
		CompletedAt:    res.CompletedAt,
	})); err != nil {
		s.logger.LogError(err, "Failed to publish attempt completed event", "attempt_id", res.AttemptID)
	}

	// Keep the finished attempt around so repeat submits stay idempotent,
	// then let it go.
	s.mu.Lock()
	att := s.attempts[res.AttemptID]
	s.mu.Unlock()
	if att != nil {
		if res.UserID != "" {
			s.clearActive(att)
		}
		time.AfterFunc(s.retention, func() { s.remove(att) })
	}
}

// mirrorUser refreshes the local copy of the identity provider's account
// record so persisted results always have a user row to attribute to.
// Best-effort: a write failure never blocks the attempt.
func (s *attemptService) mirrorUser(ctx context.Context, user *identity.User) {
	lastLogin := s.now()
	record := &models.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        models.RoleStudent,
		LastLoginAt: &lastLogin,
	}
	if user.AvatarURL != "" {
		record.AvatarURL = &user.AvatarURL
	}

	if err := s.repo.User().Upsert(ctx, record); err != nil {
		s.logger.LogError(err, "Failed to mirror user record", "user_id", user.ID)
	}
}

func resultRecord(res *attempt.Result) *models.TestResult {
	return &models.TestResult{
		ID:             res.AttemptID,
		UserID:         res.UserID,
		TestID:         res.TestID,
		TestTitle:      res.TestTitle,
		Score:          res.Score,
		TotalQuestions: res.TotalQuestions,
		Trigger:        res.Trigger,
		Answers:        res.Answers,
		Questions:      res.Questions,
		CompletedAt:    res.CompletedAt,
	}
}

func (s *attemptService) lookup(attemptID, userID string) (*attempt.Attempt, error) {
	s.mu.Lock()
	att, ok := s.attempts[attemptID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrAttemptNotFound
	}
	if att.UserID != "" && att.UserID != userID {
		return nil, ErrAttemptAccessDenied
	}
	return att, nil
}

func (s *attemptService) remove(att *attempt.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, att.ID)
	if att.UserID != "" {
		key := activeKey(att.UserID, att.TestID)
		if s.active[key] == att.ID {
			delete(s.active, key)
		}
	}
}

func (s *attemptService) clearActive(att *attempt.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := activeKey(att.UserID, att.TestID)
	if s.active[key] == att.ID {
		delete(s.active, key)
	}
}

func activeKey(userID, testID string) string {
	return fmt.Sprintf("%s|%s", userID, testID)
}
