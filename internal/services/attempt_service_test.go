package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/examprep-service/internal/events"
	"github.com/prepdeck/examprep-service/internal/identity"
	"github.com/prepdeck/examprep-service/internal/models"
)

var student = &identity.User{ID: "user-1", DisplayName: "Student", Email: "s@example.com"}

func TestStartFailsBeforeTimerOnLoadErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "missing", student)
	assert.ErrorIs(t, err, ErrTestNotFound)

	f.seedTest("empty", 10)
	_, err = f.svc.Start(ctx, "empty", student)
	assert.ErrorIs(t, err, ErrEmptyQuestionSet)

	// No attempt state may exist after a failed load.
	f.svc.mu.Lock()
	assert.Empty(t, f.svc.attempts)
	f.svc.mu.Unlock()
}

func TestStartInitializesAttempt(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 1, 3)

	view, err := f.svc.Start(context.Background(), "t1", student)
	require.NoError(t, err)

	assert.Equal(t, 2, view.TotalQuestions)
	assert.Equal(t, 120, view.TimeRemaining)
	assert.Equal(t, 0, view.Cursor)
	assert.Equal(t, models.AnswerNone, view.Selected)
	assert.False(t, view.Submitted)

	// A started event goes out.
	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptStarted, published[0].Type)
}

func TestSecondAttemptSameTestRejected(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 1)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "t1", student)
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, "t1", student)
	assert.ErrorIs(t, err, ErrAttemptInProgress)

	// A different user is unaffected.
	_, err = f.svc.Start(ctx, "t1", &identity.User{ID: "user-2"})
	assert.NoError(t, err)
}

func TestSubmitScoresPersistsAndStages(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 1, 3)
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "t1", student)
	require.NoError(t, err)

	// answers = [1, 2] against correct [1, 3] scores 1 of 2.
	_, err = f.svc.SelectAnswer(ctx, view.AttemptID, student.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.SaveAndNext(ctx, view.AttemptID, student.ID)
	require.NoError(t, err)
	_, err = f.svc.SelectAnswer(ctx, view.AttemptID, student.ID, 2)
	require.NoError(t, err)

	res, err := f.svc.Submit(ctx, view.AttemptID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, models.TriggerManual, res.Trigger)

	// Persisted record mirrors the result.
	stored := f.repo.Result().(*fakeResultRepo).stored()
	require.Len(t, stored, 1)
	assert.Equal(t, res.AttemptID, stored[0].ID)
	assert.Equal(t, 1, stored[0].Score)
	assert.Equal(t, []int{1, 2}, []int(stored[0].Answers))

	// Result staged for the hand-off exactly once.
	staged, err := f.store.Take(ctx, res.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, res.Score, staged.Score)

	// Completed event published after the started event.
	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventAttemptCompleted, published[1].Type)
}

func TestResubmitIsIdempotent(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 0)
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "t1", student)
	require.NoError(t, err)

	res1, err := f.svc.Submit(ctx, view.AttemptID, student.ID)
	require.NoError(t, err)
	res2, err := f.svc.Submit(ctx, view.AttemptID, student.ID)
	require.NoError(t, err)

	assert.Same(t, res1, res2)
	assert.Equal(t, 1, f.repo.Result().(*fakeResultRepo).appendCalls(), "remote write happens at most once")
}

func TestAnonymousSubmitSkipsPersistence(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 0)
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "t1", nil)
	require.NoError(t, err)

	res, err := f.svc.Submit(ctx, view.AttemptID, "")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 0, f.repo.Result().(*fakeResultRepo).appendCalls())

	// The result still reaches the hand-off for local display.
	_, err = f.store.Take(ctx, res.AttemptID)
	assert.NoError(t, err)
}

func TestPersistenceFailureDoesNotBlockResult(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 0)
	f.repo.appendErr = errors.New("gateway down")
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "t1", student)
	require.NoError(t, err)

	res, err := f.svc.Submit(ctx, view.AttemptID, student.ID)
	require.NoError(t, err, "persistence failure must not surface to the student")
	require.NotNil(t, res)

	staged, err := f.store.Take(ctx, res.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, res.Score, staged.Score)
}

func TestTimeoutAutoSubmitsExactlyOnce(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 1, 1, 1) // 60 seconds
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "t1", student)
	require.NoError(t, err)

	_, err = f.svc.SelectAnswer(ctx, view.AttemptID, student.ID, 1)
	require.NoError(t, err)

	att, err := f.svc.lookup(view.AttemptID, student.ID)
	require.NoError(t, err)

	fired := 0
	for i := 0; i < 70; i++ {
		if res, ok := att.Tick(); ok {
			fired++
			f.svc.finalize(ctx, res)
		}
	}
	require.Equal(t, 1, fired)

	stored := f.repo.Result().(*fakeResultRepo).stored()
	require.Len(t, stored, 1)
	assert.Equal(t, models.TriggerTimeout, stored[0].Trigger)
	assert.Equal(t, 1, stored[0].Score)
	assert.Equal(t, 1, f.repo.Result().(*fakeResultRepo).appendCalls())
}

// A manual submit racing the timeout path finalizes exactly once.
func TestManualSubmitRacingTimeout(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 1, 0)
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "t1", student)
	require.NoError(t, err)

	att, err := f.svc.lookup(view.AttemptID, student.ID)
	require.NoError(t, err)
	for i := 0; i < 59; i++ {
		att.Tick()
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(manual bool) {
			defer wg.Done()
			if manual {
				_, _ = f.svc.Submit(ctx, view.AttemptID, student.ID)
			} else if res, ok := att.Tick(); ok {
				f.svc.finalize(ctx, res)
			}
		}(g%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, 1, f.repo.Result().(*fakeResultRepo).appendCalls())
}

func TestOwnershipEnforced(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 0)
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "t1", student)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, view.AttemptID, "someone-else")
	assert.ErrorIs(t, err, ErrAttemptAccessDenied)

	_, err = f.svc.Submit(ctx, view.AttemptID, "someone-else")
	assert.ErrorIs(t, err, ErrAttemptAccessDenied)
}

// An abandoned attempt's countdown goroutine must exit: no later tick may
// auto-submit, persist, stage, or publish for it.
func TestAbandonStopsRunningCountdown(t *testing.T) {
	f := newFixture()
	f.svc.tickInterval = time.Millisecond
	f.seedTest("t1", 1, 0) // 60 ticks to expiry
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "t1", student)
	require.NoError(t, err)
	require.NoError(t, f.svc.Abandon(ctx, view.AttemptID, student.ID))

	// Long enough for the leaked ticker, if any, to reach expiry.
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 0, f.repo.Result().(*fakeResultRepo).appendCalls())
	_, err = f.store.Take(ctx, view.AttemptID)
	assert.Error(t, err, "no result may be staged for an abandoned attempt")

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptStarted, published[0].Type)
}

func TestStartMirrorsUserRecord(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 0)

	_, err := f.svc.Start(context.Background(), "t1", student)
	require.NoError(t, err)

	mirrored, err := f.repo.User().GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.DisplayName, mirrored.DisplayName)
	assert.Equal(t, student.Email, mirrored.Email)
	assert.Equal(t, models.RoleStudent, mirrored.Role)
	require.NotNil(t, mirrored.LastLoginAt)
}

func TestStartUnpublishedTestRejected(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 0)
	f.repo.mu.Lock()
	f.repo.tests["t1"].Status = models.TestStatusDraft
	f.repo.mu.Unlock()

	_, err := f.svc.Start(context.Background(), "t1", student)
	assert.ErrorIs(t, err, ErrTestNotPublished)
}

func TestAbandonDiscardsAttempt(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 0)
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "t1", student)
	require.NoError(t, err)

	require.NoError(t, f.svc.Abandon(ctx, view.AttemptID, student.ID))

	_, err = f.svc.Get(ctx, view.AttemptID, student.ID)
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	// Nothing persisted, and the test is free to start again.
	assert.Equal(t, 0, f.repo.Result().(*fakeResultRepo).appendCalls())
	_, err = f.svc.Start(ctx, "t1", student)
	assert.NoError(t, err)
}

func TestOperationsAfterSubmitRejected(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 2, 0)
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "t1", student)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, view.AttemptID, student.ID)
	require.NoError(t, err)

	_, err = f.svc.SelectAnswer(ctx, view.AttemptID, student.ID, 1)
	assert.ErrorIs(t, err, ErrAttemptAlreadySubmitted)
	err = f.svc.Abandon(ctx, view.AttemptID, student.ID)
	assert.ErrorIs(t, err, ErrAttemptAlreadySubmitted)
}
