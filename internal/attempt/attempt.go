package attempt

import (
	"errors"
	"sync"
	"time"

	"github.com/prepdeck/examprep-service/internal/models"
)

// ErrNoQuestions is returned when an attempt is created over an empty
// question set. The loader is expected to reject such tests before this
// point; the constructor enforces it regardless.
var ErrNoQuestions = errors.New("attempt requires at least one question")

// Attempt is the state machine for one timed pass through a test. It owns
// the answer vector, review marks, cursor and countdown, and produces a
// scored Result exactly once.
//
// All operations are safe for concurrent use: the countdown ticker runs on
// its own goroutine and races HTTP-driven operations, so every mutation
// happens under the mutex. The submitted flag is checked and set in the
// same locked step, before any side effect can run, which is what makes
// submission at-most-once even when a tick reaching zero and a manual
// submit arrive together.
type Attempt struct {
	ID        string
	TestID    string
	TestTitle string
	UserID    string // empty for anonymous attempts
	Sections  []string

	mu        sync.Mutex
	questions []models.Question
	answers   []int
	marked    []bool
	cursor    int
	remaining int // seconds
	submitted bool
	abandoned bool
	result    *Result
	done      chan struct{}

	now func() time.Time
}

// Result is the immutable scored outcome of an attempt. It is built from
// deep copies so later inspection never observes attempt internals.
type Result struct {
	AttemptID      string                    `json:"attempt_id"`
	TestID         string                    `json:"test_id"`
	TestTitle      string                    `json:"test_title"`
	UserID         string                    `json:"user_id,omitempty"`
	Score          int                       `json:"score"`
	TotalQuestions int                       `json:"total_questions"`
	Trigger        models.SubmitTrigger      `json:"trigger"`
	Answers        []int                     `json:"answers"`
	Questions      []models.QuestionSnapshot `json:"questions"`
	CompletedAt    time.Time                 `json:"completed_at"`
}

// New initializes an attempt over a loaded question set. The question order
// is fixed for the attempt's lifetime and the countdown starts at the
// test's duration in seconds.
func New(id string, test *models.Test, questions []models.Question, userID string) (*Attempt, error) {
	return newWithClock(id, test, questions, userID, time.Now)
}

// NewWithClock is for tests that need deterministic completion timestamps.
func NewWithClock(id string, test *models.Test, questions []models.Question, userID string, now func() time.Time) (*Attempt, error) {
	return newWithClock(id, test, questions, userID, now)
}

func newWithClock(id string, test *models.Test, questions []models.Question, userID string, now func() time.Time) (*Attempt, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = models.AnswerNone
	}

	sections := make([]string, len(test.Sections))
	copy(sections, test.Sections)
	if len(sections) == 0 {
		sections = []string{models.DefaultSection}
	}

	return &Attempt{
		ID:        id,
		TestID:    test.ID,
		TestTitle: test.Title,
		UserID:    userID,
		Sections:  sections,
		questions: questions,
		answers:   answers,
		marked:    make([]bool, len(questions)),
		remaining: test.Duration * 60,
		done:      make(chan struct{}),
		now:       now,
	}, nil
}

// SelectAnswer records an option for the current question. Out-of-range
// option indexes are ignored rather than stored; they can only come from a
// malformed caller and must not corrupt the vector.
func (a *Attempt) SelectAnswer(option int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finishedLocked() || option < 0 || option >= len(a.questions[a.cursor].Options) {
		return
	}
	a.answers[a.cursor] = option
}

// ClearAnswer resets the current question to unanswered.
func (a *Attempt) ClearAnswer() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finishedLocked() {
		return
	}
	a.answers[a.cursor] = models.AnswerNone
}

// ToggleReviewMark flips the review mark on the current question and then
// advances, matching the "mark for review and next" action.
func (a *Attempt) ToggleReviewMark() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finishedLocked() {
		return
	}
	a.marked[a.cursor] = !a.marked[a.cursor]
	a.advanceLocked()
}

// SaveAndNext moves the cursor forward; the last question has no further
// advance.
func (a *Attempt) SaveAndNext() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finishedLocked() {
		return
	}
	a.advanceLocked()
}

func (a *Attempt) advanceLocked() {
	if a.cursor < len(a.questions)-1 {
		a.cursor++
	}
}

// JumpTo moves the cursor to an arbitrary question; out-of-range indexes
// leave the cursor unchanged.
func (a *Attempt) JumpTo(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finishedLocked() || index < 0 || index >= len(a.questions) {
		return
	}
	a.cursor = index
}

// Tick advances the countdown by one second. When the clock reaches zero it
// performs the timeout submission in the same locked step and returns the
// result with fired=true; the caller is then responsible for side effects.
// Ticks after submission are no-ops.
func (a *Attempt) Tick() (res *Result, fired bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finishedLocked() || a.remaining == 0 {
		return nil, false
	}
	a.remaining--
	if a.remaining > 0 {
		return nil, false
	}
	return a.submitLocked(models.TriggerTimeout), true
}

// Submit finishes the attempt. The first call scores the answers and
// returns (result, true); every later call returns the same result with
// first=false and performs no work. Callers run persistence and hand-off
// only when first is true.
func (a *Attempt) Submit(trigger models.SubmitTrigger) (res *Result, first bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.abandoned {
		return nil, false
	}
	if a.submitted {
		return a.result, false
	}
	return a.submitLocked(trigger), true
}

// Abandon terminates the attempt without scoring. The done channel closes
// so the countdown goroutine exits, and no result is ever produced. It
// reports false when the attempt already finished, submitted or otherwise.
func (a *Attempt) Abandon() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finishedLocked() {
		return false
	}
	a.abandoned = true
	close(a.done)
	return true
}

// finishedLocked reports whether the attempt reached a terminal state,
// by submission or abandonment. Must run with the mutex held.
func (a *Attempt) finishedLocked() bool {
	return a.submitted || a.abandoned
}

// submitLocked sets the submitted flag and freezes the scored result. It
// must run with the mutex held; the flag set here is the at-most-once
// guard for both manual and timeout submission.
func (a *Attempt) submitLocked(trigger models.SubmitTrigger) *Result {
	a.submitted = true

	score := 0
	for i, q := range a.questions {
		if a.answers[i] == q.CorrectAnswer {
			score++
		}
	}

	answers := make([]int, len(a.answers))
	copy(answers, a.answers)

	snapshots := make([]models.QuestionSnapshot, len(a.questions))
	for i, q := range a.questions {
		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		snapshots[i] = models.QuestionSnapshot{
			ID:            q.ID,
			QuestionText:  q.QuestionText,
			Options:       opts,
			CorrectAnswer: q.CorrectAnswer,
			Section:       q.Section,
		}
	}

	a.result = &Result{
		AttemptID:      a.ID,
		TestID:         a.TestID,
		TestTitle:      a.TestTitle,
		UserID:         a.UserID,
		Score:          score,
		TotalQuestions: len(a.questions),
		Trigger:        trigger,
		Answers:        answers,
		Questions:      snapshots,
		CompletedAt:    a.now(),
	}
	close(a.done)
	return a.result
}

// Done is closed once the attempt finishes, by submission or abandonment;
// the countdown goroutine uses it to stop without a stray tick firing
// against finished state.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Submitted reports whether the attempt has reached its terminal state.
func (a *Attempt) Submitted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submitted
}

// Result returns the scored result, or nil while the attempt is active.
func (a *Attempt) Result() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// TimeRemaining reports the current countdown value in seconds.
func (a *Attempt) TimeRemaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.remaining
}
