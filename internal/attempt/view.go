package attempt

import "github.com/prepdeck/examprep-service/internal/models"

// QuestionView is the client-facing shape of a question during an active
// attempt. The correct answer never leaves the server before submission.
type QuestionView struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Section      string   `json:"section"`
}

// View is a consistent snapshot of the attempt for rendering: the current
// question, the palette state, and the countdown.
type View struct {
	AttemptID string   `json:"attempt_id"`
	TestID    string   `json:"test_id"`
	TestTitle string   `json:"test_title"`
	Sections  []string `json:"sections"`

	Cursor         int          `json:"cursor"`
	TotalQuestions int          `json:"total_questions"`
	Question       QuestionView `json:"question"`
	Selected       int          `json:"selected"` // AnswerNone when blank

	Answered []bool `json:"answered"`
	Marked   []bool `json:"marked"`

	TimeRemaining int  `json:"time_remaining"`
	Submitted     bool `json:"submitted"`
}

// Snapshot copies the attempt state under the lock. Mutating the returned
// view has no effect on the attempt.
func (a *Attempt) Snapshot() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	q := a.questions[a.cursor]
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)

	answered := make([]bool, len(a.answers))
	for i, ans := range a.answers {
		answered[i] = ans != models.AnswerNone
	}
	marked := make([]bool, len(a.marked))
	copy(marked, a.marked)

	return View{
		AttemptID:      a.ID,
		TestID:         a.TestID,
		TestTitle:      a.TestTitle,
		Sections:       a.Sections,
		Cursor:         a.cursor,
		TotalQuestions: len(a.questions),
		Question: QuestionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      opts,
			Section:      q.Section,
		},
		Selected:      a.answers[a.cursor],
		Answered:      answered,
		Marked:        marked,
		TimeRemaining: a.remaining,
		Submitted:     a.submitted,
	}
}
