package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnswerNone marks an unanswered slot in an answer vector.
const AnswerNone = -1

// SubmitTrigger records what ended an attempt.
type SubmitTrigger string

const (
	TriggerManual  SubmitTrigger = "manual"
	TriggerTimeout SubmitTrigger = "timeout"
)

// QuestionSnapshot is the frozen copy of a question embedded in a result,
// so the review stays stable even if the live question is later edited.
type QuestionSnapshot struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Section       string   `json:"section"`
}

// TestResult is the persisted record of one completed attempt.
type TestResult struct {
	ID             string        `json:"id" gorm:"primaryKey;size:64"`
	UserID         string        `json:"user_id" gorm:"not null;size:255;index:idx_results_user_completed"`
	TestID         string        `json:"test_id" gorm:"not null;size:64;index"`
	TestTitle      string        `json:"test_title" gorm:"not null;size:200"`
	Score          int           `json:"score" gorm:"not null"`
	TotalQuestions int           `json:"total_questions" gorm:"not null"`
	Trigger        SubmitTrigger `json:"trigger" gorm:"size:10;default:manual"`

	// Full snapshots of the attempt, AnswerNone for skipped slots.
	Answers   datatypes.JSONSlice[int]              `json:"answers"`
	Questions datatypes.JSONSlice[QuestionSnapshot] `json:"questions"`

	CompletedAt time.Time `json:"completed_at" gorm:"not null;index:idx_results_user_completed,sort:desc"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TestResult) TableName() string {
	return "test_results"
}
