package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultSection is assigned to questions and tests whose section label is
// absent or blank, so downstream code never sees an empty section.
const DefaultSection = "General"

// OptionCount is the fixed number of choices per question.
const OptionCount = 4

type TestStatus string

const (
	TestStatusDraft     TestStatus = "Draft"
	TestStatusPublished TestStatus = "Published"
	TestStatusArchived  TestStatus = "Archived"
)

// Test is a published exam paper students can attempt.
type Test struct {
	ID          string     `json:"id" gorm:"primaryKey;size:64"`
	Title       string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Duration    int        `json:"duration" gorm:"not null" validate:"required,min=1,max=300"` // minutes
	Status      TestStatus `json:"status" gorm:"default:Published;index"`

	// Ordered section names; defaulted to [DefaultSection] when empty.
	Sections datatypes.JSONSlice[string] `json:"sections"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:TestID"`

	// Computed, not stored.
	QuestionCount int `json:"question_count" gorm:"-"`
}

// Question is a single multiple-choice question with exactly four options
// and one correct index. Immutable once an attempt has loaded it.
type Question struct {
	ID            string                      `json:"id" gorm:"primaryKey;size:64"`
	TestID        string                      `json:"test_id" gorm:"not null;size:64;index"`
	QuestionText  string                      `json:"question_text" gorm:"type:text;not null" validate:"required"`
	Options       datatypes.JSONSlice[string] `json:"options" validate:"required,len=4"`
	CorrectAnswer int                         `json:"correct_answer" gorm:"not null" validate:"min=0,max=3"`
	Section       string                      `json:"section" gorm:"size:100"`
	Position      int                         `json:"position" gorm:"not null;default:0;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Test) TableName() string {
	return "tests"
}

func (Question) TableName() string {
	return "questions"
}
