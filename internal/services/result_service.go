package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/prepdeck/examprep-service/internal/attempt"
	"github.com/prepdeck/examprep-service/internal/handoff"
	"github.com/prepdeck/examprep-service/internal/models"
	"github.com/prepdeck/examprep-service/internal/repositories"
	"github.com/prepdeck/examprep-service/internal/utils"
)

// OptionVerdict classifies one option in the per-question review.
type OptionVerdict string

const (
	VerdictCorrect         OptionVerdict = "correct"
	VerdictChosenIncorrect OptionVerdict = "chosen_incorrect"
	VerdictNeutral         OptionVerdict = "neutral"
)

// Breakdown is the performance summary shown above the review.
type Breakdown struct {
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Skipped   int     `json:"skipped"`
	Accuracy  float64 `json:"accuracy"` // percent of attempted, 0 when nothing attempted
}

// QuestionReview marks every option of one question for display.
type QuestionReview struct {
	Question models.QuestionSnapshot `json:"question"`
	Selected int                     `json:"selected"` // AnswerNone when skipped
	Correct  bool                    `json:"correct"`
	Skipped  bool                    `json:"skipped"`
	Verdicts []OptionVerdict         `json:"verdicts"`
}

// ResultReview is the full scored-result payload for the result view.
type ResultReview struct {
	ID             string               `json:"id"`
	TestID         string               `json:"test_id"`
	TestTitle      string               `json:"test_title"`
	Score          int                  `json:"score"`
	TotalQuestions int                  `json:"total_questions"`
	Trigger        models.SubmitTrigger `json:"trigger"`
	Breakdown      Breakdown            `json:"breakdown"`
	Review         []QuestionReview     `json:"review"`
}

// ResultService serves scored results: the one-shot hand-off right after
// submission and the durable per-user history.
type ResultService interface {
	TakeHandoff(ctx context.Context, attemptID, userID string) (*ResultReview, error)
	GetByID(ctx context.Context, resultID, userID string) (*ResultReview, error)
	History(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.TestResult, int64, error)
}

type resultService struct {
	repo    repositories.Repository
	results handoff.Store
	logger  utils.Logger
}

func NewResultService(repo repositories.Repository, results handoff.Store, logger utils.Logger) ResultService {
	return &resultService{repo: repo, results: results, logger: logger}
}

// TakeHandoff consumes the staged result for an attempt. It works for
// anonymous attempts too; owned results are only released to their owner.
func (s *resultService) TakeHandoff(ctx context.Context, attemptID, userID string) (*ResultReview, error) {
	res, err := s.results.Take(ctx, attemptID)
	if errors.Is(err, handoff.ErrNotFound) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take staged result: %w", err)
	}
	if res.UserID != "" && res.UserID != userID {
		return nil, ErrResultAccessDenied
	}

	return reviewFromAttemptResult(res), nil
}

func (s *resultService) GetByID(ctx context.Context, resultID, userID string) (*ResultReview, error) {
	record, err := s.repo.Result().GetByID(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	if record.UserID != userID {
		return nil, ErrResultAccessDenied
	}

	return reviewFromRecord(record), nil
}

func (s *resultService) History(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	records, total, err := s.repo.Result().GetByUser(ctx, userID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list results: %w", err)
	}
	return records, total, nil
}

func reviewFromAttemptResult(res *attempt.Result) *ResultReview {
	return buildReview(res.AttemptID, res.TestID, res.TestTitle, res.Score, res.Trigger, res.Answers, res.Questions)
}

func reviewFromRecord(record *models.TestResult) *ResultReview {
	return buildReview(record.ID, record.TestID, record.TestTitle, record.Score, record.Trigger, record.Answers, record.Questions)
}

func buildReview(id, testID, title string, score int, trigger models.SubmitTrigger, answers []int, questions []models.QuestionSnapshot) *ResultReview {
	total := len(questions)

	attempted := 0
	for _, ans := range answers {
		if ans != models.AnswerNone {
			attempted++
		}
	}
	incorrect := attempted - score
	accuracy := 0.0
	if attempted > 0 {
		accuracy = float64(score) / float64(attempted) * 100
	}

	review := make([]QuestionReview, total)
	for i, q := range questions {
		selected := models.AnswerNone
		if i < len(answers) {
			selected = answers[i]
		}
		correct := selected == q.CorrectAnswer

		verdicts := make([]OptionVerdict, len(q.Options))
		for o := range q.Options {
			switch {
			case o == q.CorrectAnswer:
				verdicts[o] = VerdictCorrect
			case o == selected && !correct:
				verdicts[o] = VerdictChosenIncorrect
			default:
				verdicts[o] = VerdictNeutral
			}
		}

		review[i] = QuestionReview{
			Question: q,
			Selected: selected,
			Correct:  correct,
			Skipped:  selected == models.AnswerNone,
			Verdicts: verdicts,
		}
	}

	return &ResultReview{
		ID:             id,
		TestID:         testID,
		TestTitle:      title,
		Score:          score,
		TotalQuestions: total,
		Trigger:        trigger,
		Breakdown: Breakdown{
			Attempted: attempted,
			Correct:   score,
			Incorrect: incorrect,
			Skipped:   total - attempted,
			Accuracy:  accuracy,
		},
		Review: review,
	}
}
