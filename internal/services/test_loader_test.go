package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/examprep-service/internal/models"
)

func TestLoaderNotFound(t *testing.T) {
	f := newFixture()
	loader := NewTestLoader(f.repo, f.logger)

	_, _, err := loader.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestLoaderEmptyQuestionSet(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 10) // no questions
	loader := NewTestLoader(f.repo, f.logger)

	_, _, err := loader.Load(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrEmptyQuestionSet)
}

func TestLoaderRejectsUnpublished(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 10, 0, 1)
	loader := NewTestLoader(f.repo, f.logger)

	for _, status := range []models.TestStatus{models.TestStatusDraft, models.TestStatusArchived} {
		f.repo.mu.Lock()
		f.repo.tests["t1"].Status = status
		f.repo.mu.Unlock()

		_, _, err := loader.Load(context.Background(), "t1")
		assert.ErrorIs(t, err, ErrTestNotPublished)
	}

	// The metadata itself stays readable by ID; only attempts are blocked.
	_, err := loader.Get(context.Background(), "t1")
	assert.NoError(t, err)
}

func TestLoaderDefaultsSections(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 10, 0, 1)

	// Blank labels on both the test and one question.
	f.repo.mu.Lock()
	f.repo.tests["t1"].Sections = nil
	qs := f.repo.questions["t1"]
	qs[1].Section = "  "
	f.repo.questions["t1"] = qs
	f.repo.mu.Unlock()

	loader := NewTestLoader(f.repo, f.logger)
	test, questions, err := loader.Load(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, []string{models.DefaultSection}, []string(test.Sections))
	assert.Equal(t, "General", questions[0].Section)
	assert.Equal(t, models.DefaultSection, questions[1].Section)
}

func TestLoaderPreservesQuestionOrder(t *testing.T) {
	f := newFixture()
	f.seedTest("t1", 10, 0, 1, 2, 3)

	loader := NewTestLoader(f.repo, f.logger)
	_, questions, err := loader.Load(context.Background(), "t1")
	require.NoError(t, err)

	require.Len(t, questions, 4)
	for i, q := range questions {
		assert.Equal(t, i, q.Position)
	}
}
