package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/prepdeck/examprep-service/internal/models"
)

func seedExportResults(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	completed := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	for _, rec := range []*models.TestResult{
		{ID: "r1", UserID: "user-1", TestID: "t1", TestTitle: "Algebra Basics", Score: 3, TotalQuestions: 4, Trigger: models.TriggerManual, CompletedAt: completed},
		{ID: "r2", UserID: "user-1", TestID: "t2", TestTitle: "Geometry", Score: 0, TotalQuestions: 5, Trigger: models.TriggerTimeout, CompletedAt: completed.Add(time.Hour)},
	} {
		require.NoError(t, f.repo.Result().Append(ctx, rec))
	}
}

func TestExportResultsToCSV(t *testing.T) {
	f := newFixture()
	seedExportResults(t, f)
	svc := NewExportService(f.repo, f.logger)

	data, err := svc.ExportResultsToCSV(context.Background(), "user-1")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "Algebra Basics", rows[1][0])
	assert.Equal(t, "3", rows[1][1])
	assert.Equal(t, "4", rows[1][2])
	assert.Equal(t, "75.0%", rows[1][3])
	assert.Equal(t, "0.0%", rows[2][3])
}

func TestExportResultsToExcel(t *testing.T) {
	f := newFixture()
	seedExportResults(t, f)
	svc := NewExportService(f.repo, f.logger)

	data, err := svc.ExportResultsToExcel(context.Background(), "user-1")
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	sheet := book.GetSheetName(0)
	rows, err := book.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "Geometry", rows[2][0])
}

func TestExportEmptyHistoryStillHasHeader(t *testing.T) {
	f := newFixture()
	svc := NewExportService(f.repo, f.logger)

	data, err := svc.ExportResultsToCSV(context.Background(), "user-1")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, exportHeaders, rows[0])
}
