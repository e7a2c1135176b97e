package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/prepdeck/examprep-service/internal/models"
	"github.com/prepdeck/examprep-service/internal/repositories"
	"github.com/prepdeck/examprep-service/internal/utils"
)

// ExportService renders a user's result history as a downloadable file.
type ExportService interface {
	ExportResultsToCSV(ctx context.Context, userID string) ([]byte, error)
	ExportResultsToExcel(ctx context.Context, userID string) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var exportHeaders = []string{"Test", "Score", "Total Questions", "Percentage", "Finished By", "Completed At"}

func (s *exportService) ExportResultsToCSV(ctx context.Context, userID string) ([]byte, error) {
	records, _, err := s.repo.Result().GetByUser(ctx, userID, repositories.ResultFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load results for export: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, record := range records {
		row := []string{
			record.TestTitle,
			strconv.Itoa(record.Score),
			strconv.Itoa(record.TotalQuestions),
			fmt.Sprintf("%.1f%%", percentage(record)),
			string(record.Trigger),
			record.CompletedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.Info("Exported results to CSV", "user_id", userID, "rows", len(records))
	return buf.Bytes(), nil
}

func (s *exportService) ExportResultsToExcel(ctx context.Context, userID string) ([]byte, error) {
	records, _, err := s.repo.Result().GetByUser(ctx, userID, repositories.ResultFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load results for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, record := range records {
		values := []interface{}{
			record.TestTitle,
			record.Score,
			record.TotalQuestions,
			percentage(record),
			string(record.Trigger),
			record.CompletedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Exported results to Excel", "user_id", userID, "rows", len(records))
	return buf.Bytes(), nil
}

func percentage(record *models.TestResult) float64 {
	if record.TotalQuestions == 0 {
		return 0
	}
	return float64(record.Score) / float64(record.TotalQuestions) * 100
}
