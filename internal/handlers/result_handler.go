package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/examprep-service/internal/repositories"
	"github.com/prepdeck/examprep-service/internal/services"
	"github.com/prepdeck/examprep-service/internal/utils"
)

// ResultHandler serves scored results: the one-shot claim right after
// submission, the durable history, and file exports.
type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
	exportService services.ExportService
}

func NewResultHandler(
	resultService services.ResultService,
	exportService services.ExportService,
	logger utils.Logger,
) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
		exportService: exportService,
	}
}

// ClaimResult consumes the staged result for an attempt
// @Summary Claim result
// @Description Takes the staged result for a just-submitted attempt. The
// claim succeeds at most once; afterwards persisted results must be read
// from history.
// @Tags results
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} services.ResultReview
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/claim/{attempt_id} [post]
func (h *ResultHandler) ClaimResult(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "attempt_id")
	if attemptID == "" {
		return
	}

	review, err := h.resultService.TakeHandoff(c.Request.Context(), attemptID, currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// GetResult returns a persisted result with its review
// @Summary Get result
// @Tags results
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} services.ResultReview
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/{id} [get]
func (h *ResultHandler) GetResult(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	user := requireUser(c)
	if user == nil {
		return
	}

	review, err := h.resultService.GetByID(c.Request.Context(), id, user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// GetHistory lists the signed-in user's results, newest first
// @Summary Result history
// @Tags results
// @Produce json
// @Param test_id query string false "Filter by test"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Router /results [get]
func (h *ResultHandler) GetHistory(c *gin.Context) {
	user := requireUser(c)
	if user == nil {
		return
	}

	filters := repositories.ResultFilters{
		Limit:  ParseIntQuery(c, "limit", 50),
		Offset: ParseIntQuery(c, "offset", 0),
	}
	if testID := c.Query("test_id"); testID != "" {
		filters.TestID = &testID
	}

	records, total, err := h.resultService.History(c.Request.Context(), user.ID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": records,
		"total":   total,
	})
}

// ExportHistoryCSV downloads the user's history as CSV
// @Summary Export history as CSV
// @Tags results
// @Produce text/csv
// @Success 200 {file} file
// @Failure 401 {object} ErrorResponse
// @Router /results/export/csv [get]
func (h *ResultHandler) ExportHistoryCSV(c *gin.Context) {
	user := requireUser(c)
	if user == nil {
		return
	}

	data, err := h.exportService.ExportResultsToCSV(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := "results_" + time.Now().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportHistoryExcel downloads the user's history as a workbook
// @Summary Export history as Excel
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 401 {object} ErrorResponse
// @Router /results/export/excel [get]
func (h *ResultHandler) ExportHistoryExcel(c *gin.Context) {
	user := requireUser(c)
	if user == nil {
		return
	}

	data, err := h.exportService.ExportResultsToExcel(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := "results_" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
