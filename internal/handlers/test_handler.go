package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/examprep-service/internal/models"
	"github.com/prepdeck/examprep-service/internal/repositories"
	"github.com/prepdeck/examprep-service/internal/services"
	"github.com/prepdeck/examprep-service/internal/utils"
)

// TestHandler serves the test catalog browsed before an attempt starts.
type TestHandler struct {
	BaseHandler
	loader services.TestLoader
}

func NewTestHandler(loader services.TestLoader, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		loader:      loader,
	}
}

// ListTests returns the published test catalog
// @Summary List tests
// @Description Lists published mock tests with optional search and paging
// @Tags tests
// @Produce json
// @Param search query string false "Title search"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SuccessResponse
// @Failure 500 {object} ErrorResponse
// @Router /tests [get]
func (h *TestHandler) ListTests(c *gin.Context) {
	published := models.TestStatusPublished
	filters := repositories.TestFilters{
		Status:    &published,
		Search:    c.Query("search"),
		Limit:     ParseIntQuery(c, "limit", 50),
		Offset:    ParseIntQuery(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	tests, total, err := h.loader.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tests": tests,
		"total": total,
	})
}

// GetTest returns a single test by ID
// @Summary Get test
// @Description Retrieves one test's metadata. Question content is only
// released through a started attempt.
// @Tags tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} models.Test
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	test, err := h.loader.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}
