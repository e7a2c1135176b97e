package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/examprep-service/internal/services"
	"github.com/prepdeck/examprep-service/internal/utils"
	"github.com/prepdeck/examprep-service/internal/validator"
)

// AttemptHandler drives a live attempt: answering, navigation, and
// submission. Every route past /start takes the attempt ID and enforces
// ownership in the service layer.
type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	validator      *validator.Validator
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	validator *validator.Validator,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		validator:      validator,
	}
}

// StartAttemptRequest starts a timed attempt against a test.
type StartAttemptRequest struct {
	TestID string `json:"test_id" validate:"required"`
}

// SelectAnswerRequest picks an option for the current question.
type SelectAnswerRequest struct {
	Option int `json:"option" validate:"option_index"`
}

// JumpRequest moves the cursor straight to a question.
type JumpRequest struct {
	Index int `json:"index" validate:"min=0"`
}

// StartAttempt begins a new timed attempt
// @Summary Start attempt
// @Description Loads the test and starts its countdown. Anonymous users may
// start attempts; their results are not persisted.
// @Tags attempts
// @Accept json
// @Produce json
// @Param request body StartAttemptRequest true "Test to attempt"
// @Success 201 {object} attempt.View
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /attempts/start [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Starting attempt", "test_id", req.TestID)

	view, err := h.attemptService.Start(c.Request.Context(), req.TestID, currentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetAttempt returns the current attempt snapshot
// @Summary Get attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} attempt.View
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.attemptService.Get(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SelectAnswer records an option for the current question
// @Summary Select answer
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param request body SelectAnswerRequest true "Chosen option"
// @Success 200 {object} attempt.View
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/answer [post]
func (h *AttemptHandler) SelectAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req SelectAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	view, err := h.attemptService.SelectAnswer(c.Request.Context(), id, currentUserID(c), req.Option)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearAnswer removes the current question's answer
// @Summary Clear answer
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} attempt.View
// @Router /attempts/{id}/answer [delete]
func (h *AttemptHandler) ClearAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.attemptService.ClearAnswer(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ToggleReviewMark flips the review flag and advances
// @Summary Mark for review
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} attempt.View
// @Router /attempts/{id}/mark [post]
func (h *AttemptHandler) ToggleReviewMark(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.attemptService.ToggleReviewMark(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SaveAndNext advances to the next question
// @Summary Save and next
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} attempt.View
// @Router /attempts/{id}/next [post]
func (h *AttemptHandler) SaveAndNext(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.attemptService.SaveAndNext(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// JumpTo moves the cursor to a palette position
// @Summary Jump to question
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param request body JumpRequest true "Target index"
// @Success 200 {object} attempt.View
// @Router /attempts/{id}/jump [post]
func (h *AttemptHandler) JumpTo(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	view, err := h.attemptService.JumpTo(c.Request.Context(), id, currentUserID(c), req.Index)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitAttempt finishes the attempt manually
// @Summary Submit attempt
// @Description Scores the attempt and stops its countdown. Repeating the
// call returns the same result without re-running any side effects.
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} attempt.Result
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Submitting attempt", "attempt_id", id)

	result, err := h.attemptService.Submit(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AbandonAttempt discards an in-progress attempt
// @Summary Abandon attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id} [delete]
func (h *AttemptHandler) AbandonAttempt(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.attemptService.Abandon(c.Request.Context(), id, currentUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Attempt abandoned"})
}

// GetTimeRemaining reports the countdown for an attempt
// @Summary Time remaining
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} map[string]int
// @Router /attempts/{id}/time-remaining [get]
func (h *AttemptHandler) GetTimeRemaining(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.attemptService.Get(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"time_remaining": view.TimeRemaining,
		"submitted":      view.Submitted,
	})
}
