package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/prepdeck/examprep-service/internal/identity"
	"github.com/prepdeck/examprep-service/internal/services"
	"github.com/prepdeck/examprep-service/internal/utils"
	"github.com/prepdeck/examprep-service/internal/validator"
)

type HandlerManager struct {
	testHandler    *TestHandler
	attemptHandler *AttemptHandler
	resultHandler  *ResultHandler

	gateway identity.Gateway
	logger  utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	gateway identity.Gateway,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		testHandler:    NewTestHandler(serviceManager.Loader(), logger),
		attemptHandler: NewAttemptHandler(serviceManager.Attempt(), validator, logger),
		resultHandler:  NewResultHandler(serviceManager.Result(), serviceManager.Export(), logger),
		gateway:        gateway,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "examprep-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.gateway, hm.logger))
	{
		// Test catalog
		tests := v1.Group("/tests")
		{
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:id", hm.testHandler.GetTest)
		}

		// Live attempts
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.DELETE("/:id", hm.attemptHandler.AbandonAttempt)

			attempts.POST("/:id/answer", hm.attemptHandler.SelectAnswer)
			attempts.DELETE("/:id/answer", hm.attemptHandler.ClearAnswer)
			attempts.POST("/:id/mark", hm.attemptHandler.ToggleReviewMark)
			attempts.POST("/:id/next", hm.attemptHandler.SaveAndNext)
			attempts.POST("/:id/jump", hm.attemptHandler.JumpTo)

			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/:id/time-remaining", hm.attemptHandler.GetTimeRemaining)
		}

		// Scored results
		results := v1.Group("/results")
		{
			results.POST("/claim/:attempt_id", hm.resultHandler.ClaimResult)
			results.GET("", hm.resultHandler.GetHistory)
			results.GET("/export/csv", hm.resultHandler.ExportHistoryCSV)
			results.GET("/export/excel", hm.resultHandler.ExportHistoryExcel)
			results.GET("/:id", hm.resultHandler.GetResult)
		}
	}
}
