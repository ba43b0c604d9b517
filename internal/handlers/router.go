package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashquiz-service/internal/services"
	"github.com/SAP-F-2025/flashquiz-service/internal/utils"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

type HandlerManager struct {
	serviceManager  services.ServiceManager
	documentHandler *DocumentHandler
	sessionHandler  *SessionHandler
	statsHandler    *StatsHandler
	logger          utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		serviceManager:  serviceManager,
		documentHandler: NewDocumentHandler(serviceManager.Document(), validator, logger),
		sessionHandler:  NewSessionHandler(serviceManager.Session(), serviceManager.Export(), validator, logger),
		statsHandler: NewStatsHandler(
			serviceManager.Stats(), serviceManager.Session(), serviceManager.Export(), validator, logger),
		logger: logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		documents := v1.Group("/documents")
		{
			documents.GET("", hm.documentHandler.ListDocuments)
			documents.GET("/:name", hm.documentHandler.GetDocument)
			documents.PUT("/:name", hm.documentHandler.SaveDocument)
			documents.POST("/:name/restore", hm.documentHandler.RestoreDocument)

			// Stats over the document's session history
			documents.GET("/:name/leaderboard", hm.statsHandler.GetLeaderboard)
			documents.GET("/:name/leaderboard/export", hm.statsHandler.ExportLeaderboard)
			documents.GET("/:name/users/:username/stats", hm.statsHandler.GetUserStats)
			documents.GET("/:name/users/:username/compare", hm.statsHandler.ComparePerformance)
			documents.GET("/:name/users/:username/summary", hm.statsHandler.GetSummary)
			documents.GET("/:name/users/:username/chart", hm.statsHandler.GetChartData)
			documents.GET("/:name/users/:username/history", hm.statsHandler.GetHistory)
			documents.POST("/:name/stats/cleanup", hm.statsHandler.CleanupStats)
			documents.POST("/:name/stats/restore", hm.statsHandler.RestoreStats)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.POST("/restore", hm.sessionHandler.RestoreSession)
			sessions.DELETE("/:id", hm.sessionHandler.CloseSession)

			sessions.GET("/:id/item", hm.sessionHandler.GetCurrentItem)
			sessions.POST("/:id/answer", hm.sessionHandler.AnswerQuestion)
			sessions.POST("/:id/skip", hm.sessionHandler.Skip)
			sessions.POST("/:id/next", hm.sessionHandler.Next)
			sessions.POST("/:id/prev", hm.sessionHandler.Prev)
			sessions.POST("/:id/goto", hm.sessionHandler.GoTo)
			sessions.POST("/:id/flip", hm.sessionHandler.Flip)
			sessions.POST("/:id/pause", hm.sessionHandler.Pause)
			sessions.POST("/:id/resume", hm.sessionHandler.Resume)
			sessions.POST("/:id/finish", hm.sessionHandler.Finish)
			sessions.POST("/:id/restart", hm.sessionHandler.Restart)

			sessions.GET("/:id/results", hm.sessionHandler.GetResults)
			sessions.GET("/:id/results/export", hm.sessionHandler.ExportResults)
			sessions.GET("/:id/status", hm.sessionHandler.GetStatus)
			sessions.GET("/:id/snapshot", hm.sessionHandler.GetSnapshot)
		}
	}

	router.GET("/health", hm.health)
}

func (hm *HandlerManager) health(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"service":   "flashquiz-service",
			"error":     err.Error(),
			"timestamp": timestamp(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "flashquiz-service",
		"timestamp": timestamp(),
	})
}
