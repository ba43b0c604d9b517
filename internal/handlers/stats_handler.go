package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashquiz-service/internal/services"
	"github.com/SAP-F-2025/flashquiz-service/internal/utils"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

type StatsHandler struct {
	BaseHandler
	statsService   services.StatsService
	sessionService services.SessionService
	exportService  services.ExportService
	validator      *validator.Validator
}

func NewStatsHandler(
	statsService services.StatsService,
	sessionService services.SessionService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *StatsHandler {
	return &StatsHandler{
		BaseHandler:    NewBaseHandler(logger),
		statsService:   statsService,
		sessionService: sessionService,
		exportService:  exportService,
		validator:      validator,
	}
}

// GetLeaderboard returns the best result per user
// @Summary Leaderboard
// @Tags stats
// @Produce json
// @Param name path string true "Document name"
// @Success 200 {array} models.LeaderboardEntry
// @Router /documents/{name}/leaderboard [get]
func (h *StatsHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.statsService.Leaderboard(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ExportLeaderboard downloads the leaderboard as an XLSX workbook
// @Summary Export leaderboard
// @Tags stats
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param name path string true "Document name"
// @Success 200 {file} file
// @Router /documents/{name}/leaderboard/export [get]
func (h *StatsHandler) ExportLeaderboard(c *gin.Context) {
	name := c.Param("name")
	data, err := h.exportService.ExportLeaderboard(c.Request.Context(), name)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.sendWorkbook(c, exportFilename("leaderboard", name, time.Now()), data)
}

func (h *StatsHandler) GetUserStats(c *gin.Context) {
	resp, err := h.statsService.UserStats(c.Request.Context(), c.Param("name"), c.Param("username"))
	h.write(c, resp, err)
}

func (h *StatsHandler) ComparePerformance(c *gin.Context) {
	resp, err := h.statsService.Compare(c.Request.Context(), c.Param("name"), c.Param("username"))
	h.write(c, resp, err)
}

func (h *StatsHandler) GetSummary(c *gin.Context) {
	resp, err := h.statsService.Summary(c.Request.Context(), c.Param("name"), c.Param("username"))
	h.write(c, resp, err)
}

func (h *StatsHandler) GetChartData(c *gin.Context) {
	resp, err := h.statsService.Chart(c.Request.Context(), c.Param("name"), c.Param("username"))
	h.write(c, resp, err)
}

func (h *StatsHandler) GetHistory(c *gin.Context) {
	resp, err := h.sessionService.History(c.Request.Context(), c.Param("name"), c.Param("username"))
	h.write(c, resp, err)
}

// CleanupStats drops results older than max_age_days
// @Summary Clean up stats
// @Tags stats
// @Accept json
// @Produce json
// @Param name path string true "Document name"
// @Param cleanup body services.CleanupStatsRequest false "Retention"
// @Success 200 {object} services.StatsCleanupResponse
// @Router /documents/{name}/stats/cleanup [post]
func (h *StatsHandler) CleanupStats(c *gin.Context) {
	name := c.Param("name")
	h.LogRequest(c, "Cleaning up stats", "document", name)

	var req services.CleanupStatsRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, h.validator, &req) {
		return
	}

	resp, err := h.statsService.Cleanup(c.Request.Context(), name, req.MaxAgeDays)
	h.write(c, resp, err)
}

// RestoreStats puts back the history saved by the last cleanup
// @Summary Restore stats backup
// @Tags stats
// @Produce json
// @Param name path string true "Document name"
// @Success 200 {object} services.StatsCleanupResponse
// @Failure 404 {object} ErrorResponse
// @Router /documents/{name}/stats/restore [post]
func (h *StatsHandler) RestoreStats(c *gin.Context) {
	name := c.Param("name")
	h.LogRequest(c, "Restoring stats", "document", name)

	resp, err := h.statsService.RestoreBackup(c.Request.Context(), name)
	h.write(c, resp, err)
}

func (h *StatsHandler) write(c *gin.Context, resp interface{}, err error) {
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
