package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashquiz-service/internal/services"
	"github.com/SAP-F-2025/flashquiz-service/internal/utils"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	exportService  services.ExportService
	validator      *validator.Validator
}

func NewSessionHandler(
	sessionService services.SessionService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		exportService:  exportService,
		validator:      validator,
	}
}

// StartSession starts a session over a stored or inline quiz document
// @Summary Start session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Session data"
// @Success 201 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if !h.bindJSON(c, nil, &req) {
		return
	}
	h.LogRequest(c, "Starting session", "document", req.DocumentName, "username", req.Username)

	resp, err := h.sessionService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RestoreSession rebuilds a session from a snapshot
// @Summary Restore session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.RestoreSessionRequest true "Snapshot data"
// @Success 201 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Router /sessions/restore [post]
func (h *SessionHandler) RestoreSession(c *gin.Context) {
	var req services.RestoreSessionRequest
	if !h.bindJSON(c, nil, &req) {
		return
	}
	h.LogRequest(c, "Restoring session", "document", req.DocumentName)

	resp, err := h.sessionService.Restore(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CloseSession drops a session and its snapshot
// @Summary Close session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) CloseSession(c *gin.Context) {
	if err := h.sessionService.Close(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCurrentItem returns the flashcard or question to show
// @Summary Current item
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.ItemView
// @Router /sessions/{id}/item [get]
func (h *SessionHandler) GetCurrentItem(c *gin.Context) {
	item, err := h.sessionService.CurrentItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// AnswerQuestion records the selected answer for the current question
// @Summary Answer question
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param answer body services.AnswerRequest true "Selected answer"
// @Success 200 {object} services.AnswerResponse
// @Failure 400 {object} ErrorResponse
// @Router /sessions/{id}/answer [post]
func (h *SessionHandler) AnswerQuestion(c *gin.Context) {
	var req services.AnswerRequest
	if !h.bindJSON(c, h.validator, &req) {
		return
	}

	resp, err := h.sessionService.Answer(c.Request.Context(), c.Param("id"), req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GoTo jumps to an item of the active collection
// @Summary Go to item
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param index body services.GoToRequest true "Target index"
// @Success 200 {object} services.NavigationResponse
// @Failure 400 {object} ErrorResponse
// @Router /sessions/{id}/goto [post]
func (h *SessionHandler) GoTo(c *gin.Context) {
	var req services.GoToRequest
	if !h.bindJSON(c, h.validator, &req) {
		return
	}

	resp, err := h.sessionService.GoTo(c.Request.Context(), c.Param("id"), *req.Index)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) Skip(c *gin.Context) {
	h.respond(c, func(id string) (interface{}, error) {
		return h.sessionService.Skip(c.Request.Context(), id)
	})
}

func (h *SessionHandler) Next(c *gin.Context) {
	h.respond(c, func(id string) (interface{}, error) {
		return h.sessionService.Next(c.Request.Context(), id)
	})
}

func (h *SessionHandler) Prev(c *gin.Context) {
	h.respond(c, func(id string) (interface{}, error) {
		return h.sessionService.Prev(c.Request.Context(), id)
	})
}

func (h *SessionHandler) Flip(c *gin.Context) {
	h.respond(c, func(id string) (interface{}, error) {
		return h.sessionService.Flip(c.Request.Context(), id)
	})
}

func (h *SessionHandler) Pause(c *gin.Context) {
	h.respond(c, func(id string) (interface{}, error) {
		return h.sessionService.Pause(c.Request.Context(), id)
	})
}

func (h *SessionHandler) Resume(c *gin.Context) {
	h.respond(c, func(id string) (interface{}, error) {
		return h.sessionService.Resume(c.Request.Context(), id)
	})
}

// Finish ends the session and records its result
// @Summary Finish session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.FinishResponse
// @Router /sessions/{id}/finish [post]
func (h *SessionHandler) Finish(c *gin.Context) {
	h.LogRequest(c, "Finishing session", "session_id", c.Param("id"))
	h.respond(c, func(id string) (interface{}, error) {
		return h.sessionService.Finish(c.Request.Context(), id)
	})
}

func (h *SessionHandler) Restart(c *gin.Context) {
	h.respond(c, func(id string) (interface{}, error) {
		return h.sessionService.Restart(c.Request.Context(), id)
	})
}

func (h *SessionHandler) GetResults(c *gin.Context) {
	h.respond(c, func(id string) (interface{}, error) {
		return h.sessionService.Results(c.Request.Context(), id)
	})
}

func (h *SessionHandler) GetStatus(c *gin.Context) {
	h.respond(c, func(id string) (interface{}, error) {
		return h.sessionService.Status(c.Request.Context(), id)
	})
}

// GetSnapshot returns the serialized session
// @Summary Session snapshot
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]string
// @Router /sessions/{id}/snapshot [get]
func (h *SessionHandler) GetSnapshot(c *gin.Context) {
	data, err := h.sessionService.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": string(data)})
}

// ExportResults downloads the session results as an XLSX workbook
// @Summary Export results
// @Tags sessions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Router /sessions/{id}/results/export [get]
func (h *SessionHandler) ExportResults(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.sessionService.Results(ctx, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	data, err := h.exportService.ExportResult(ctx, result)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.sendWorkbook(c, exportFilename("results", result.Username, result.Date), data)
}

func (h *SessionHandler) respond(c *gin.Context, call func(id string) (interface{}, error)) {
	resp, err := call(c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
