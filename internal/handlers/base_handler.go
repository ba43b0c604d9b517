package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashquiz-service/internal/engine"
	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/services"
	"github.com/SAP-F-2025/flashquiz-service/internal/utils"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

type ErrorResponse = models.ErrorResponse
type SuccessResponse = models.SuccessResponse

const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeNoBackup      = "NO_BACKUP"
	CodeFinished      = "SESSION_FINISHED"
	CodeInternalError = "INTERNAL_ERROR"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming call with the request scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, message string, args ...any) {
	utils.GetLogger(c, h.logger).Info(message, args...)
}

func (h *BaseHandler) respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	})
}

func (h *BaseHandler) badRequest(c *gin.Context, message string, err error) {
	var details interface{}
	if err != nil {
		details = err.Error()
	}
	h.respondError(c, http.StatusBadRequest, CodeBadRequest, message, details)
}

// bindJSON decodes the body into req and validates it. It responds and
// reports false on failure.
func (h *BaseHandler) bindJSON(c *gin.Context, v *validator.Validator, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return false
	}
	if v == nil {
		return true
	}
	if err := v.Validate(req); err != nil {
		h.handleServiceError(c, err)
		return false
	}
	return true
}

// handleServiceError maps service and engine errors to HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	if ve, ok := validator.AsValidationErrors(err); ok {
		resp := ErrorResponse{
			Error:     http.StatusText(http.StatusBadRequest),
			Message:   ve.Error(),
			Code:      string(engine.KindValidation),
			Timestamp: time.Now().UTC(),
			Path:      c.Request.URL.Path,
		}
		for _, fe := range ve {
			resp.ValidationErrors = append(resp.ValidationErrors, models.ValidationErrorResponse{
				Field:   fe.Field,
				Message: fe.Message,
				Value:   valueString(fe.Value),
				Code:    fe.Rule,
			})
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrNoResults):
		h.respondError(c, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrNoBackup):
		h.respondError(c, http.StatusNotFound, CodeNoBackup, err.Error(), nil)
	case errors.Is(err, services.ErrSessionFinished):
		h.respondError(c, http.StatusBadRequest, CodeFinished, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidDocumentName):
		h.respondError(c, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
	case errors.Is(err, engine.ErrValidation):
		h.respondError(c, http.StatusBadRequest, string(engine.KindValidation), err.Error(), nil)
	case errors.Is(err, engine.ErrDataIntegrity):
		h.respondError(c, http.StatusConflict, string(engine.KindDataIntegrity), err.Error(), nil)
	case errors.Is(err, engine.ErrQuizEngine):
		utils.GetLogger(c, h.logger).Error("Quiz engine failure", "error", err)
		h.respondError(c, http.StatusInternalServerError, string(engine.KindQuizEngine), "Quiz engine error", err.Error())
	default:
		utils.GetLogger(c, h.logger).Error("Unhandled service error", "error", err)
		h.respondError(c, http.StatusInternalServerError, CodeInternalError, "Internal server error", nil)
	}
}

func (h *BaseHandler) sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// exportFilename builds a download name like "leaderboard-capitals-20250301.xlsx".
func exportFilename(kind, name string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s.xlsx", kind, name, at.Format("20060102"))
}

func valueString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func timestamp() time.Time {
	return time.Now().UTC()
}
