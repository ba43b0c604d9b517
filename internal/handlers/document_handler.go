package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashquiz-service/internal/services"
	"github.com/SAP-F-2025/flashquiz-service/internal/utils"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

type DocumentHandler struct {
	BaseHandler
	service   services.DocumentService
	validator *validator.Validator
}

func NewDocumentHandler(service services.DocumentService, validator *validator.Validator, logger utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		validator:   validator,
	}
}

// ListDocuments lists stored quiz documents
// @Summary List documents
// @Tags documents
// @Produce json
// @Success 200 {array} models.DocumentInfo
// @Failure 500 {object} ErrorResponse
// @Router /documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GetDocument returns a stored quiz document with its history
// @Summary Get document
// @Tags documents
// @Produce json
// @Param name path string true "Document name"
// @Success 200 {object} models.QuizDocument
// @Failure 404 {object} ErrorResponse
// @Router /documents/{name} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// SaveDocument creates or replaces a quiz document
// @Summary Save document
// @Tags documents
// @Accept json
// @Produce json
// @Param name path string true "Document name"
// @Param document body services.SaveDocumentRequest true "Document"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /documents/{name} [put]
func (h *DocumentHandler) SaveDocument(c *gin.Context) {
	name := c.Param("name")
	h.LogRequest(c, "Saving document", "document", name)

	var req services.SaveDocumentRequest
	if !h.bindJSON(c, h.validator, &req) {
		return
	}

	if err := h.service.Save(c.Request.Context(), name, req.Document); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Document saved", Data: gin.H{"name": name}, Timestamp: timestamp()})
}

// RestoreDocument puts back the document as it was before the last save
// @Summary Restore document backup
// @Tags documents
// @Produce json
// @Param name path string true "Document name"
// @Success 200 {object} models.QuizDocument
// @Failure 404 {object} ErrorResponse
// @Router /documents/{name}/restore [post]
func (h *DocumentHandler) RestoreDocument(c *gin.Context) {
	name := c.Param("name")
	h.LogRequest(c, "Restoring document", "document", name)

	doc, err := h.service.RestoreBackup(c.Request.Context(), name)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
