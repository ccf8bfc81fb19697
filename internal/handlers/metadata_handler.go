package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/services"
	"github.com/SAP-F-2025/gradequest-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type MetadataHandler struct {
	BaseHandler
	metadataService services.MetadataService
}

func NewMetadataHandler(metadataService services.MetadataService, logger utils.Logger) *MetadataHandler {
	return &MetadataHandler{
		BaseHandler:     NewBaseHandler(logger),
		metadataService: metadataService,
	}
}

// GetMetadata returns assignment names and links for a subject
// @Router /subjects/{subject}/metadata [get]
func (h *MetadataHandler) GetMetadata(c *gin.Context) {
	subject, ok := ParseSubjectParam(c)
	if !ok {
		return
	}

	view, err := h.metadataService.Get(c.Request.Context(), subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateMetadata replaces a subject's assignment metadata
// @Router /subjects/{subject}/metadata [put]
func (h *MetadataHandler) UpdateMetadata(c *gin.Context) {
	subject, ok := ParseSubjectParam(c)
	if !ok {
		return
	}

	var meta models.SubjectMetadata
	if err := c.ShouldBindJSON(&meta); err != nil {
		h.RespondBindError(c, err)
		return
	}

	view, err := h.metadataService.Update(c.Request.Context(), subject, meta, actorOf(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
