package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/gradequest-service/internal/services"
	"github.com/SAP-F-2025/gradequest-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportSubject downloads a subject's board as xlsx, or csv with format=csv
// @Param format query string false "xlsx (default) or csv"
// @Router /subjects/{subject}/export [get]
func (h *ExportHandler) ExportSubject(c *gin.Context) {
	subject, ok := ParseSubjectParam(c)
	if !ok {
		return
	}

	var (
		data        []byte
		err         error
		contentType string
		ext         string
	)
	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		data, err = h.exportService.ExportSubjectCSV(c.Request.Context(), subject, actorOf(c))
		contentType, ext = contentTypeCSV, "csv"
	case "xlsx":
		data, err = h.exportService.ExportSubjectExcel(c.Request.Context(), subject, actorOf(c))
		contentType, ext = contentTypeXLSX, "xlsx"
	default:
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "format must be xlsx or csv", nil)
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", subject, time.Now().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
