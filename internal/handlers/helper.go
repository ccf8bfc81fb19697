package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
			Code:    CodeValidation,
		})
		return ""
	}
	return idStr
}

// ParseSubjectParam reads the :subject path parameter, answering 400 for an
// unknown code.
func ParseSubjectParam(c *gin.Context) (models.SubjectCode, bool) {
	subject, ok := models.ParseSubjectCode(c.Param("subject"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unknown subject",
			Details: c.Param("subject"),
			Code:    CodeValidation,
		})
		return "", false
	}
	return subject, true
}
