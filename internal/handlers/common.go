package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/gradequest-service/internal/services"
	"github.com/SAP-F-2025/gradequest-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	CodeValidation       = "VALIDATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeBusinessRule     = "BUSINESS_RULE"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) requestFields(c *gin.Context, additionalFields []interface{}) []interface{} {
	fields := []interface{}{
		"request_id", c.GetString(requestIDKey),
		"actor", actorOf(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	return append(fields, additionalFields...)
}

// LogRequest logs an incoming request with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Debug(message, h.requestFields(c, additionalFields)...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.logger.LogError(err, message, h.requestFields(c, additionalFields)...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Warn(message, h.requestFields(c, additionalFields)...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, code, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
		Code:    code,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError && err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.AbortWithStatusJSON(statusCode, errorResp)
}

// RespondBindError reports a malformed JSON body.
func (h *BaseHandler) RespondBindError(c *gin.Context, err error) {
	h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Invalid request payload", err, err.Error())
}

// handleServiceError maps service errors onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Validation failed", err, validationErrors)
		return
	}
	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Validation failed", err,
			services.ValidationErrors{*validationError})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, CodeBusinessRule, businessRuleError.Message, err,
			services.FormatError(err))
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, CodeForbidden, "Access denied", err,
			services.FormatError(err))
		return
	}

	switch {
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, err.Error(), err, services.FormatError(err))
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error(), err)
	case services.IsForbidden(err):
		h.RespondWithError(c, http.StatusForbidden, CodeForbidden, err.Error(), err)
	case errors.Is(err, services.ErrStudentNotFound):
		h.RespondWithError(c, http.StatusNotFound, CodeNotFound, "Student not found", err)
	case errors.Is(err, services.ErrSubjectNotEnrolled):
		h.RespondWithError(c, http.StatusNotFound, CodeNotFound, "Student is not enrolled in this subject", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, CodeNotFound, "Resource not found", err)
	case services.IsTransport(err):
		h.RespondWithError(c, http.StatusBadGateway, CodeStoreUnavailable,
			"Gradebook store unavailable, nothing was changed; please retry", err, services.FormatError(err))
	default:
		h.RespondWithError(c, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}
