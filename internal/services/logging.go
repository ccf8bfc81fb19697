package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"
)

// LogLevel represents different log levels for service operations
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

func (l *ServiceLogger) Logger() *slog.Logger {
	return l.logger
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation, actor, resourceID, resourceType string, duration time.Duration, err error) {
	logLevel := LogLevelInfo
	status := "success"

	if err != nil {
		logLevel = LogLevelError
		status = "error"

		switch {
		case IsValidation(err) || IsBusinessRule(err):
			logLevel = LogLevelWarn
			status = "validation_error"
		case IsUnauthorized(err) || IsForbidden(err):
			logLevel = LogLevelWarn
			status = "unauthorized"
		case IsNotFound(err):
			logLevel = LogLevelInfo
			status = "not_found"
		case IsTransport(err):
			status = "store_unavailable"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("actor", actor),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErr ValidationErrors
		var businessErr *BusinessRuleError
		var permErr *PermissionError
		switch {
		case errors.As(err, &validationErr):
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		case errors.As(err, &businessErr):
			attrs = append(attrs, slog.String("business_rule", businessErr.Rule))
		case errors.As(err, &permErr):
			attrs = append(attrs, slog.String("permission_action", permErr.Action))
		}
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	if logLevel == LogLevelError {
		if pc, file, line, ok := runtime.Caller(2); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				attrs = append(attrs,
					slog.String("caller_func", fn.Name()),
					slog.String("caller_file", file),
					slog.Int("caller_line", line),
				)
			}
		}
	}

	message := fmt.Sprintf("%s operation %s", operation, status)

	switch logLevel {
	case LogLevelDebug:
		if l.config.EnableDebug {
			l.logger.LogAttrs(ctx, slog.LevelDebug, message, attrs...)
		}
	case LogLevelInfo:
		l.logger.LogAttrs(ctx, slog.LevelInfo, message, attrs...)
	case LogLevelWarn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, message, attrs...)
	case LogLevelError:
		l.logger.LogAttrs(ctx, slog.LevelError, message, attrs...)
	}
}

func (l *ServiceLogger) LogValidationError(ctx context.Context, operation, actor string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("actor", actor),
		slog.Int("error_count", len(validationErrors)),
	}

	for i, err := range validationErrors {
		if i < 5 {
			attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
				slog.String("field", err.Field),
				slog.String("message", err.Message),
				slog.Any("value", err.Value),
			))
		}
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}

func (l *ServiceLogger) LogBusinessRuleViolation(ctx context.Context, operation, actor string, rule *BusinessRuleError) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("actor", actor),
		slog.String("rule", rule.Rule),
		slog.String("message", rule.Message),
	}

	for key, value := range rule.Context {
		attrs = append(attrs, slog.Any(fmt.Sprintf("context_%s", key), value))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Business rule violation", attrs...)
}

func (l *ServiceLogger) LogPermissionDenied(ctx context.Context, operation string, permError *PermissionError) {
	l.logger.LogAttrs(ctx, slog.LevelWarn, "Permission denied",
		slog.String("operation", operation),
		slog.String("actor", permError.Actor),
		slog.String("resource_id", permError.ResourceID),
		slog.String("resource_type", permError.Resource),
		slog.String("action", permError.Action),
		slog.String("reason", permError.Reason),
	)
}

// ===== SECURITY LOGGING =====

func (l *ServiceLogger) LogSecurityEvent(ctx context.Context, event SecurityEvent) {
	logLevel := slog.LevelWarn
	if event.Severity == SecuritySeverityHigh {
		logLevel = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("security_event", string(event.Type)),
		slog.String("severity", string(event.Severity)),
		slog.String("actor", event.Actor),
		slog.String("description", event.Description),
		slog.Time("timestamp", event.Timestamp),
	}

	for key, value := range event.Metadata {
		attrs = append(attrs, slog.Any(fmt.Sprintf("meta_%s", key), SanitizeForLogging(value)))
	}

	l.logger.LogAttrs(ctx, logLevel, fmt.Sprintf("Security: %s", event.Description), attrs...)
}

type SecurityEventType string
type SecuritySeverity string

const (
	SecurityEventUnauthorizedAccess SecurityEventType = "unauthorized_access"
	SecurityEventInvalidToken       SecurityEventType = "invalid_token"
	SecurityEventLoginFailed        SecurityEventType = "login_failed"

	SecuritySeverityLow    SecuritySeverity = "low"
	SecuritySeverityMedium SecuritySeverity = "medium"
	SecuritySeverityHigh   SecuritySeverity = "high"
)

type SecurityEvent struct {
	Type        SecurityEventType      `json:"type"`
	Severity    SecuritySeverity       `json:"severity"`
	Actor       string                 `json:"actor"`
	Description string                 `json:"description"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ===== CONTEXTUAL LOGGER =====

type contextKey string

// RequestIDKey carries the X-Request-ID header value through contexts.
const RequestIDKey contextKey = "request_id"

// ContextualLogger wraps operations with automatic logging
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	actor     string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, actor string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		actor:     actor,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID, resourceType string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.actor, resourceID, resourceType, time.Since(cl.startTime), err)

	if err == nil {
		return
	}
	var validationErrors ValidationErrors
	var businessErr *BusinessRuleError
	var permErr *PermissionError
	switch {
	case errors.As(err, &validationErrors):
		cl.logger.LogValidationError(cl.ctx, cl.operation, cl.actor, validationErrors)
	case errors.As(err, &businessErr):
		cl.logger.LogBusinessRuleViolation(cl.ctx, cl.operation, cl.actor, businessErr)
	case errors.As(err, &permErr):
		cl.logger.LogPermissionDenied(cl.ctx, cl.operation, permErr)
	}
}

func (cl *ContextualLogger) LogSecurity(eventType SecurityEventType, severity SecuritySeverity, description string, metadata map[string]interface{}) {
	cl.logger.LogSecurityEvent(cl.ctx, SecurityEvent{
		Type:        eventType,
		Severity:    severity,
		Actor:       cl.actor,
		Description: description,
		Timestamp:   time.Now(),
		Metadata:    metadata,
	})
}

// ===== ERROR FORMATTING HELPERS =====

// FormatError classifies err into a JSON-friendly map used as error response
// details.
func FormatError(err error) map[string]interface{} {
	if err == nil {
		return nil
	}

	result := map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}

	var validationErrs ValidationErrors
	var validationErr *ValidationError
	var businessErr *BusinessRuleError
	var permErr *PermissionError
	switch {
	case errors.As(err, &validationErrs):
		result["type"] = "validation"
		result["count"] = len(validationErrs)

		fields := make([]map[string]interface{}, len(validationErrs))
		for i, validationErr := range validationErrs {
			fields[i] = map[string]interface{}{
				"field":   validationErr.Field,
				"message": validationErr.Message,
				"value":   validationErr.Value,
			}
		}
		result["errors"] = fields

	case errors.As(err, &validationErr):
		result["type"] = "validation"
		result["count"] = 1
		result["errors"] = []map[string]interface{}{{
			"field":   validationErr.Field,
			"message": validationErr.Message,
			"value":   validationErr.Value,
		}}

	case errors.As(err, &businessErr):
		result["type"] = "business_rule"
		result["rule"] = businessErr.Rule
		result["context"] = businessErr.Context

	case errors.As(err, &permErr):
		result["type"] = "permission"
		result["actor"] = permErr.Actor
		result["resource_id"] = permErr.ResourceID
		result["resource"] = permErr.Resource
		result["action"] = permErr.Action
		result["reason"] = permErr.Reason

	case IsNotFound(err):
		result["type"] = "not_found"
	case IsUnauthorized(err):
		result["type"] = "unauthorized"
	case IsValidation(err):
		result["type"] = "validation"
	case IsTransport(err):
		result["type"] = "store_unavailable"
	}

	return result
}

// SanitizeForLogging removes sensitive information from data before logging
func SanitizeForLogging(data interface{}) interface{} {
	if data == nil {
		return nil
	}

	switch v := data.(type) {
	case string:
		return sanitizeString(v)
	case map[string]interface{}:
		return sanitizeMap(v)
	case []interface{}:
		return sanitizeSlice(v)
	default:
		return data
	}
}

func sanitizeString(s string) string {
	sensitiveFields := []string{"password", "token", "key", "secret", "auth"}
	lowerS := strings.ToLower(s)

	for _, field := range sensitiveFields {
		if strings.Contains(lowerS, field) {
			return "[REDACTED]"
		}
	}

	return s
}

func sanitizeMap(m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	sensitiveKeys := []string{"password", "token", "key", "secret", "auth", "credential"}

	for k, v := range m {
		lowerK := strings.ToLower(k)
		sensitive := false

		for _, sensitiveKey := range sensitiveKeys {
			if strings.Contains(lowerK, sensitiveKey) {
				sensitive = true
				break
			}
		}

		if sensitive {
			result[k] = "[REDACTED]"
		} else {
			result[k] = SanitizeForLogging(v)
		}
	}

	return result
}

func sanitizeSlice(s []interface{}) []interface{} {
	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = SanitizeForLogging(v)
	}
	return result
}
