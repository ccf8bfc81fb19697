package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/gradequest-service/internal/errors"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"github.com/SAP-F-2025/gradequest-service/internal/rewards"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")

	// Gradebook errors
	ErrStudentNotFound    = errors.New("student not found")
	ErrSubjectNotEnrolled = errors.New("student is not enrolled in subject")
	ErrInvalidSubject     = errors.New("unknown subject code")
	ErrInvalidField       = errors.New("invalid score field")

	// ErrStoreUnavailable marks a transport failure talking to the gradebook
	// store. Nothing was changed locally; the caller may retry or refresh.
	ErrStoreUnavailable = errors.New("gradebook store unavailable")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired session token")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	Actor      string `json:"actor"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s cannot %s %s %s - %s",
		pe.Actor, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(actor, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		Actor:      actor,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrSubjectNotEnrolled)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken)
}

func IsForbidden(err error) bool {
	var pe *PermissionError
	return errors.Is(err, ErrForbidden) || errors.As(err, &pe)
}

func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInvalidSubject) ||
		errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrBadRequest) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

func IsTransport(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// storeError translates repository and reconciler errors. notFound is the
// service error a missing row maps to.
func storeError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	switch {
	case repositories.IsNotFoundError(err):
		return notFound
	case errors.Is(err, repositories.ErrInvalidField):
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	case errors.Is(err, rewards.ErrInvalidAdjustment):
		return NewValidationError("balance", err.Error(), nil)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
