package validator

import (
	"fmt"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
)

// BusinessValidator checks rules that span fields or need domain types.
type BusinessValidator struct{}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

func (b *BusinessValidator) Validate(s interface{}) ValidationErrors {
	switch v := s.(type) {
	case models.SubjectMetadata:
		return b.ValidateMetadata(v)
	case *models.SubjectMetadata:
		return b.ValidateMetadata(*v)
	case models.FieldUpdate:
		return b.ValidateFieldUpdate(v)
	}
	return nil
}

// ValidateMetadata requires one entry per assignment slot.
func (b *BusinessValidator) ValidateMetadata(meta models.SubjectMetadata) ValidationErrors {
	var errs ValidationErrors
	if len(meta.Assignments) != models.AssignmentCount {
		errs = append(errs, ValidationError{
			Field:   "assignments",
			Message: fmt.Sprintf("must list exactly %d assignments", models.AssignmentCount),
			Value:   len(meta.Assignments),
			Rule:    "assignment_count",
		})
	}
	return errs
}

func (b *BusinessValidator) ValidateFieldUpdate(update models.FieldUpdate) ValidationErrors {
	var errs ValidationErrors
	if update.Field == models.FieldAssignments && (update.Index < 0 || update.Index >= models.AssignmentCount) {
		errs = append(errs, ValidationError{
			Field:   "index",
			Message: fmt.Sprintf("must be between 0 and %d", models.AssignmentCount-1),
			Value:   update.Index,
			Rule:    "assignment_index",
		})
	}
	if update.Field == models.FieldStatus && !update.Status.IsValid() {
		errs = append(errs, ValidationError{
			Field:   "status",
			Message: "must be Normal, Retake or NoAssessment",
			Value:   update.Status,
			Rule:    "override_status",
		})
	}
	return errs
}
