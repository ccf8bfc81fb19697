package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct-tag validation with the gradebook business rules.
type Validator struct {
	structValidator   *validator.Validate
	businessValidator *BusinessValidator
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		businessValidator: NewBusinessValidator(),
	}
}

// Engine exposes the underlying validator so gin can share it.
func (v *Validator) Engine() *validator.Validate {
	return v.structValidator
}

func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

func (v *Validator) ValidateBusiness(s interface{}) ValidationErrors {
	return v.businessValidator.Validate(s)
}

// Validate runs struct tags first, then business rules.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		return ToValidationErrors(err)
	}
	if errs := v.ValidateBusiness(s); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *Validator) Business() *BusinessValidator {
	return v.businessValidator
}

// RegisterCustomValidators installs the gradebook tags on an existing
// validator, such as the one gin binds with.
func RegisterCustomValidators(validate *validator.Validate) {
	registerCustomValidators(validate)
}

func registerCustomValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("subject_code", validateSubjectCode)
	_ = validate.RegisterValidation("override_status", validateOverrideStatus)
	_ = validate.RegisterValidation("score_field", validateScoreField)
	_ = validate.RegisterValidation("session_role", validateSessionRole)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateSubjectCode(fl validator.FieldLevel) bool {
	return models.SubjectCode(fl.Field().String()).IsValid()
}

// Spreadsheet labels are accepted as well as the API names.
func validateOverrideStatus(fl validator.FieldLevel) bool {
	_, ok := models.ParseOverrideStatus(fl.Field().String())
	return ok && fl.Field().String() != ""
}

func validateScoreField(fl validator.FieldLevel) bool {
	return models.ScoreField(fl.Field().String()).IsValid()
}

func validateSessionRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "teacher", "student":
		return true
	}
	return false
}
