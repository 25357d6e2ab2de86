package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/prepstack/exam-service/internal/errors"
	"github.com/prepstack/exam-service/internal/models"
)

// Validator wraps go-playground struct validation with the custom rules the
// exam domain needs (option indices, bilingual content).
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new validator instance with all custom rules registered.
func New() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// Validate validates struct tags and translates failures into the shared
// ValidationErrors type so handlers can render field-level detail.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if translated := apperrors.ToValidationErrors(err); len(translated) > 0 {
			return translated
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("selected_option", validateSelectedOption)
	validate.RegisterValidation("bilingual_text", validateBilingualText)
	validate.RegisterValidation("option_list", validateOptionList)

	// Report json field names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateSelectedOption accepts -1 (unattempted) or an in-range option index.
func validateSelectedOption(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v >= models.UnattemptedOption && v < models.OptionCount
}

func validateBilingualText(fl validator.FieldLevel) bool {
	text, ok := fl.Field().Interface().(models.BilingualText)
	if !ok {
		return false
	}
	return text.Primary != ""
}

// validateOptionList enforces the fixed option cardinality for
// multiple-choice questions.
func validateOptionList(fl validator.FieldLevel) bool {
	options, ok := fl.Field().Interface().([]models.BilingualText)
	if !ok {
		return false
	}
	if len(options) != models.OptionCount {
		return false
	}
	for _, opt := range options {
		if opt.Primary == "" {
			return false
		}
	}
	return true
}
