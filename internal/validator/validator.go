package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/prepdeck/examprep-service/internal/errors"
	"github.com/prepdeck/examprep-service/internal/models"
)

// Validator wraps go-playground struct validation with the service's
// custom rules and json field naming.
type Validator struct {
	structValidator *validator.Validate
}

// New creates the shared validator instance.
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// Validate checks struct tags and converts failures to ValidationErrors so
// handlers can render field-level detail.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("option_index", validateOptionIndex)

	// Report json names in error messages instead of Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateOptionIndex(fl validator.FieldLevel) bool {
	value := fl.Field().Int()
	return value >= 0 && value < models.OptionCount
}
