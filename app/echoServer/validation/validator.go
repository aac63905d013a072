package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kp7829294-create/libzone/util/apperr"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns an apperr Validation error naming the first bad field.
func (v *Validator) Validate(i interface{}) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) || len(fes) == 0 {
		return apperr.New(apperr.Validation, "VALIDATION", "Invalid input").Wrap(err)
	}
	return apperr.New(apperr.Validation, "VALIDATION", describe(fes[0])).Wrap(err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Missing " + fe.Field()
	case "email":
		return "Invalid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param())
	case "numeric":
		return fe.Field() + " must be numeric"
	default:
		return "Invalid " + fe.Field()
	}
}
