package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"salescrm/internal/pkg/apperr"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// report json names so errors line up with request bodies
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	errs := make(map[string]string)
	for _, fe := range verrs {
		errs[fe.Field()] = fe.Tag()
	}
	return errs
}

// Check is Validate returning an *apperr.ValidationError.
func Check(v interface{}) error {
	if fields := Validate(v); fields != nil {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}
