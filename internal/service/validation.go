package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating input: %w", err)
	}

	var fields fieldErrors
	for _, fe := range verrs {
		fields.add(describe(fe))
	}
	return fields.err()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// checkRequired rejects an explicit null for a column that is NOT NULL.
func checkRequired[T any](errs *fieldErrors, name string, o domain.Optional[T]) {
	if o.Set && o.Null {
		errs.add(name + " cannot be null")
	}
}

func checkMaxLen(errs *fieldErrors, name string, o domain.Optional[string], max int) {
	if o.HasValue() && utf8.RuneCountInString(o.Value) > max {
		errs.add(fmt.Sprintf("%s must be at most %d characters", name, max))
	}
}

func validatePage(page domain.Page) error {
	var errs fieldErrors
	if page.Offset < 0 {
		errs.add("skip must be a non-negative integer")
	}
	if page.Limit < 0 {
		errs.add("limit must be a non-negative integer")
	}
	return errs.err()
}
