package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	_ "time/tzdata" // time zone names are checked against the embedded database

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance returns the shared validator, reporting fields by
// their JSON names.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("admin_email", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
	})
	return validate
}

// Struct validates v against its `validate` tags and returns a single
// error describing the first failing field.
func Struct(v interface{}) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errors.New(describe(verrs[0]))
	}
	return err
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "timezone":
		return fmt.Sprintf("%s must be an IANA time zone name", field)
	case "admin_email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "http_url":
		return fmt.Sprintf("%s must be an http(s) URL", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

// ValidateID checks that a path parameter is a UUID
func ValidateID(name, id string) error {
	if id == "" {
		return fmt.Errorf("%s is required", name)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s must be a UUID", name)
	}
	return nil
}
