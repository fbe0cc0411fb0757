package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/go-playground/validator/v10"
)

var phoneFormat = regexp.MustCompile(`^\+?[\d\s()-]+$`)

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneFormat.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("jobrole", func(fl validator.FieldLevel) bool {
		return domain.JobRole(fl.Field().String()).Known()
	})
	return v
}

func validateRequest(req interface{}) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s is required", field)
		case "min":
			return fmt.Errorf("%s must be at least %s", field, e.Param())
		case "max":
			return fmt.Errorf("%s must be at most %s", field, e.Param())
		case "email":
			return fmt.Errorf("%s must be a valid email address", field)
		case "phone":
			return fmt.Errorf("%s must be a valid phone number", field)
		case "jobrole":
			return fmt.Errorf("%s is not a supported job role", field)
		default:
			return fmt.Errorf("%s is invalid", field)
		}
	}
	return err
}
