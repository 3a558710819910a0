package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"guide-exam/internal/domain"
	"guide-exam/internal/util"

	"github.com/go-playground/validator/v10"
)

// Validator provides request validation functionality
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance. Field names in errors follow the json tags.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &Validator{validate: v}
}

// ValidateStruct runs the struct tags of a request DTO.
func (v *Validator) ValidateStruct(s interface{}) domain.ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.ValidationErrors{domain.NewValidationError("body", err.Error())}
	}

	var errors domain.ValidationErrors
	for _, fe := range fieldErrs {
		errors = append(errors, toValidationError(fe))
	}
	return errors
}

func toValidationError(fe validator.FieldError) domain.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "email", "numeric", "alphanum", "oneof":
		return domain.NewInvalidFormatError(field, fe.Value())
	case "len":
		return domain.NewValidationError(field, fmt.Sprintf("%s must be exactly %s characters", field, fe.Param()))
	case "min", "max":
		switch fe.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return domain.NewOutOfRangeError(field, fe.Value(), fe.Tag()+"="+fe.Param())
		}
		return domain.NewValidationError(field, fmt.Sprintf("%s violates %s=%s", field, fe.Tag(), fe.Param()))
	case "eqfield":
		return domain.NewValidationError(field, fmt.Sprintf("%s must match %s", field, strings.ToLower(fe.Param())))
	case "containsany":
		return domain.NewValidationError(field, fmt.Sprintf("%s must contain one of %q", field, fe.Param()))
	}
	return domain.NewValidationError(field, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
}

// ValidateSessionID checks a session or drill id path parameter.
func (v *Validator) ValidateSessionID(field, id string) domain.ValidationErrors {
	if strings.TrimSpace(id) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	if !util.IsULID(id) {
		return domain.ValidationErrors{domain.NewInvalidFormatError(field, id)}
	}
	return nil
}

// ParseQuestionID parses a positive question id path parameter.
func (v *Validator) ParseQuestionID(field, raw string) (int64, domain.ValidationErrors) {
	if strings.TrimSpace(raw) == "" {
		return 0, domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError(field, raw)}
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD query parameter.
func (v *Validator) ParseDate(field, raw string) (string, domain.ValidationErrors) {
	if _, err := time.Parse(domain.DateLayout, raw); err != nil {
		return "", domain.ValidationErrors{domain.NewInvalidFormatError(field, raw)}
	}
	return raw, nil
}
