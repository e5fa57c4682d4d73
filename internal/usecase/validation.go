package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xavierca1/consult-intake/internal/entity"
)

type ValidationError struct {
	Field   string `json:"path"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// NormalizeSubmitConsultationInput trims every free-text field and applies defaults.
func NormalizeSubmitConsultationInput(input SubmitConsultationInput) SubmitConsultationInput {
	out := input
	out.Name = strings.TrimSpace(input.Name)
	out.Email = strings.TrimSpace(input.Email)
	out.Phone = strings.TrimSpace(input.Phone)
	out.Location = strings.TrimSpace(input.Location)
	out.Company = strings.TrimSpace(input.Company)
	out.BusinessType = strings.TrimSpace(input.BusinessType)
	out.Budget = strings.TrimSpace(input.Budget)
	out.Timeline = strings.TrimSpace(input.Timeline)
	out.PreferredContact = strings.TrimSpace(input.PreferredContact)
	out.PreferredTime = strings.TrimSpace(input.PreferredTime)
	out.Message = input.Message
	out.Source = strings.TrimSpace(input.Source)

	out.Language = strings.ToLower(strings.TrimSpace(input.Language))
	if out.Language == "" {
		out.Language = entity.LanguageEnglish
	}

	if input.Services != nil {
		out.Services = make([]string, len(input.Services))
		for i, svc := range input.Services {
			out.Services[i] = strings.TrimSpace(svc)
		}
	}
	return out
}

// ValidateSubmitConsultationInput expects an already normalized input.
func ValidateSubmitConsultationInput(input SubmitConsultationInput) []ValidationError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array
	switch fe.Tag() {
	case "required":
		if isList {
			return "must contain at least 1 item"
		}
		return "is required"
	case "min":
		if isList {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if isList {
			return fmt.Sprintf("must contain at most %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
