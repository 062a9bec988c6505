package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hapl/fieldsales/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Errors name fields by their JSON keys.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &echoValidator{v: v}
}

// FieldIssue is one rejected field of a request.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate satisfies the echo.Validator interface. Field failures come back as
// a domain.ValidationError carrying []FieldIssue.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			issues := make([]FieldIssue, 0, len(ve))
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msg := fieldError(fe)
				issues = append(issues, FieldIssue{Field: fe.Field(), Message: msg})
				msgs = append(msgs, msg)
			}
			return &domain.ValidationError{Message: strings.Join(msgs, "; "), Cause: issues}
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
