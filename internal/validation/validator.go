package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wichananm65/misdis-backend/internal/apperror"
)

// Rule is a custom string validation tag contributed by a feature package.
type Rule struct {
	Tag     string
	Message string
	Check   func(value string) bool
}

// Validator wraps go-playground/validator and reports failures as
// *apperror.AppError keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
	messages map[string]string
}

func New(rules ...Rule) (*Validator, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	messages := make(map[string]string, len(rules))
	for _, r := range rules {
		check := r.Check
		err := v.RegisterValidation(r.Tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		})
		if err != nil {
			return nil, fmt.Errorf("register rule %q: %w", r.Tag, err)
		}
		messages[r.Tag] = r.Message
	}

	return &Validator{validate: v, messages: messages}, nil
}

// Struct validates s. It returns nil or an *apperror.AppError with one entry
// per failing field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = v.message(fe)
	}
	return apperror.Validation(details)
}

func (v *Validator) message(fe validator.FieldError) string {
	if msg, ok := v.messages[fe.Tag()]; ok && msg != "" {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("Must be a date in the format %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Invalid value (failed on '%s' tag)", fe.Tag())
	}
}
