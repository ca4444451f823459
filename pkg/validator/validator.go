package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Struct validates s. Failures are returned as ValidationErrors in field
// declaration order.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := make(ValidationErrors, 0, len(fes))
	for _, fe := range fes {
		msg := messageFor(fe)
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if custom := sf.Tag.Get("msg"); custom != "" {
				msg = custom
			}
		}
		out = append(out, ValidationError{Field: fe.Field(), Tag: fe.Tag(), Message: msg})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	case "password":
		return "must contain an upper case letter, a lower case letter and at least 6 characters"
	default:
		return "is invalid"
	}
}
