package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to echo's Validator interface.
// Field errors report the payload's json names, not the Go field names.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error { return cv.v.Struct(i) }

// validationFields flattens validator errors into a field → message map for
// 400 responses.
func validationFields(err error) map[string]string {
	fields := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["payload"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		name := jsonFieldName(fe)
		switch fe.Tag() {
		case "required":
			fields[name] = fmt.Sprintf("The %s field is required.", name)
		case "max":
			fields[name] = fmt.Sprintf("The %s field may not be greater than %s characters.", name, fe.Param())
		case "email":
			fields[name] = fmt.Sprintf("The %s field must be a valid email address.", name)
		case "datetime":
			fields[name] = fmt.Sprintf("The %s field must match the format %s.", name, fe.Param())
		case "oneof":
			fields[name] = fmt.Sprintf("The %s field must be one of: %s.", name, fe.Param())
		default:
			fields[name] = fmt.Sprintf("The %s field is invalid.", name)
		}
	}
	return fields
}

func jsonFieldName(fe validator.FieldError) string {
	// Namespace is payload.field or payload.weeks.week1; drop the root
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}
