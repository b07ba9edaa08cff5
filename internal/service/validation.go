package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
)

// NewValidator returns a validator reporting fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

// newSubmitValidator reads the `submit` tag, which lists what a final submission requires.
func newSubmitValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("submit")
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// ValidateRequest checks req against its validate tags, reporting failures per JSON field.
func ValidateRequest(v *validator.Validate, req interface{}, message string) error {
	if v == nil {
		v = NewValidator()
	}
	return validationError(v.Struct(req), message)
}

// validationError turns validator output into a VALIDATION_ERROR carrying per-field messages.
func validationError(err error, message string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = describeTag(fe)
	}
	appErr := appErrors.WithFields(appErrors.ErrValidation, message, fields)
	appErr.Err = err
	return appErr
}

// fieldPath drops the root struct name: "ClinicalContent.residentName" -> "residentName".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}
