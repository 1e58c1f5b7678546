package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"atelier-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validate is shared by every usecase; validator caches struct metadata.
var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
	// Field errors use JSON names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// validateStruct runs tag validation and converts failures into a
// *domain.ValidationError keyed by JSON path.
func validateStruct(s any) *domain.ValidationError {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	verr := &domain.ValidationError{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("_", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fieldPath(fe.Namespace()), message(fe))
	}
	return verr
}

// fieldPath drops the root struct name: "checkoutRequest.customer.email" -> "customer.email".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// merge folds extra cross-field errors into base, returning nil when both are empty.
func merge(base, extra *domain.ValidationError) error {
	if !base.HasErrors() && !extra.HasErrors() {
		return nil
	}
	if base == nil {
		base = &domain.ValidationError{}
	}
	if extra != nil {
		for k, v := range extra.Fields {
			base.Add(k, v)
		}
	}
	return base
}

// conflictAsField reports a unique-constraint conflict as a field error.
func conflictAsField(err error, field, msg string) error {
	if errors.Is(err, domain.ErrConflict) {
		return domain.NewValidationError(field, msg)
	}
	return err
}
