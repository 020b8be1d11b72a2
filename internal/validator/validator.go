// Package validator checks form input before it is sent to the backend. The
// in-process test backend runs the same rules on what it receives.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/models"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Get returns the shared validator with all custom rules registered.
func Get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		configure(instance)
	})
	return instance
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(dateValue, models.Date{})
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
}

// Struct validates s and converts failures into an ErrInvalidInput whose
// message names the first offending field.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}
	return apperrors.WithStatus(apperrors.ErrInvalidInput, 0, describe(verrs[0]))
}

// Var validates a single value against tag.
func Var(field string, value any, tag string) error {
	err := Get().Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.WithStatus(apperrors.ErrInvalidInput, 0, message(field, fe.Tag(), fe.Param()))
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err)
}

func describe(fe validator.FieldError) string {
	return message(label(fe.Field()), fe.Tag(), fe.Param())
}

func message(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please enter a valid email address"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte", "min":
		if param == "" {
			return fmt.Sprintf("%s is too small", field)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(param), ", "))
	case "eqfield":
		if strings.Contains(strings.ToLower(field), "password") {
			return "Passwords do not match"
		}
		return fmt.Sprintf("%s must match %s", field, label(param))
	case "nefield":
		if strings.Contains(strings.ToLower(field), "password") {
			return "New password must be different from the current password"
		}
		return fmt.Sprintf("%s must differ from %s", field, label(param))
	case "ltefield":
		return fmt.Sprintf("%s cannot exceed %s", field, label(param))
	case "transaction_type":
		return fmt.Sprintf("%s must be income or expense", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// label turns monthly_limit or TargetAmount into "Monthly limit" and
// "Target amount".
func label(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_':
			b.WriteByte(' ')
		case unicode.IsUpper(r) && i > 0:
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// dateValue exposes a models.Date to validator as its time.Time, and as nil
// when unset so "required" fails on the zero date.
func dateValue(field reflect.Value) any {
	d, ok := field.Interface().(models.Date)
	if !ok || d.IsZero() {
		return nil
	}
	return d.Time
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return true
	}
	return false
}
