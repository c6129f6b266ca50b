// Package validate checks request structs with go-playground/validator tags.
//
// Besides the built-in tags it registers:
//
//	notblank  string has at least one non-space rune
//	money     decimal.Decimal that is positive, within calculator.MaxAmount,
//	          with at most two decimal places
//	category  one of the expense categories
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/errs"
)

// Categories are the accepted expense categories.
var Categories = []string{"food", "transport", "sports", "entertainment", "utilities", "rent", "other"}

var v *validator.Validate

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// Decimals are validated through their string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && calculator.ValidAmount(d)
	})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return slices.Contains(Categories, fl.Field().String())
	})
}

// Struct validates s and returns an errs.ErrInvalidInput error naming every
// failing field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errs.InvalidInput("%v", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errs.InvalidInput("%s", strings.Join(msgs, "; "))
}

// Var validates a single value against tag.
func Var(field string, value any, tag string) error {
	if err := v.Var(value, tag); err != nil {
		return errs.InvalidInput("%s: failed %q", field, tag)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "money":
		return fmt.Sprintf("%s must be a positive amount of at most %s with at most two decimals", fe.Field(), calculator.MaxAmount)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
