package shared

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)

// Validator wraps go-playground/validator with the conventions used by every
// input struct in the module: json names as field keys, decimals compared as
// numbers, and human messages instead of tag dumps.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator with the custom rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	return &Validator{validate: v}
}

// ValidPhone accepts digits, spaces, dashes, parentheses and plus signs with at least ten digits.
func ValidPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 10
}

// Struct validates s and returns the failures keyed by json field path.
func (v *Validator) Struct(s interface{}) FieldErrors {
	errs := FieldErrors{}
	err := v.validate.Struct(s)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("general", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fieldKey(fe), message(fe))
	}
	return errs
}

func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	label := Humanize(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "gt":
		if fe.Param() == "0" {
			return label + " must be greater than zero"
		}
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return label + " cannot be negative"
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			noun := strings.ToLower(strings.TrimSuffix(label, "s"))
			if fe.Param() == "1" {
				return "At least one " + noun + " is required"
			}
			return fmt.Sprintf("At least %s %ss are required", fe.Param(), noun)
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid phone number"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	}
	return fe.Error()
}

// Humanize turns a json field name such as "costPerUnit" into "Cost per unit".
func Humanize(field string) string {
	if field == "sku" {
		return "SKU"
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
