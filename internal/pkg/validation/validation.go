// Package validation wraps go-playground/validator and converts its
// failures into apperror validation errors with one entry per violation.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
		_ = validate.RegisterValidation("month", validateMonthKey)
		_ = validate.RegisterValidation("notblank", validateNotBlank)
	})
	return validate
}

// RegisterStructRules attaches cross-field rules to the given types.
// Call it from package init functions only.
func RegisterStructRules(fn validator.StructLevelFunc, types ...any) {
	instance().RegisterStructValidation(fn, types...)
}

// Validate checks v and returns nil or an *apperror.Error listing every violation.
func Validate(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Internal("validation failed", err)
	}
	details := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, toFieldError(fe))
	}
	return apperror.Validation(details...)
}

// MonthKey parses a month map key. It accepts "1" through "12".
func MonthKey(key string) (int, bool) {
	m, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

// FromBindError converts a body parsing failure into a validation error.
func FromBindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperror.InvalidField(field, "type", fmt.Sprintf("%s must be of type %s", field, typeErr.Type.String()))
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperror.InvalidField("body", "syntax", fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))
	}
	return apperror.InvalidField("body", "parse", "request body could not be parsed")
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form", "query"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func validateMonthKey(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.String:
		_, ok := MonthKey(fl.Field().String())
		return ok
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		m := fl.Field().Int()
		return m >= 1 && m <= 12
	}
	return false
}

func validateNotBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

// toFieldError strips the root struct name from the namespace so that
// nested and map fields read like "monthly[13]".
func toFieldError(fe validator.FieldError) apperror.FieldError {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return apperror.FieldError{
		Field:   field,
		Kind:    fe.Tag(),
		Message: message(field, fe),
	}
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "month":
		return fmt.Sprintf("%s must be a month between 1 and 12", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must %s at least %s%s", field, verb(fe.Kind()), fe.Param(), unit(fe.Kind()))
	case "max":
		return fmt.Sprintf("%s must %s at most %s%s", field, verb(fe.Kind()), fe.Param(), unit(fe.Kind()))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "datetime":
		return fmt.Sprintf("%s must match the format %s", field, fe.Param())
	case "total_amount":
		return fmt.Sprintf("%s must equal the sum of monthly values (%s)", field, fe.Param())
	}
	return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
}

func verb(k reflect.Kind) string {
	switch k {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return "contain"
	}
	return "be"
}

func unit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Map, reflect.Array:
		return " items"
	}
	return ""
}
