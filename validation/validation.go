// Package validation decodes JSON request bodies into typed DTOs and checks
// them with go-playground/validator, reporting every violated rule.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"time"

	"taskhub/models"

	"github.com/go-playground/validator/v10"
)

const dateOnly = "2006-01-02"

// Messages maps "field.tag" (JSON field name, validator tag) to the message
// reported when that rule fails.
type Messages map[string]string

// Messenger is implemented by DTOs that carry their own messages.
type Messenger interface {
	ValidationMessages() Messages
}

// Errors lists every violated rule of one request.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return models.IsValidID(fl.Field().String())
	})
	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, err := ParseDate(fl.Field().String())
		return err == nil && t.After(time.Now())
	})
	return v
}

// Struct validates v and returns Errors when any rule fails.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var msgs Messages
	if m, ok := v.(Messenger); ok {
		msgs = m.ValidationMessages()
	}
	out := make(Errors, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		msg := message(fe, msgs)
		if seen[msg] {
			continue
		}
		seen[msg] = true
		out = append(out, msg)
	}
	return out
}

var indexSuffix = regexp.MustCompile(`\[\d+\]$`)

func message(fe validator.FieldError, msgs Messages) string {
	field := indexSuffix.ReplaceAllString(fe.Field(), "")
	if msg, ok := msgs[field+"."+fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%q must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "objectid":
		return fmt.Sprintf("%q must be a valid ID", field)
	case "date":
		return fmt.Sprintf("%q must be a valid date", field)
	case "future":
		return fmt.Sprintf("%q must be greater than now", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// DecodeJSON decodes one JSON object from r into dst, rejecting unknown
// fields and trailing data, and then validates it.
func DecodeJSON(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Errors{"Request body must be valid JSON"}
	}
	return Struct(dst)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return Errors{"Request body is required"}
	case errors.As(err, &typeErr):
		return Errors{fmt.Sprintf("%q must be %s", typeErr.Field, jsonTypeName(typeErr.Type))}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return Errors{fmt.Sprintf("%q is not allowed", field)}
	default:
		return Errors{"Request body must be valid JSON"}
	}
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "a number"
	default:
		return "an object"
	}
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// IsDateOnly reports whether s is a plain YYYY-MM-DD date.
func IsDateOnly(s string) bool {
	_, err := time.Parse(dateOnly, strings.TrimSpace(s))
	return err == nil
}
