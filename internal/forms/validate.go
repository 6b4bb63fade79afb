// Package forms holds the form controllers: field state, validation and the
// mapping from field values to domain objects. The views own the widgets.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		return IsTimeSlot(fl.Field().String())
	})
	return v
}

// FieldErrors maps a field name to the message shown under it
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return strings.Join(parts, "; ")
}

// messages maps a validator tag to a message builder
type messages map[string]func(label string, fe validator.FieldError) string

var defaultMessages = messages{
	"required": func(label string, _ validator.FieldError) string { return label + " is required" },
	"email":    func(string, validator.FieldError) string { return "Enter a valid email address" },
	"hexcolor": func(string, validator.FieldError) string { return "Color must be a hex value like #4f46e5" },
	"datetime": func(string, validator.FieldError) string { return "Use the YYYY-MM-DD format" },
	"timeslot": func(string, validator.FieldError) string { return "Pick a half-hour slot between 00:00 and 23:30" },
}

// check validates s and converts the failures into FieldErrors. labels
// gives the display name of each field; overrides replaces the message for
// a field whatever the failing tag.
func check(s any, labels map[string]string, overrides map[string]string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msg, ok := overrides[field]; ok && fe.Tag() != "required" {
			out[field] = msg
			continue
		}
		label := labels[field]
		if label == "" {
			label = field
		}
		if build, ok := defaultMessages[fe.Tag()]; ok {
			out[field] = build(label, fe)
			continue
		}
		out[field] = fmt.Sprintf("%s is invalid", label)
	}
	return out
}
