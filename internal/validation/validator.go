// Package validation holds the field checks shared by every checkout surface:
// contact details, custom-request text and body measurements. Checks are pure
// and return a display message, or "" when the value is acceptable.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Validator renders messages for one locale.
type Validator struct {
	tag     language.Tag
	printer *message.Printer
	structs *validator.Validate
	ranges  map[Field]Range
}

// New returns a Validator for the given locale ("en", "vi", "vi-VN", ...).
// Unsupported locales fall back to English.
func New(locale string) *Validator {
	tag := matchLocale(locale)
	return &Validator{
		tag:     tag,
		printer: message.NewPrinter(tag),
		structs: newStructValidator(),
		ranges:  measurementRanges,
	}
}

var defaultValidator = New("en")

// ValidateField checks a single contact or custom-request field using the
// English validator.
func ValidateField(field, raw string) string {
	return defaultValidator.ValidateField(field, raw)
}

// ValidateMeasurementField checks one measurement using the English validator.
func ValidateMeasurementField(field Field, value float64) string {
	return defaultValidator.ValidateMeasurementField(field, value)
}

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("contact_phone", validatePhone)
	_ = v.RegisterValidation("contact_email", validateEmail)
	_ = v.RegisterValidation("min_trimmed", validateMinTrimmed)
	return v
}
