package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	phoneMinDigits = 9
	phoneMaxDigits = 11
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// fieldRules are the validator tags applied by ValidateField.
var fieldRules = map[string]string{
	"phone":       "notblank,contact_phone",
	"email":       "notblank,contact_email",
	"address":     "notblank,min_trimmed=10",
	"title":       "notblank,min_trimmed=5",
	"description": "notblank,min_trimmed=20",
}

// Contact is the customer-info block checked on the first checkout step.
type Contact struct {
	Phone   string `json:"phone" validate:"notblank,contact_phone"`
	Email   string `json:"email" validate:"notblank,contact_email"`
	Address string `json:"address" validate:"notblank,min_trimmed=10"`
}

// ValidateField returns the message for a single named field, or "".
func (v *Validator) ValidateField(field, raw string) string {
	rules, ok := fieldRules[field]
	if !ok {
		return v.printer.Sprintf(msgUnknownField, field)
	}
	err := v.structs.Var(raw, rules)
	if err == nil {
		return ""
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return v.printer.Sprintf(msgUnknownField, field)
	}
	return v.describe(field, fieldErrs[0])
}

// ValidateContact checks every contact field and returns all failures keyed
// by field name. An empty map means the contact block is valid.
func (v *Validator) ValidateContact(c Contact) map[string]string {
	out := make(map[string]string)
	err := v.structs.Struct(c)
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return out
	}
	for _, fe := range fieldErrs {
		out[fe.Field()] = v.describe(fe.Field(), fe)
	}
	return out
}

func (v *Validator) describe(field string, fe validator.FieldError) string {
	label := v.contactLabel(field)
	switch fe.Tag() {
	case "notblank":
		return v.printer.Sprintf(msgRequired, label)
	case "contact_phone":
		return v.printer.Sprintf(msgPhoneDigits, label)
	case "contact_email":
		return v.printer.Sprintf(msgEmailFormat, label)
	case "min_trimmed":
		n, _ := strconv.Atoi(fe.Param())
		return v.printer.Sprintf(msgMinLength, label, n)
	default:
		return v.printer.Sprintf(msgUnknownField, field)
	}
}

// PhoneDigits strips everything but ASCII digits.
func PhoneDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimFunc(fl.Field().String(), unicode.IsSpace) != ""
}

func validatePhone(fl validator.FieldLevel) bool {
	n := len(PhoneDigits(fl.Field().String()))
	return n >= phoneMinDigits && n <= phoneMaxDigits
}

func validateEmail(fl validator.FieldLevel) bool {
	return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateMinTrimmed(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}
