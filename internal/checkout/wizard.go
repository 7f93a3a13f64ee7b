package checkout

import (
	"time"

	"github.com/wichananm65/bridal-checkout/internal/schedule"
	"github.com/wichananm65/bridal-checkout/internal/validation"
)

// Step is a wizard position.
type Step int

const (
	StepCustomerInfo Step = iota
	StepMeasurements
	StepAccessories
	StepConfirmation
)

// LastStep is the confirmation step.
const LastStep = StepConfirmation

var stepNames = [...]string{"customer_info", "measurements", "accessories", "confirmation"}

func (s Step) String() string {
	if s < StepCustomerInfo || s > LastStep {
		return "unknown"
	}
	return stepNames[s]
}

// stepKeys lists the error keys each step owns.
func stepKeys(s Step) []string {
	switch s {
	case StepCustomerInfo:
		return []string{"phone", "email", "address", "dueDate", "returnDate"}
	case StepMeasurements:
		keys := make([]string, 0, len(validation.AllFields))
		for _, f := range validation.AllFields {
			keys = append(keys, validation.ErrorKey(f))
		}
		return keys
	}
	return nil
}

// ValidateStep returns every error of step s for d. Steps after
// measurements never fail.
func ValidateStep(v *validation.Validator, s Step, d *Draft, now time.Time) FieldErrors {
	errs := make(FieldErrors)
	switch s {
	case StepCustomerInfo:
		for k, msg := range v.ValidateContact(d.contact()) {
			errs[k] = msg
		}
		if msg := v.ScheduleMessage(schedule.ValidateDueDate(d.Schedule.DueDate, now)); msg != "" {
			errs["dueDate"] = msg
		}
		if msg := v.ScheduleMessage(schedule.ValidateReturnDate(d.OrderType, d.Schedule.DueDate, d.Schedule.ReturnDate)); msg != "" {
			errs["returnDate"] = msg
		}
	case StepMeasurements:
		for k, msg := range v.ValidateMeasurements(d.Measurements.Values()) {
			errs[k] = msg
		}
	}
	return errs
}

// Transition is the pure step function: it returns the step after a "next"
// from s and the errors that blocked it, if any.
func Transition(v *validation.Validator, s Step, d *Draft, now time.Time) (Step, FieldErrors) {
	errs := ValidateStep(v, s, d, now)
	if len(errs) > 0 {
		return s, errs
	}
	if s >= LastStep {
		return LastStep, errs
	}
	return s + 1, errs
}

// Wizard moves a draft through the checkout steps.
type Wizard struct {
	v *validation.Validator
}

func NewWizard(v *validation.Validator) Wizard {
	return Wizard{v: v}
}

// Next validates the current step and records its errors on the draft. It
// advances only when the step is clean and reports whether it moved.
func (w Wizard) Next(d *Draft, now time.Time) bool {
	next, errs := Transition(w.v, d.Step, d, now)
	d.replaceErrors(stepKeys(d.Step), errs)
	moved := next != d.Step
	d.Step = next
	return moved
}

// Prev moves back one step without validating.
func (w Wizard) Prev(d *Draft) bool {
	if d.Step <= StepCustomerInfo {
		return false
	}
	d.Step--
	return true
}

// FirstInvalid re-checks the steps that collect input and returns the first
// failing one with its errors. ok is true when every step passes.
func (w Wizard) FirstInvalid(d *Draft, now time.Time) (Step, FieldErrors, bool) {
	for _, s := range []Step{StepCustomerInfo, StepMeasurements} {
		if errs := ValidateStep(w.v, s, d, now); len(errs) > 0 {
			return s, errs, false
		}
	}
	return LastStep, nil, true
}
