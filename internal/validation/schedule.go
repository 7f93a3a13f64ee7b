package validation

import (
	"errors"

	"github.com/wichananm65/bridal-checkout/internal/schedule"
)

// ScheduleMessage turns a schedule rule violation into a display message.
// nil yields "".
func (v *Validator) ScheduleMessage(err error) string {
	if err == nil {
		return ""
	}
	var bound string
	var violation *schedule.Violation
	if errors.As(err, &violation) && !violation.Bound.IsZero() {
		bound = schedule.Format(violation.Bound)
	}
	switch {
	case errors.Is(err, schedule.ErrDueDateRequired):
		return v.printer.Sprintf(msgRequired, v.contactLabel("dueDate"))
	case errors.Is(err, schedule.ErrDueDateTooEarly):
		return v.printer.Sprintf(msgDueTooEarly, bound)
	case errors.Is(err, schedule.ErrReturnDateRequired):
		return v.printer.Sprintf(msgRequired, v.contactLabel("returnDate"))
	case errors.Is(err, schedule.ErrReturnNotAfterDue):
		return v.printer.Sprintf(msgReturnNotAfter)
	case errors.Is(err, schedule.ErrReturnTooLate):
		return v.printer.Sprintf(msgReturnTooLate, bound)
	case errors.Is(err, schedule.ErrReturnWithoutDue):
		return v.printer.Sprintf(msgReturnNeedsDue)
	default:
		return err.Error()
	}
}

// InvalidDateMessage reports unparsable date input for field.
func (v *Validator) InvalidDateMessage(field string) string {
	return v.printer.Sprintf(msgInvalidDateText, v.contactLabel(field))
}

// ReturnClearedNotice tells the user a return date was dropped because the
// due date moved.
func (v *Validator) ReturnClearedNotice() string {
	return v.printer.Sprintf(msgReturnCleared)
}
