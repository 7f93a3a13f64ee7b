// Package schedule computes the delivery and rental-return windows for an
// order and validates chosen dates against them. All comparisons happen on
// calendar days; callers pass "now" explicitly.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/wichananm65/bridal-checkout/internal/storefront"
)

const (
	// LeadDays is the minimum number of days between today and delivery.
	LeadDays = 3
	// MaxRentalDays is the longest a rented dress may stay out.
	MaxRentalDays = 6

	DateLayout = "2006-01-02"
)

var (
	ErrDueDateRequired    = errors.New("due date is required")
	ErrDueDateTooEarly    = errors.New("due date is earlier than the minimum lead time")
	ErrReturnDateRequired = errors.New("return date is required for rentals")
	ErrReturnNotAfterDue  = errors.New("return date must be after the due date")
	ErrReturnTooLate      = errors.New("return date exceeds the rental window")
	ErrReturnWithoutDue   = errors.New("return date chosen before a due date")
)

// Violation carries the rule that failed and, where relevant, the bound the
// date was checked against.
type Violation struct {
	Reason error
	Bound  time.Time
}

func (v *Violation) Error() string {
	if v.Bound.IsZero() {
		return v.Reason.Error()
	}
	return fmt.Sprintf("%v (bound %s)", v.Reason, Format(v.Bound))
}

func (v *Violation) Unwrap() error { return v.Reason }

// DateWindow is what a date picker may offer.
type DateWindow struct {
	DueMin    time.Time  `json:"dueMin"`
	ReturnMin *time.Time `json:"returnMin,omitempty"`
	ReturnMax *time.Time `json:"returnMax,omitempty"`
}

// Normalize pins t to 12:00 on its calendar day in its own location. Midday
// keeps DST shifts and small zone offsets from moving the date.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location())
}

// AddDays returns the normalized day n days after t.
func AddDays(t time.Time, n int) time.Time {
	return Normalize(t).AddDate(0, 0, n)
}

// CompareDays orders a and b by calendar day only.
func CompareDays(a, b time.Time) int {
	return civil(a).Compare(civil(b))
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders the calendar day of t.
func Format(t time.Time) string {
	return Normalize(t).Format(DateLayout)
}

// Parse reads a YYYY-MM-DD day in loc and normalizes it.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return Normalize(t), nil
}

// MinDueDate is the earliest selectable delivery day.
func MinDueDate(now time.Time) time.Time {
	return AddDays(now, LeadDays)
}

// ReturnBounds returns the first and last acceptable return day for a rental
// delivered on due.
func ReturnBounds(due time.Time) (time.Time, time.Time) {
	return AddDays(due, 1), AddDays(due, MaxRentalDays)
}

// ValidateDueDate checks due against the lead time.
func ValidateDueDate(due *time.Time, now time.Time) error {
	if due == nil {
		return &Violation{Reason: ErrDueDateRequired}
	}
	min := MinDueDate(now)
	if CompareDays(*due, min) < 0 {
		return &Violation{Reason: ErrDueDateTooEarly, Bound: min}
	}
	return nil
}

// ValidateReturnDate checks ret against due. Only rentals have a return date;
// for sales ret is ignored.
func ValidateReturnDate(orderType storefront.OrderType, due, ret *time.Time) error {
	if orderType != storefront.OrderTypeRent {
		return nil
	}
	if ret == nil {
		return &Violation{Reason: ErrReturnDateRequired}
	}
	if due == nil {
		return &Violation{Reason: ErrReturnWithoutDue}
	}
	first, last := ReturnBounds(*due)
	if CompareDays(*ret, first) < 0 {
		return &Violation{Reason: ErrReturnNotAfterDue, Bound: first}
	}
	if CompareDays(*ret, last) > 0 {
		return &Violation{Reason: ErrReturnTooLate, Bound: last}
	}
	return nil
}

// Window returns the selectable dates for the current draft state.
func Window(orderType storefront.OrderType, due *time.Time, now time.Time) DateWindow {
	w := DateWindow{DueMin: MinDueDate(now)}
	if orderType == storefront.OrderTypeRent && due != nil {
		first, last := ReturnBounds(*due)
		w.ReturnMin, w.ReturnMax = &first, &last
	}
	return w
}

// Reconcile re-checks an existing return date after the due date changed.
// When the pair is no longer valid the return date is dropped and cleared is
// true, so the caller can ask the user to pick it again.
func Reconcile(orderType storefront.OrderType, due, ret *time.Time) (*time.Time, bool) {
	if orderType != storefront.OrderTypeRent || ret == nil {
		return ret, false
	}
	if err := ValidateReturnDate(orderType, due, ret); err != nil {
		return nil, true
	}
	return ret, false
}
