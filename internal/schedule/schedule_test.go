package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/bridal-checkout/internal/storefront"
)

var saigon = time.FixedZone("ICT", 7*3600)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, saigon)
	return &t
}

func TestNormalize(t *testing.T) {
	late := time.Date(2026, 10, 19, 23, 59, 0, 0, saigon)
	n := Normalize(late)
	assert.Equal(t, 12, n.Hour())
	assert.Equal(t, 19, n.Day())
	assert.Equal(t, "2026-10-19", Format(late))
}

func TestValidateDueDate(t *testing.T) {
	now := time.Date(2026, 10, 19, 21, 0, 0, 0, saigon)

	err := ValidateDueDate(nil, now)
	assert.ErrorIs(t, err, ErrDueDateRequired)

	err = ValidateDueDate(day(2026, 10, 21), now)
	require.ErrorIs(t, err, ErrDueDateTooEarly)
	var v *Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "2026-10-22", Format(v.Bound))

	assert.NoError(t, ValidateDueDate(day(2026, 10, 22), now))
	assert.NoError(t, ValidateDueDate(day(2026, 12, 1), now))
}

func TestValidateReturnDate_Rent(t *testing.T) {
	due := day(2026, 10, 23)

	assert.ErrorIs(t, ValidateReturnDate(storefront.OrderTypeRent, due, due), ErrReturnNotAfterDue)
	assert.NoError(t, ValidateReturnDate(storefront.OrderTypeRent, due, day(2026, 10, 24)))
	assert.NoError(t, ValidateReturnDate(storefront.OrderTypeRent, due, day(2026, 10, 29)))
	assert.ErrorIs(t, ValidateReturnDate(storefront.OrderTypeRent, due, day(2026, 10, 30)), ErrReturnTooLate)
	assert.ErrorIs(t, ValidateReturnDate(storefront.OrderTypeRent, due, day(2026, 10, 20)), ErrReturnNotAfterDue)
	assert.ErrorIs(t, ValidateReturnDate(storefront.OrderTypeRent, due, nil), ErrReturnDateRequired)
	assert.ErrorIs(t, ValidateReturnDate(storefront.OrderTypeRent, nil, day(2026, 10, 24)), ErrReturnWithoutDue)
}

func TestValidateReturnDate_SellIgnoresReturn(t *testing.T) {
	due := day(2026, 10, 23)
	assert.NoError(t, ValidateReturnDate(storefront.OrderTypeSell, due, nil))
	assert.NoError(t, ValidateReturnDate(storefront.OrderTypeSell, due, due))
}

func TestValidateReturnDate_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2026, 10, 23, 23, 30, 0, 0, saigon)
	ret := time.Date(2026, 10, 24, 0, 15, 0, 0, saigon)
	assert.NoError(t, ValidateReturnDate(storefront.OrderTypeRent, &due, &ret))
}

func TestWindow(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, saigon)

	w := Window(storefront.OrderTypeSell, day(2026, 10, 25), now)
	assert.Equal(t, "2026-10-22", Format(w.DueMin))
	assert.Nil(t, w.ReturnMin)
	assert.Nil(t, w.ReturnMax)

	w = Window(storefront.OrderTypeRent, day(2026, 10, 25), now)
	require.NotNil(t, w.ReturnMin)
	assert.Equal(t, "2026-10-26", Format(*w.ReturnMin))
	assert.Equal(t, "2026-10-31", Format(*w.ReturnMax))

	w = Window(storefront.OrderTypeRent, nil, now)
	assert.Nil(t, w.ReturnMin)
}

func TestReconcile(t *testing.T) {
	ret := day(2026, 10, 27)

	kept, cleared := Reconcile(storefront.OrderTypeRent, day(2026, 10, 24), ret)
	assert.False(t, cleared)
	assert.Equal(t, ret, kept)

	kept, cleared = Reconcile(storefront.OrderTypeRent, day(2026, 10, 28), ret)
	assert.True(t, cleared)
	assert.Nil(t, kept)

	kept, cleared = Reconcile(storefront.OrderTypeRent, day(2026, 10, 18), ret)
	assert.True(t, cleared)
	assert.Nil(t, kept)

	kept, cleared = Reconcile(storefront.OrderTypeSell, day(2026, 10, 28), ret)
	assert.False(t, cleared)
	assert.Equal(t, ret, kept)
}

func TestParse(t *testing.T) {
	got, err := Parse("2026-10-23", saigon)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour())
	assert.Equal(t, "2026-10-23", Format(got))

	_, err = Parse("23/10/2026", saigon)
	assert.Error(t, err)
}
