package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/bridal-checkout/internal/storefront"
)

var wizardNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func TestNext_InvalidEmailStaysOnCustomerInfo(t *testing.T) {
	w := NewWizard(englishValidator)
	d := validDraft(storefront.OrderTypeSell, wizardNow)
	d.Customer.Email = "bride-at-example"

	assert.False(t, w.Next(d, wizardNow))
	assert.Equal(t, StepCustomerInfo, d.Step)
	assert.Equal(t, "Email is not a valid email address", d.Errors["email"])
	assert.NotContains(t, d.Errors, "phone")
}

func TestNext_RecordsEveryErrorOfTheStep(t *testing.T) {
	w := NewWizard(englishValidator)
	d := NewDraft("dress-1", storefront.OrderTypeRent, testCatalog)

	w.Next(d, wizardNow)
	assert.Equal(t, StepCustomerInfo, d.Step)
	for _, key := range []string{"phone", "email", "address", "dueDate", "returnDate"} {
		assert.Contains(t, d.Errors, key)
	}
}

func TestNext_WalksToConfirmation(t *testing.T) {
	w := NewWizard(englishValidator)
	d := validDraft(storefront.OrderTypeRent, wizardNow)
	d.Errors["email"] = "stale"

	require.True(t, w.Next(d, wizardNow))
	assert.Equal(t, StepMeasurements, d.Step)
	assert.Empty(t, d.Errors)

	require.True(t, w.Next(d, wizardNow))
	require.True(t, w.Next(d, wizardNow))
	assert.Equal(t, StepConfirmation, d.Step)

	assert.False(t, w.Next(d, wizardNow))
	assert.Equal(t, StepConfirmation, d.Step)
}

func TestNext_MeasurementsRequireCanonicalSubset(t *testing.T) {
	w := NewWizard(englishValidator)
	d := validDraft(storefront.OrderTypeSell, wizardNow)
	d.Step = StepMeasurements
	d.Measurements.Neck = 0
	d.Measurements.Bicep = 90

	assert.False(t, w.Next(d, wizardNow))
	assert.Equal(t, StepMeasurements, d.Step)
	assert.Contains(t, d.Errors, "measurement_neck")
	assert.Contains(t, d.Errors, "measurement_bicep")
	assert.NotContains(t, d.Errors, "measurement_armpit")

	d.Measurements.Neck = 33
	d.Measurements.Bicep = 0
	assert.True(t, w.Next(d, wizardNow))
	assert.Empty(t, d.Errors)
}

func TestNext_RentReturnDateWindow(t *testing.T) {
	w := NewWizard(englishValidator)
	d := validDraft(storefront.OrderTypeRent, wizardNow)
	tooLate := d.Schedule.DueDate.AddDate(0, 0, 7)
	d.Schedule.ReturnDate = &tooLate

	assert.False(t, w.Next(d, wizardNow))
	assert.Contains(t, d.Errors, "returnDate")
}

func TestPrev(t *testing.T) {
	w := NewWizard(englishValidator)
	d := NewDraft("dress-1", storefront.OrderTypeSell, nil)

	assert.False(t, w.Prev(d))
	assert.Equal(t, StepCustomerInfo, d.Step)

	d.Step = StepAccessories
	assert.True(t, w.Prev(d))
	assert.Equal(t, StepMeasurements, d.Step)
}

func TestTransition_IsPure(t *testing.T) {
	d := validDraft(storefront.OrderTypeSell, wizardNow)
	d.Customer.Phone = "12"

	next, errs := Transition(englishValidator, StepCustomerInfo, d, wizardNow)
	assert.Equal(t, StepCustomerInfo, next)
	assert.Contains(t, errs, "phone")
	assert.Empty(t, d.Errors)
	assert.Equal(t, StepCustomerInfo, d.Step)

	next, errs = Transition(englishValidator, StepAccessories, d, wizardNow)
	assert.Equal(t, StepConfirmation, next)
	assert.Empty(t, errs)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "customer_info", StepCustomerInfo.String())
	assert.Equal(t, "confirmation", StepConfirmation.String())
	assert.Equal(t, "unknown", Step(9).String())
}
