// Package checkout runs the buy/rent checkout for a single dress: the draft
// the customer fills in, the four-step wizard that gates it, sessions that
// hold drafts between requests and the final order submission.
package checkout

import (
	"time"

	"github.com/wichananm65/bridal-checkout/internal/accessory"
	"github.com/wichananm65/bridal-checkout/internal/storefront"
	"github.com/wichananm65/bridal-checkout/internal/validation"
)

// FieldErrors maps a field key to its display message. Customer keys are
// plain ("phone", "dueDate"); measurement keys carry the "measurement_"
// prefix.
type FieldErrors map[string]string

// Customer is the contact block of step 0.
type Customer struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Schedule holds the chosen delivery and return days. ReturnDate only means
// something for rentals.
type Schedule struct {
	DueDate    *time.Time `json:"dueDate,omitempty"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
}

// Measurements are the body measurements of step 1. Zero means not provided.
type Measurements struct {
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	Bust          float64 `json:"bust"`
	Waist         float64 `json:"waist"`
	Hip           float64 `json:"hip"`
	Armpit        float64 `json:"armpit"`
	Bicep         float64 `json:"bicep"`
	Neck          float64 `json:"neck"`
	ShoulderWidth float64 `json:"shoulderWidth"`
	SleeveLength  float64 `json:"sleeveLength"`
	BackLength    float64 `json:"backLength"`
	LowerWaist    float64 `json:"lowerWaist"`
	WaistToFloor  float64 `json:"waistToFloor"`
}

func (m *Measurements) field(f validation.Field) *float64 {
	switch f {
	case validation.Height:
		return &m.Height
	case validation.Weight:
		return &m.Weight
	case validation.Bust:
		return &m.Bust
	case validation.Waist:
		return &m.Waist
	case validation.Hip:
		return &m.Hip
	case validation.Armpit:
		return &m.Armpit
	case validation.Bicep:
		return &m.Bicep
	case validation.Neck:
		return &m.Neck
	case validation.ShoulderWidth:
		return &m.ShoulderWidth
	case validation.SleeveLength:
		return &m.SleeveLength
	case validation.BackLength:
		return &m.BackLength
	case validation.LowerWaist:
		return &m.LowerWaist
	case validation.WaistToFloor:
		return &m.WaistToFloor
	}
	return nil
}

// Set stores v for f. It reports false for an unknown field.
func (m *Measurements) Set(f validation.Field, v float64) bool {
	p := m.field(f)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// Values returns the measurements keyed by field.
func (m Measurements) Values() map[validation.Field]float64 {
	out := make(map[validation.Field]float64, len(validation.AllFields))
	for _, f := range validation.AllFields {
		out[f] = *m.field(f)
	}
	return out
}

// Draft is the order being assembled. DressID and OrderType are fixed when
// the draft is created.
type Draft struct {
	DressID      string
	OrderType    storefront.OrderType
	Customer     Customer
	Schedule     Schedule
	Measurements Measurements
	Accessories  *accessory.Selection
	Errors       FieldErrors
	Step         Step
}

// NewDraft returns an empty draft at the first step. catalog is the shop's
// accessory listing the selection is checked against.
func NewDraft(dressID string, orderType storefront.OrderType, catalog []storefront.Accessory) *Draft {
	return &Draft{
		DressID:     dressID,
		OrderType:   orderType,
		Accessories: accessory.NewSelection(catalog, orderType),
		Errors:      make(FieldErrors),
	}
}

// SetError records msg under key, or clears key when msg is empty.
func (d *Draft) SetError(key, msg string) {
	if msg == "" {
		delete(d.Errors, key)
		return
	}
	d.Errors[key] = msg
}

func (d *Draft) replaceErrors(keys []string, errs FieldErrors) {
	for _, k := range keys {
		delete(d.Errors, k)
	}
	for k, msg := range errs {
		d.Errors[k] = msg
	}
}

// contact returns the customer block in the form the validators take.
func (d *Draft) contact() validation.Contact {
	return validation.Contact{
		Phone:   d.Customer.Phone,
		Email:   d.Customer.Email,
		Address: d.Customer.Address,
	}
}
