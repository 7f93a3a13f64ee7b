package checkout

import (
	"encoding/json"
	"time"

	"github.com/wichananm65/bridal-checkout/internal/storefront"
)

// Session is one customer's checkout of one dress.
type Session struct {
	ID        string
	UserID    string
	Dress     storefront.Dress
	Catalog   []storefront.Accessory
	Draft     *Draft
	CreatedAt time.Time
	UpdatedAt time.Time
}

// record is the persisted form of a Session.
type record struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"userId"`
	Dress        storefront.Dress       `json:"dress"`
	Catalog      []storefront.Accessory `json:"catalog"`
	OrderType    storefront.OrderType   `json:"orderType"`
	Customer     Customer               `json:"customer"`
	Schedule     Schedule               `json:"schedule"`
	Measurements Measurements           `json:"measurements"`
	Accessories  map[string]int         `json:"accessories"`
	Errors       FieldErrors            `json:"validationErrors"`
	Step         Step                   `json:"step"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

func encodeSession(s *Session) ([]byte, error) {
	acc := make(map[string]int, s.Draft.Accessories.Len())
	for _, it := range s.Draft.Accessories.Items() {
		acc[it.AccessoryID] = it.Quantity
	}
	return json.Marshal(record{
		ID:           s.ID,
		UserID:       s.UserID,
		Dress:        s.Dress,
		Catalog:      s.Catalog,
		OrderType:    s.Draft.OrderType,
		Customer:     s.Draft.Customer,
		Schedule:     s.Draft.Schedule,
		Measurements: s.Draft.Measurements,
		Accessories:  acc,
		Errors:       s.Draft.Errors,
		Step:         s.Draft.Step,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	})
}

func decodeSession(b []byte) (*Session, error) {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	d := NewDraft(r.Dress.ID, r.OrderType, r.Catalog)
	d.Customer = r.Customer
	d.Schedule = r.Schedule
	d.Measurements = r.Measurements
	d.Accessories.Restore(r.Accessories)
	for k, msg := range r.Errors {
		d.Errors[k] = msg
	}
	if r.Step >= StepCustomerInfo && r.Step <= LastStep {
		d.Step = r.Step
	}
	return &Session{
		ID:        r.ID,
		UserID:    r.UserID,
		Dress:     r.Dress,
		Catalog:   r.Catalog,
		Draft:     d,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}
