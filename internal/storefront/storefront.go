// Package storefront is the HTTP client for the marketplace REST backend:
// dress lookup, shop accessory listings, order creation and wallet deposits.
package storefront

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderType says whether a dress is bought or rented.
type OrderType string

const (
	OrderTypeSell OrderType = "SELL"
	OrderTypeRent OrderType = "RENT"
)

// ParseOrderType accepts "sell"/"rent" in any case.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(strings.ToUpper(strings.TrimSpace(s))) {
	case OrderTypeSell:
		return OrderTypeSell, nil
	case OrderTypeRent:
		return OrderTypeRent, nil
	}
	return "", fmt.Errorf("unknown order type %q", s)
}

// Price is a monetary amount as the backend sends it. Some records carry
// strings ("500000"), some numbers, some nothing at all.
type Price string

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Price(strings.TrimSpace(s))
		return nil
	}
	// numbers are kept verbatim; anything else is stored and later read as 0
	*p = Price(b)
	return nil
}

// Amount parses the price. Missing, malformed and negative values are 0.
func (p Price) Amount() decimal.Decimal {
	if p == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(string(p))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Dress is the subset of a dress record checkout needs.
type Dress struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ShopID      string `json:"shopId"`
	SellPrice   Price  `json:"sellPrice"`
	RentalPrice Price  `json:"rentalPrice"`
	IsSellable  bool   `json:"isSellable"`
	IsRentable  bool   `json:"isRentable"`
}

// Allows reports whether the dress can be ordered as t.
func (d Dress) Allows(t OrderType) bool {
	switch t {
	case OrderTypeSell:
		return d.IsSellable
	case OrderTypeRent:
		return d.IsRentable
	}
	return false
}

// PriceFor returns the base price for an order type.
func (d Dress) PriceFor(t OrderType) Price {
	if t == OrderTypeRent {
		return d.RentalPrice
	}
	return d.SellPrice
}

// Accessory is an add-on item sold or rented by a shop.
type Accessory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ShopID      string `json:"shopId"`
	SellPrice   Price  `json:"sellPrice"`
	RentalPrice Price  `json:"rentalPrice"`
	IsSellable  bool   `json:"isSellable"`
	IsRentable  bool   `json:"isRentable"`
}

// Allows reports whether the accessory is offered for t.
func (a Accessory) Allows(t OrderType) bool {
	switch t {
	case OrderTypeSell:
		return a.IsSellable
	case OrderTypeRent:
		return a.IsRentable
	}
	return false
}

// UnitPrice returns the per-item price for an order type.
func (a Accessory) UnitPrice(t OrderType) Price {
	if t == OrderTypeRent {
		return a.RentalPrice
	}
	return a.SellPrice
}

// AccessoryPage is one page of a shop's accessory listing.
type AccessoryPage struct {
	Items      []Accessory `json:"items"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
	Total      int         `json:"total"`
}

// NewOrder is the customer and schedule part of an order request.
type NewOrder struct {
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Address    string    `json:"address"`
	DueDate    string    `json:"dueDate"`
	Type       OrderType `json:"type"`
	ReturnDate string    `json:"returnDate,omitempty"`
}

// DressDetails carries the dress id and the full measurement set.
type DressDetails struct {
	DressID       string  `json:"dressId"`
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

// AccessoryDetail is one selected accessory line.
type AccessoryDetail struct {
	AccessoryID string `json:"accessoryId"`
	Quantity    int    `json:"quantity"`
}

// CreateOrderRequest is the body of the order-creation call.
type CreateOrderRequest struct {
	NewOrder           NewOrder          `json:"newOrder"`
	DressDetails       DressDetails      `json:"dressDetails"`
	AccessoriesDetails []AccessoryDetail `json:"accessoriesDetails"`
}

// CreateOrderResult is the success payload of the order-creation call.
type CreateOrderResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	TotalAmount Price  `json:"totalAmount"`
}

// DepositRequest asks the wallet service for a payment page.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// DepositResult points the user at the external payment page.
type DepositResult struct {
	CheckoutURL   string `json:"checkoutUrl"`
	TransactionID string `json:"transactionId"`
}
