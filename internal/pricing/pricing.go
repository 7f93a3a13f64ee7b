// Package pricing computes order totals from the dress, the order type and
// the selected accessories.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/wichananm65/bridal-checkout/internal/accessory"
	"github.com/wichananm65/bridal-checkout/internal/storefront"
)

// Line is one priced accessory.
type Line struct {
	AccessoryID string          `json:"accessoryId"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Amount      decimal.Decimal `json:"amount"`
}

// Breakdown is the itemized price shown on the confirmation step.
type Breakdown struct {
	OrderType storefront.OrderType `json:"orderType"`
	Base      decimal.Decimal      `json:"base"`
	Lines     []Line               `json:"lines"`
	Total     decimal.Decimal      `json:"total"`
}

// ComputeTotal returns base price plus every selected accessory's unit price
// times quantity. Missing or malformed prices count as 0 and items that are
// not in the catalog add nothing.
func ComputeTotal(dress storefront.Dress, orderType storefront.OrderType, items []accessory.Item, catalog []storefront.Accessory) decimal.Decimal {
	return Itemize(dress, orderType, items, catalog).Total
}

// Itemize is ComputeTotal with the per-line amounts kept.
func Itemize(dress storefront.Dress, orderType storefront.OrderType, items []accessory.Item, catalog []storefront.Accessory) Breakdown {
	byID := make(map[string]storefront.Accessory, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}

	b := Breakdown{
		OrderType: orderType,
		Base:      dress.PriceFor(orderType).Amount(),
		Lines:     make([]Line, 0, len(items)),
	}
	b.Total = b.Base
	for _, it := range items {
		a, ok := byID[it.AccessoryID]
		if !ok || it.Quantity <= 0 {
			continue
		}
		unit := a.UnitPrice(orderType).Amount()
		amount := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
		b.Lines = append(b.Lines, Line{
			AccessoryID: a.ID,
			Name:        a.Name,
			Quantity:    it.Quantity,
			UnitPrice:   unit,
			Amount:      amount,
		})
		b.Total = b.Total.Add(amount)
	}
	return b
}
