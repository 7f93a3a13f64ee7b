// Package accessory tracks which shop accessories a customer picked and how
// many of each.
package accessory

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/wichananm65/bridal-checkout/internal/storefront"
)

// MaxQuantity is the most of one accessory a single order may carry.
const MaxQuantity = 20

var (
	ErrUnknownAccessory = errors.New("accessory not found in shop")
	ErrUnavailable      = errors.New("accessory not offered for this order type")
	ErrQuantityLimit    = fmt.Errorf("quantity must not exceed %d", MaxQuantity)
)

// Item is one selected accessory line.
type Item struct {
	AccessoryID string `json:"accessoryId"`
	Quantity    int    `json:"quantity"`
}

// Selection maps accessory id to quantity. An id is selected iff it is
// present, and present quantities are always in [1, MaxQuantity].
//
// A Selection is not safe for concurrent use.
type Selection struct {
	known    map[string]bool
	quantity map[string]int
}

// NewSelection returns an empty selection that accepts the catalog entries
// offered for orderType.
func NewSelection(catalog []storefront.Accessory, orderType storefront.OrderType) *Selection {
	s := &Selection{
		known:    make(map[string]bool, len(catalog)),
		quantity: make(map[string]int),
	}
	for _, a := range catalog {
		s.known[a.ID] = a.Allows(orderType)
	}
	return s
}

func (s *Selection) check(id string) error {
	offered, ok := s.known[id]
	if !ok {
		return ErrUnknownAccessory
	}
	if !offered {
		return ErrUnavailable
	}
	return nil
}

// Toggle removes id when selected, otherwise selects it with quantity 1.
// It reports whether id is selected afterwards.
func (s *Selection) Toggle(id string) (bool, error) {
	if _, ok := s.quantity[id]; ok {
		delete(s.quantity, id)
		return false, nil
	}
	if err := s.check(id); err != nil {
		return false, err
	}
	s.quantity[id] = 1
	return true, nil
}

// SetQuantity sets the quantity of id. qty <= 0 removes the entry; qty above
// MaxQuantity is rejected and leaves the entry unchanged.
func (s *Selection) SetQuantity(id string, qty int) error {
	if qty <= 0 {
		delete(s.quantity, id)
		return nil
	}
	if err := s.check(id); err != nil {
		return err
	}
	if qty > MaxQuantity {
		return ErrQuantityLimit
	}
	s.quantity[id] = qty
	return nil
}

// Quantity returns the selected quantity of id, 0 when not selected.
func (s *Selection) Quantity(id string) int {
	return s.quantity[id]
}

// Len returns the number of selected accessories.
func (s *Selection) Len() int {
	return len(s.quantity)
}

// Items returns the selection ordered by accessory id.
func (s *Selection) Items() []Item {
	ids := slices.Sorted(maps.Keys(s.quantity))
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, Item{AccessoryID: id, Quantity: s.quantity[id]})
	}
	return out
}

// Restore replaces the selection with saved quantities. Entries that are no
// longer in the catalog or fall outside [1, MaxQuantity] are dropped.
func (s *Selection) Restore(saved map[string]int) {
	s.quantity = make(map[string]int, len(saved))
	for id, qty := range saved {
		if qty < 1 || qty > MaxQuantity || s.check(id) != nil {
			continue
		}
		s.quantity[id] = qty
	}
}

// MarshalJSON encodes the selection as {"id": quantity}.
func (s *Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.quantity)
}
