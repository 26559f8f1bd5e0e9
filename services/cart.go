package services

import (
	"errors"

	"coffee-telegram/models"
)

// ErrItemNotFound is returned when an operation references an item id
// the catalog does not contain.
var ErrItemNotFound = errors.New("menu item not found")

// CartLine pairs a menu item snapshot (copied at add time) with its
// quantity. Qty is always >= 1; a line that would drop to zero is
// deleted instead of kept.
type CartLine struct {
	Item models.MenuItem
	Qty  int
}

// Cart holds the in-progress selection for one chat. Lines keep
// first-add order and there is at most one line per item id.
type Cart struct {
	catalog *Catalog
	lines   []CartLine
}

func NewCart(catalog *Catalog) *Cart {
	return &Cart{catalog: catalog}
}

// AddItem increments the existing line for itemID, or appends a new
// line with quantity 1. An unknown id is rejected with ErrItemNotFound
// and leaves the cart unchanged.
func (c *Cart) AddItem(itemID int64) error {
	for i := range c.lines {
		if c.lines[i].Item.ID == itemID {
			c.lines[i].Qty++
			return nil
		}
	}
	item, ok := c.catalog.ByID(itemID)
	if !ok {
		return ErrItemNotFound
	}
	c.lines = append(c.lines, CartLine{Item: item, Qty: 1})
	return nil
}

// ChangeQuantity adds delta to the line's quantity. The line keeps its
// position unless the result drops to zero or below, in which case it
// is removed. Returns false when no line exists for itemID.
func (c *Cart) ChangeQuantity(itemID int64, delta int) bool {
	for i := range c.lines {
		if c.lines[i].Item.ID == itemID {
			c.lines[i].Qty += delta
			if c.lines[i].Qty <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			}
			return true
		}
	}
	return false
}

// RemoveItem deletes the line for itemID if present.
func (c *Cart) RemoveItem(itemID int64) {
	for i := range c.lines {
		if c.lines[i].Item.ID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Total is the cart sum in cents. Zero for an empty cart.
func (c *Cart) Total() int64 {
	var sum int64
	for _, l := range c.lines {
		sum += l.Item.Price * int64(l.Qty)
	}
	return sum
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy so callers cannot mutate cart state.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}
