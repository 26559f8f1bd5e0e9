package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coffee-telegram/models"
)

// ErrEmptyCart is returned when checkout is attempted on an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// PlaceOrder turns a non-empty cart into an immutable order: snapshots
// the cart lines, prepends the order to history, persists the history,
// then clears the cart. The order's id and timestamp are the same
// Unix-millisecond instant taken from now. If persisting fails the
// prepend is undone and the cart is left exactly as it was.
func PlaceOrder(ctx context.Context, cart *Cart, orderType string, hist *History, now func() time.Time) (*models.Order, error) {
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	instant := now().UnixMilli()
	lines := make([]models.OrderLine, 0, len(cart.lines))
	for _, l := range cart.lines {
		lines = append(lines, models.OrderLine{ItemID: l.Item.ID, Name: l.Item.Name, Qty: l.Qty})
	}
	order := models.Order{
		ID:        instant,
		Timestamp: instant,
		Type:      orderType,
		Lines:     lines,
		Total:     cart.Total(),
	}

	hist.Prepend(order)
	if err := hist.Persist(ctx); err != nil {
		// Roll back the prepend so memory and the slot never diverge.
		hist.orders = hist.orders[1:]
		return nil, fmt.Errorf("persist history: %w", err)
	}
	cart.Clear()
	return &order, nil
}
