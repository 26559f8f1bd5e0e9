package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"coffee-telegram/models"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	hist := NewHistory(store)
	cart := NewCart(testCatalog())

	order, err := PlaceOrder(ctx, cart, OrderTypeDineIn, hist, fixedClock(1))
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("PlaceOrder = %v, want ErrEmptyCart", err)
	}
	if order != nil {
		t.Error("no order should be returned on failure")
	}
	if hist.Len() != 0 {
		t.Error("history must be unchanged")
	}
	if len(store.slots) != 0 {
		t.Error("nothing should have been persisted")
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	hist := NewHistory(store)
	cart := NewCart(testCatalog())

	// Espresso ×2, Latte ×1, then drop one Espresso: $7.75.
	for _, id := range []int64{1, 1, 3} {
		if err := cart.AddItem(id); err != nil {
			t.Fatalf("AddItem(%d): %v", id, err)
		}
	}
	cart.ChangeQuantity(1, -1)

	const instant = int64(1700000000000)
	order, err := PlaceOrder(ctx, cart, OrderTypeTakeout, hist, fixedClock(instant))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if order.ID != instant || order.Timestamp != instant {
		t.Errorf("id/timestamp = %d/%d, want both %d", order.ID, order.Timestamp, instant)
	}
	if order.Type != OrderTypeTakeout {
		t.Errorf("type = %q, want %q", order.Type, OrderTypeTakeout)
	}
	if order.Total != 775 {
		t.Errorf("total = %d, want 775", order.Total)
	}
	wantLines := []models.OrderLine{
		{ItemID: 1, Name: "Espresso", Qty: 1},
		{ItemID: 3, Name: "Latte", Qty: 1},
	}
	if !reflect.DeepEqual(order.Lines, wantLines) {
		t.Errorf("lines = %+v, want %+v", order.Lines, wantLines)
	}

	if !cart.IsEmpty() {
		t.Error("cart must be cleared after checkout")
	}
	if hist.Len() != 1 || !reflect.DeepEqual(hist.Orders()[0], *order) {
		t.Errorf("history[0] = %+v, want the placed order", hist.Orders())
	}

	// Round-trip law: a fresh load reconstructs an equal sequence.
	fresh := NewHistory(store)
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(fresh.Orders(), hist.Orders()) {
		t.Errorf("persisted history differs:\n got %+v\nwant %+v", fresh.Orders(), hist.Orders())
	}
}

func TestPlaceOrder_PrependsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	hist := NewHistory(store)
	cart := NewCart(testCatalog())

	_ = cart.AddItem(1)
	first, err := PlaceOrder(ctx, cart, OrderTypeDineIn, hist, fixedClock(1000))
	if err != nil {
		t.Fatalf("first PlaceOrder: %v", err)
	}
	_ = cart.AddItem(3)
	second, err := PlaceOrder(ctx, cart, OrderTypeTakeout, hist, fixedClock(2000))
	if err != nil {
		t.Fatalf("second PlaceOrder: %v", err)
	}

	orders := hist.Orders()
	if len(orders) != 2 || orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Errorf("history order = %+v, want newest first", orders)
	}
}

func TestPlaceOrder_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.failWrites = true
	hist := NewHistory(store)
	cart := NewCart(testCatalog())

	_ = cart.AddItem(1)
	_ = cart.AddItem(5)
	before := cart.Lines()

	order, err := PlaceOrder(ctx, cart, OrderTypeDineIn, hist, fixedClock(3000))
	if err == nil {
		t.Fatal("PlaceOrder should fail when the store does")
	}
	if order != nil {
		t.Error("no order should be returned on failure")
	}
	if hist.Len() != 0 {
		t.Error("failed persist must roll back the prepend")
	}
	if !reflect.DeepEqual(before, cart.Lines()) {
		t.Error("cart must be untouched when persist fails")
	}
}

func TestOrderTypeSelector(t *testing.T) {
	s := NewOrderTypeSelector()
	if s.Value() != OrderTypeDineIn {
		t.Errorf("default = %q, want %q", s.Value(), OrderTypeDineIn)
	}
	s.Set(OrderTypeTakeout)
	if s.Value() != OrderTypeTakeout {
		t.Errorf("after Set = %q, want %q", s.Value(), OrderTypeTakeout)
	}
	// The selector stores whatever it is given; validation is the
	// presentation layer's job.
	s.Set("Curbside")
	if s.Value() != "Curbside" {
		t.Errorf("after Set = %q, want %q", s.Value(), "Curbside")
	}
}
