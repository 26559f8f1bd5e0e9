package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"coffee-telegram/db"
	"coffee-telegram/models"

	"github.com/jackc/pgx/v5"
)

// HistorySlotKey is the single named slot holding the serialized order
// history. The key predates this implementation and is kept for
// compatibility with previously persisted data.
const HistorySlotKey = "jyllyOrderHistory"

// ErrCorruptHistory marks a slot value that could not be decoded. Load
// recovers by resetting to an empty history.
var ErrCorruptHistory = errors.New("corrupt order history")

// SlotStore is a single-value key-value store: whole-value reads and
// whole-value overwrites only.
type SlotStore interface {
	Read(ctx context.Context, key string) (value []byte, ok bool, err error)
	Write(ctx context.Context, key string, value []byte) error
}

// PGSlotStore keeps slots in the kv_slots table.
type PGSlotStore struct{}

func (PGSlotStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := db.Pool.QueryRow(ctx, `SELECT value FROM kv_slots WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (PGSlotStore) Write(ctx context.Context, key string, value []byte) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO kv_slots (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = $2,
			updated_at = now()`,
		key, value,
	)
	return err
}

// History is the persisted, newest-first log of placed orders. Orders
// are never edited or removed once recorded.
type History struct {
	store  SlotStore
	orders []models.Order
}

func NewHistory(store SlotStore) *History {
	return &History{store: store}
}

// Load replaces the in-memory sequence with the persisted one. A
// missing slot means an empty history. A slot that fails to decode
// resets the history to empty and reports ErrCorruptHistory; the next
// Persist overwrites the bad value.
func (h *History) Load(ctx context.Context) error {
	raw, ok, err := h.store.Read(ctx, HistorySlotKey)
	if err != nil {
		return fmt.Errorf("read history slot: %w", err)
	}
	if !ok {
		h.orders = nil
		return nil
	}
	var orders []models.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		h.orders = nil
		return fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	h.orders = orders
	return nil
}

// Prepend inserts the order at position 0, newest first.
func (h *History) Prepend(o models.Order) {
	h.orders = append([]models.Order{o}, h.orders...)
}

// Persist serializes the full sequence and overwrites the slot.
func (h *History) Persist(ctx context.Context) error {
	raw, err := json.Marshal(h.orders)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := h.store.Write(ctx, HistorySlotKey, raw); err != nil {
		return fmt.Errorf("write history slot: %w", err)
	}
	return nil
}

// Orders returns a copy of the history, newest first.
func (h *History) Orders() []models.Order {
	out := make([]models.Order, len(h.orders))
	copy(out, h.orders)
	return out
}

func (h *History) Len() int {
	return len(h.orders)
}
