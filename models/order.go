package models

// OrderLine is the per-item snapshot kept in history. Unit price is not
// retained per line; only the order's aggregate total is stored.
type OrderLine struct {
	ItemID int64  `json:"id"`
	Name   string `json:"name"`
	Qty    int    `json:"quantity"`
}

// Order is an immutable record of a completed checkout. ID and
// Timestamp are the same Unix-millisecond instant.
type Order struct {
	ID        int64       `json:"id"`
	Timestamp int64       `json:"timestamp"`
	Type      string      `json:"type"`
	Lines     []OrderLine `json:"items"`
	Total     int64       `json:"total"`
}
