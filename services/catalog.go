package services

import (
	"context"

	"coffee-telegram/db"
	"coffee-telegram/models"
)

// Catalog is the fixed set of purchasable items, loaded once at startup
// and never mutated afterwards.
type Catalog struct {
	items []models.MenuItem
	byID  map[int64]models.MenuItem
}

func NewCatalog(items []models.MenuItem) *Catalog {
	byID := make(map[int64]models.MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return &Catalog{items: items, byID: byID}
}

// LoadCatalog reads the full menu from the menu_items table.
func LoadCatalog(ctx context.Context) (*Catalog, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, description, price, img FROM menu_items
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Img); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return NewCatalog(items), nil
}

// Items returns the menu in id order.
func (c *Catalog) Items() []models.MenuItem {
	return c.items
}

func (c *Catalog) ByID(id int64) (models.MenuItem, bool) {
	it, ok := c.byID[id]
	return it, ok
}
