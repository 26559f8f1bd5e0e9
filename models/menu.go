package models

import "fmt"

// MenuItem is one purchasable drink. Price is in cents.
type MenuItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Img         string `json:"img"`
}

// FormatPrice renders cents as dollars, e.g. 475 -> "$4.75".
func FormatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
