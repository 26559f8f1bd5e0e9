package services

// Fulfilment labels offered by the presentation layer.
const (
	OrderTypeDineIn  = "Dine In"
	OrderTypeTakeout = "Takeout"
)

// OrderTypeSelector holds the currently selected fulfilment label. Set
// stores whatever it is given; the fixed choice set lives with the
// presentation layer, not here.
type OrderTypeSelector struct {
	value string
}

func NewOrderTypeSelector() *OrderTypeSelector {
	return &OrderTypeSelector{value: OrderTypeDineIn}
}

func (s *OrderTypeSelector) Set(value string) {
	s.value = value
}

func (s *OrderTypeSelector) Value() string {
	return s.value
}
