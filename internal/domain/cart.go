package domain

// CartLine is one product line in a user's cart. The server owns the durable
// record; LineID is assigned there and unique within a cart.
type CartLine struct {
	LineID     int64  `json:"cart_item_id"`
	ProductID  int64  `json:"gallon_id"`
	Name       string `json:"name"`
	Liters     int    `json:"size"`
	PriceCents int64  `json:"price"`
	Quantity   int    `json:"quantity"`
	TotalCents int64  `json:"total_price"`
	ImageURL   string `json:"image_url"`

	// Selected is local UI state; the server has no concept of selection.
	Selected bool `json:"-"`
}

// LineTotalCents recomputes the line total from unit price and quantity. The
// stored TotalCents is whatever the server sent and is reconciled against this
// value on load, never trusted blindly.
func (l CartLine) LineTotalCents() int64 {
	return l.PriceCents * int64(l.Quantity)
}
