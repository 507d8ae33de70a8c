package domain

// Product is a catalog entry (a refillable water gallon).
type Product struct {
	ID         int64  `json:"gallon_id"`
	Name       string `json:"name"`
	Liters     int    `json:"size"`
	PriceCents int64  `json:"price"`
	ImageURL   string `json:"image_url"`
}
