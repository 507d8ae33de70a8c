package domain

// Address is a saved delivery address on the user's profile.
type Address struct {
	ID        int64  `json:"address_id"`
	Label     string `json:"label"`
	Address   string `json:"address"`
	IsDefault bool   `json:"is_default"`
}
