package models

// MenuItem is an entry of the read-only service catalogue that payments
// reference through menuItemIds.
type MenuItem struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Recipe   string  `json:"recipe,omitempty"`
}
