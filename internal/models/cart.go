package models

type CartItem struct {
	ID     string  `json:"_id"`
	Email  string  `json:"email"`
	MenuID string  `json:"menuId"`
	Name   string  `json:"name,omitempty"`
	Image  string  `json:"image,omitempty"`
	Price  float64 `json:"price"`
}
