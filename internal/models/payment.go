package models

import "time"

type Payment struct {
	ID            string    `json:"_id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	TransactionID string    `json:"transactionId"`
	Price         float64   `json:"price"`
	Date          time.Time `json:"date"`
	CartIDs       []string  `json:"cartIds"`
	MenuItemIDs   []string  `json:"menuItemIds"`
	Status        string    `json:"status,omitempty"`
}
