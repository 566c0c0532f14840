package models

import "time"

// Role decides which guarded routes a user may call.
type Role string

const (
	RoleUser        Role = "user"
	RoleAdmin       Role = "admin"
	RoleDeliveryMan Role = "deliveryMan"
)

type User struct {
	ID                string    `json:"_id"`
	Name              string    `json:"name,omitempty"`
	Email             string    `json:"email"`
	Photo             string    `json:"photo,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Role              Role      `json:"role"`
	BookedParcelCount int       `json:"bookedParcelCount"`
	TotalAmount       float64   `json:"totalAmount"`
	ParcelsDelivered  int       `json:"parcelsDelivered"`
	AverageRatings    float64   `json:"averageRatings"`
	ReviewCount       int       `json:"reviewCount"`
	CreatedAt         time.Time `json:"createdAt"`
}

// HasRole reports whether the user holds role r.
func (u *User) HasRole(r Role) bool {
	return u != nil && u.Role == r
}
