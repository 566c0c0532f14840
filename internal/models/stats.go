package models

type HomeStats struct {
	BookedParcelsCount    int64 `json:"bookedParcelsCount"`
	DeliveredParcelsCount int64 `json:"deliveredParcelsCount"`
	UsersCount            int64 `json:"usersCount"`
}

type AdminStats struct {
	Users     int64   `json:"users"`
	MenuItems int64   `json:"menuItems"`
	Orders    int64   `json:"orders"`
	Parcels   int64   `json:"parcels"`
	Revenue   float64 `json:"revenue"`
}

// CategoryStats is one row of the order breakdown.
type CategoryStats struct {
	Category string  `json:"category"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// DailyBookings counts parcels due for delivery on Date (YYYY-MM-DD, UTC).
type DailyBookings struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
