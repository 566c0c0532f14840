package models

import "time"

type ParcelStatus string

const (
	ParcelStatusPending   ParcelStatus = "pending"
	ParcelStatusOnTheWay  ParcelStatus = "onTheWay"
	ParcelStatusDelivered ParcelStatus = "delivered"
	ParcelStatusReturned  ParcelStatus = "returned"
	ParcelStatusCancelled ParcelStatus = "cancelled"
)

type Parcel struct {
	ID                    string       `json:"_id"`
	Name                  string       `json:"name,omitempty"`
	Email                 string       `json:"email"`
	PhoneNumber           string       `json:"phoneNumber,omitempty"`
	ParcelType            string       `json:"parcelType,omitempty"`
	ParcelWeight          float64      `json:"parcelWeight"`
	ReceiverName          string       `json:"receiverName,omitempty"`
	ReceiverPhone         string       `json:"receiverPhone,omitempty"`
	DeliveryAddress       string       `json:"deliveryAddress,omitempty"`
	DeliveryDate          time.Time    `json:"deliveryDate"`
	DeliveryDateReq       string       `json:"deliveryDateReq,omitempty"`
	DeliveryLat           float64      `json:"deliveryLat"`
	DeliveryLong          float64      `json:"deliveryLong"`
	Price                 float64      `json:"price"`
	Status                ParcelStatus `json:"status"`
	DeliveryManID         string       `json:"deliveryManId,omitempty"`
	EstimatedDeliveryDate string       `json:"estimatedDeliveryDate,omitempty"`
	BookingDate           time.Time    `json:"bookingDate"`
	ParcelImage           string       `json:"parcelImage,omitempty"`
}

// ParcelDetails holds the fields a full parcel edit overwrites.
type ParcelDetails struct {
	PhoneNumber     string
	ParcelType      string
	ParcelWeight    float64
	ReceiverName    string
	ReceiverPhone   string
	DeliveryAddress string
	DeliveryDate    time.Time
	DeliveryDateReq string
	DeliveryLat     float64
	DeliveryLong    float64
	Price           float64
}

// StatusUpdate is the assignment a status patch writes. All three fields are
// written, empty values included.
type StatusUpdate struct {
	Status                ParcelStatus `json:"status"`
	DeliveryManID         string       `json:"deliveryManId"`
	EstimatedDeliveryDate string       `json:"estimatedDeliveryDate"`
}
