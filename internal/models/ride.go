// internal/models/ride.go
package models

import "time"

// Ride statuses reported by the ride service.
const (
	RideStatusPending    = "pending"
	RideStatusAccepted   = "accepted"
	RideStatusArrived    = "arrived"
	RideStatusPickedUp   = "pickedUp"
	RideStatusDroppedOff = "droppedOff"
	RideStatusCanceled   = "canceled"
)

// LyftRide is one ride booked on behalf of a phone number.
type LyftRide struct {
	ID        string    `json:"id" db:"id"`
	Phone     string    `json:"phone" db:"phone"`
	RideID    string    `json:"rideId" db:"ride_id"`
	Status    string    `json:"status" db:"status"`
	RideType  string    `json:"rideType" db:"ride_type"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
