package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleDevice = "device"
)

// Device models a registered tracking device bound to a trip.
type Device struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	TripID     string    `json:"trip_id"`
	SecretHash string    `json:"-"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
