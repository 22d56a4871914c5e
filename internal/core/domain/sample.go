package domain

import (
	"errors"
	"time"
)

var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Coordinates represents a geographic point in decimal degrees (WGS84).
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Valid reports whether the point lies within the WGS84 coordinate ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Sample is one raw device-location observation. A Sample is immutable
// once created; CapturedAt is the authoritative time for ordering.
type Sample struct {
	DeviceID    string      `json:"device_id" bson:"device_id"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
	// AccuracyM is the reported horizontal accuracy in meters; 0 when the
	// source could not provide one.
	AccuracyM  float64   `json:"accuracy_m" bson:"accuracy_m"`
	CapturedAt time.Time `json:"captured_at" bson:"captured_at"`
}

// NewSample validates the coordinate ranges and normalises the capture
// time to UTC.
func NewSample(deviceID string, coords Coordinates, accuracyM float64, capturedAt time.Time) (Sample, error) {
	if !coords.Valid() {
		return Sample{}, ErrInvalidCoordinates
	}
	return Sample{
		DeviceID:    deviceID,
		Coordinates: coords,
		AccuracyM:   accuracyM,
		CapturedAt:  capturedAt.UTC(),
	}, nil
}
