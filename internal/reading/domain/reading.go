package domain

import (
	"errors"
	"time"
)

// SensorReading is one telemetry record from a smart box. Immutable once
// written; RecordedAt is assigned by the server at insertion, never taken from
// the sender.
type SensorReading struct {
	ID          int64
	BoxID       string
	Temperature *float64
	Humidity    *float64
	Latitude    *float64
	Longitude   *float64
	RecordedAt  time.Time
}

// Validate validates the reading for persistence.
func (r *SensorReading) Validate() error {
	if r.BoxID == "" {
		return errors.New("box_id is required")
	}
	return nil
}
