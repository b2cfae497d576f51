// Package alerts turns stored-reading events into cold-chain alerts. The
// worker consumes fleet events from Kafka, evaluates each against the
// configured temperature ceiling, and pushes breaches to Loki.
package alerts

import (
	"fmt"
	"time"

	"smartbox-platform/backend/internal/events"
)

// Severity of an alert.
const (
	SeverityDanger = "danger"
)

// Alert is a single cold-chain breach derived from one reading event.
type Alert struct {
	BoxID       string    `json:"box_id"`
	Severity    string    `json:"severity"`
	Temperature float64   `json:"temperature"`
	TempMax     float64   `json:"temp_max"`
	Message     string    `json:"message"`
	ObservedAt  time.Time `json:"observed_at"`
}

// Detector evaluates reading events against the cold-chain ceiling.
type Detector struct {
	tempMax float64
}

// NewDetector returns a detector with the given maximum safe temperature in
// degrees Celsius.
func NewDetector(tempMax float64) *Detector {
	return &Detector{tempMax: tempMax}
}

// Evaluate returns the alert for the event, or false when no alert applies.
// Only reading_stored events with a temperature above the ceiling trigger;
// events without a temperature never do.
func (d *Detector) Evaluate(event *events.Event) (*Alert, bool) {
	if event == nil || event.EventType != events.TypeReadingStored {
		return nil, false
	}
	if event.Temperature == nil || *event.Temperature <= d.tempMax {
		return nil, false
	}
	observed := event.CreatedAt
	if observed.IsZero() {
		observed = time.Now().UTC()
	}
	return &Alert{
		BoxID:       event.BoxID,
		Severity:    SeverityDanger,
		Temperature: *event.Temperature,
		TempMax:     d.tempMax,
		Message:     fmt.Sprintf("box %s at %.1f°C exceeds cold-chain ceiling %.1f°C", event.BoxID, *event.Temperature, d.tempMax),
		ObservedAt:  observed,
	}, true
}
