// Package events publishes fleet lifecycle events to Kafka so downstream
// consumers (the alert worker, ops tooling) can react without coupling to the
// ingest or API paths.
package events

import (
	"context"
	"time"
)

// Event types emitted by the platform.
const (
	TypeReadingStored   = "reading_stored"
	TypeBoxClaimed      = "box_claimed"
	TypeAccountApproved = "account_approved"
)

// Event is one fleet event. Sensor fields are pointers because a box may omit
// any measurement; lifecycle events carry none.
type Event struct {
	BoxID       string    `json:"box_id,omitempty"`
	AccountID   string    `json:"account_id,omitempty"`
	EventType   string    `json:"event_type"`
	Temperature *float64  `json:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventEmitter emits fleet events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
