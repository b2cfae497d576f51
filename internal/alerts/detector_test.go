package alerts

import (
	"testing"
	"time"

	"smartbox-platform/backend/internal/events"
)

func floatPtr(v float64) *float64 { return &v }

func TestDetector_Evaluate(t *testing.T) {
	d := NewDetector(8.0)

	testCases := []struct {
		name  string
		event *events.Event
		want  bool
	}{
		{
			"above ceiling triggers",
			&events.Event{BoxID: "SMARTBOX-001", EventType: events.TypeReadingStored, Temperature: floatPtr(12.5)},
			true,
		},
		{
			"at ceiling does not trigger",
			&events.Event{BoxID: "SMARTBOX-001", EventType: events.TypeReadingStored, Temperature: floatPtr(8.0)},
			false,
		},
		{
			"below ceiling does not trigger",
			&events.Event{BoxID: "SMARTBOX-001", EventType: events.TypeReadingStored, Temperature: floatPtr(4.2)},
			false,
		},
		{
			"missing temperature does not trigger",
			&events.Event{BoxID: "SMARTBOX-001", EventType: events.TypeReadingStored},
			false,
		},
		{
			"lifecycle event does not trigger",
			&events.Event{EventType: events.TypeAccountApproved},
			false,
		},
		{
			"nil event does not trigger",
			nil,
			false,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			alert, ok := d.Evaluate(tc.event)
			if ok != tc.want {
				t.Fatalf("Evaluate = %v, want %v", ok, tc.want)
			}
			if ok && alert.Severity != SeverityDanger {
				t.Errorf("severity = %q, want %q", alert.Severity, SeverityDanger)
			}
		})
	}
}

func TestDetector_Evaluate_AlertFields(t *testing.T) {
	d := NewDetector(8.0)
	observed := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	alert, ok := d.Evaluate(&events.Event{
		BoxID:       "SMARTBOX-042",
		EventType:   events.TypeReadingStored,
		Temperature: floatPtr(15.0),
		CreatedAt:   observed,
	})
	if !ok {
		t.Fatal("expected an alert")
	}
	if alert.BoxID != "SMARTBOX-042" {
		t.Errorf("box_id = %q", alert.BoxID)
	}
	if alert.Temperature != 15.0 || alert.TempMax != 8.0 {
		t.Errorf("temperature = %v, temp_max = %v", alert.Temperature, alert.TempMax)
	}
	if !alert.ObservedAt.Equal(observed) {
		t.Errorf("observed_at = %v, want event time", alert.ObservedAt)
	}
	if alert.Message == "" {
		t.Error("message should be set")
	}
}
