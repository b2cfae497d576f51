// Package ingest consumes telemetry messages from the fleet MQTT topic and
// persists them. The pipeline owns the full message lifecycle: decode,
// validate, insert, emit. Delivery is at-most-once; a message that fails any
// step is logged and dropped, never retried, and never kills the loop.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"smartbox-platform/backend/internal/events"
	"smartbox-platform/backend/internal/mqttclient"
	"smartbox-platform/backend/internal/reading/domain"
)

// handleTimeout bounds the insert for a single message so a stuck database
// does not pile up paho handler goroutines without limit.
const handleTimeout = 10 * time.Second

// payload is the wire format boxes publish. All measurements are optional;
// unknown fields are ignored. Timestamps in the payload are ignored too, the
// server assigns RecordedAt at insertion.
type payload struct {
	BoxID       string   `json:"box_id"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// ReadingStore is the slice of the reading repository the pipeline needs.
type ReadingStore interface {
	Insert(ctx context.Context, r *domain.SensorReading) error
}

// Pipeline decodes and persists telemetry messages. Safe for concurrent use;
// paho invokes the handler from its own goroutines.
type Pipeline struct {
	store   ReadingStore
	emitter events.EventEmitter

	stored  metric.Int64Counter
	dropped metric.Int64Counter
}

// NewPipeline returns a pipeline writing to store. emitter may be nil to
// disable event publishing. mp may be nil for a no-op meter.
func NewPipeline(store ReadingStore, emitter events.EventEmitter, mp metric.MeterProvider) (*Pipeline, error) {
	p := &Pipeline{store: store, emitter: emitter}
	if mp != nil {
		meter := mp.Meter("smartbox-platform/backend/internal/ingest")
		var err error
		p.stored, err = meter.Int64Counter("ingest.readings_stored",
			metric.WithDescription("Telemetry readings persisted to storage"))
		if err != nil {
			return nil, err
		}
		p.dropped, err = meter.Int64Counter("ingest.messages_dropped",
			metric.WithDescription("Telemetry messages dropped before persistence"))
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// subscribeQoS is 0: delivery is at-most-once end to end, so a message the
// broker never hands us is the same accepted loss as one dropped in decode.
const subscribeQoS = 0

// Start subscribes the pipeline to topic.
func (p *Pipeline) Start(client *mqttclient.Client, topic string) error {
	if err := client.Subscribe(topic, subscribeQoS, p.Handler()); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	log.Printf("ingest: subscribed to %s", topic)
	return nil
}

// Handler returns the MQTT message handler. Exposed so tests and alternate
// transports can feed messages without a broker.
func (p *Pipeline) Handler() mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()
		if err := p.HandleMessage(ctx, msg.Payload()); err != nil {
			log.Printf("ingest: dropped message on %s: %v", msg.Topic(), err)
		}
	}
}

// HandleMessage processes one raw message. A returned error means the message
// was dropped; the caller logs it and moves on.
func (p *Pipeline) HandleMessage(ctx context.Context, raw []byte) error {
	var in payload
	if err := json.Unmarshal(raw, &in); err != nil {
		p.drop(ctx, "malformed")
		return fmt.Errorf("decode payload: %w", err)
	}
	in.BoxID = strings.TrimSpace(in.BoxID)
	if in.BoxID == "" {
		p.drop(ctx, "missing_box_id")
		return fmt.Errorf("payload has no box_id")
	}

	reading := &domain.SensorReading{
		BoxID:       in.BoxID,
		Temperature: in.Temperature,
		Humidity:    in.Humidity,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if err := p.store.Insert(ctx, reading); err != nil {
		p.drop(ctx, "storage")
		return fmt.Errorf("insert reading for %s: %w", in.BoxID, err)
	}

	if p.stored != nil {
		p.stored.Add(ctx, 1)
	}
	events.EmitAsync(p.emitter, ctx, &events.Event{
		BoxID:       reading.BoxID,
		EventType:   events.TypeReadingStored,
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		CreatedAt:   reading.RecordedAt,
	})
	return nil
}

func (p *Pipeline) drop(ctx context.Context, reason string) {
	if p.dropped != nil {
		p.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}
