// Worker consumes fleet events from Kafka, evaluates the cold-chain threshold,
// and pushes alerts to Loki. Set KAFKA_BROKERS, EVENTS_KAFKA_TOPIC,
// KAFKA_GROUP_ID, LOKI_URL, and optionally ALERT_TEMP_MAX.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"smartbox-platform/backend/internal/alerts"
	"smartbox-platform/backend/internal/alerts/loki"
	"smartbox-platform/backend/internal/config"
	"smartbox-platform/backend/internal/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.EventsKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.LokiURL == "" {
		log.Fatal("worker: LOKI_URL is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.EventsKafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	detector := alerts.NewDetector(cfg.AlertTempMax)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s), ceiling %.1f°C, pushing to %s",
		cfg.EventsKafkaTopic, cfg.KafkaGroupID, cfg.AlertTempMax, cfg.LokiURL)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		var event events.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("worker: skipping undecodable event: %v", err)
			continue
		}
		alert, ok := detector.Evaluate(&event)
		if !ok {
			continue
		}

		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := loki.PushAlert(pushCtx, cfg.LokiURL, alert.ObservedAt, alert, alert.BoxID, alert.Severity); err != nil {
			log.Printf("worker: loki push failed: %v", err)
		} else {
			log.Printf("worker: alert pushed for %s (%.1f°C)", alert.BoxID, alert.Temperature)
		}
		pushCancel()
	}
}
