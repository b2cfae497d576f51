package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accounthandler "smartbox-platform/backend/internal/account/handler"
	accountrepo "smartbox-platform/backend/internal/account/repository"
	accountservice "smartbox-platform/backend/internal/account/service"
	adminhandler "smartbox-platform/backend/internal/admin/handler"
	"smartbox-platform/backend/internal/authz"
	"smartbox-platform/backend/internal/config"
	"smartbox-platform/backend/internal/db"
	"smartbox-platform/backend/internal/db/migrate"
	"smartbox-platform/backend/internal/events"
	"smartbox-platform/backend/internal/events/producer"
	healthhandler "smartbox-platform/backend/internal/health/handler"
	"smartbox-platform/backend/internal/ingest"
	"smartbox-platform/backend/internal/mqttclient"
	"smartbox-platform/backend/internal/observability/otel"
	ownershiphandler "smartbox-platform/backend/internal/ownership/handler"
	ownershiprepo "smartbox-platform/backend/internal/ownership/repository"
	ownershipservice "smartbox-platform/backend/internal/ownership/service"
	readinghandler "smartbox-platform/backend/internal/reading/handler"
	readingrepo "smartbox-platform/backend/internal/reading/repository"
	"smartbox-platform/backend/internal/security"
	"smartbox-platform/backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate: %v", err)
	}

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "smartbox-server", false)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}

	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.TokenTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	accounts := accountrepo.NewPostgresRepository(conn)
	readings := readingrepo.NewPostgresRepository(conn)
	ownerships := ownershiprepo.NewPostgresRepository(conn)

	auth := accountservice.NewAuthService(accounts, hasher, tokens)
	registry := ownershipservice.NewRegistry(ownerships)

	if err := auth.Bootstrap(ctx, cfg.SuperAdminUsername, cfg.SuperAdminPassword); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	policy, err := authz.NewOPAEvaluator(ctx)
	if err != nil {
		log.Fatalf("authz: %v", err)
	}

	emitter, err := producer.NewKafkaProducer(cfg.EventsKafkaBrokersList(), cfg.EventsKafkaTopic)
	if err != nil {
		log.Fatalf("events: %v", err)
	}
	if emitter == nil {
		log.Println("events: kafka not configured, event publishing disabled")
	}

	pipeline, err := ingest.NewPipeline(readings, asEmitter(emitter), providers.MeterProvider)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}
	mqttConn, err := mqttclient.New(mqttclient.Options{
		BrokerURL: cfg.MQTTBrokerURL,
		ClientID:  cfg.MQTTClientID,
	})
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	if err := pipeline.Start(mqttConn, cfg.MQTTTopic); err != nil {
		log.Fatalf("ingest: %v", err)
	}

	router := server.NewRouter(server.Handlers{
		Auth:      accounthandler.NewAuthHandler(auth),
		Readings:  readinghandler.NewReadingHandler(readings, registry, cfg.MaxPageSize),
		Ownership: ownershiphandler.NewOwnershipHandler(registry),
		Admin:     adminhandler.NewAdminHandler(auth, readings, policy, asEmitter(emitter)),
		Health:    healthhandler.NewHealthHandler(conn, policy),
	}, tokens, cfg.CORSOrigins())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("http server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	mqttConn.Close()

	// Let in-flight async event emits drain before tearing down the producer.
	time.Sleep(events.ShutdownDrainDuration)
	if err := emitter.Close(); err != nil {
		log.Printf("events close: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("stopped")
}

// asEmitter converts the possibly-nil concrete producer to the interface
// without producing a non-nil interface holding a nil pointer.
func asEmitter(p *producer.KafkaProducer) events.EventEmitter {
	if p == nil {
		return nil
	}
	return p
}
