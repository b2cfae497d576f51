// seed inserts development sample data for local testing.
// Idempotent: skips all inserts if the dev partner (devpartner) already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	accountdomain "smartbox-platform/backend/internal/account/domain"
	accountrepo "smartbox-platform/backend/internal/account/repository"
	"smartbox-platform/backend/internal/config"
	"smartbox-platform/backend/internal/db"
	ownershipdomain "smartbox-platform/backend/internal/ownership/domain"
	ownershiprepo "smartbox-platform/backend/internal/ownership/repository"
	readingdomain "smartbox-platform/backend/internal/reading/domain"
	readingrepo "smartbox-platform/backend/internal/reading/repository"
	"smartbox-platform/backend/internal/security"
)

const (
	devUsername = "devpartner"
	devPassword = "password123"
	devBoxID    = "SMARTBOX-DEV-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	accounts := accountrepo.NewPostgresRepository(conn)
	ownerships := ownershiprepo.NewPostgresRepository(conn)
	readings := readingrepo.NewPostgresRepository(conn)

	existing, err := accounts.GetByUsername(ctx, devUsername)
	if err != nil {
		log.Fatalf("seed: lookup: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", devUsername)
		return
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: hash: %v", err)
	}
	account := &accountdomain.Account{
		ID:           uuid.New().String(),
		Username:     devUsername,
		Email:        "dev@example.com",
		PasswordHash: hash,
		Role:         accountdomain.RoleAdmin,
		Approved:     true,
		CreatedAt:    time.Now().UTC(),
	}
	profile := &accountdomain.BusinessProfile{
		ID:           uuid.New().String(),
		AccountID:    account.ID,
		BusinessName: "Dev Cold Chain Co",
		BusinessType: "logistics",
		Address:      "Jl. Margonda Raya 1, Depok",
		Phone:        "+62-21-555-0100",
		CreatedAt:    account.CreatedAt,
	}
	if err := accounts.CreateWithProfile(ctx, account, profile); err != nil {
		log.Fatalf("seed: account: %v", err)
	}

	if err := ownerships.Create(ctx, &ownershipdomain.BoxOwnership{
		ID:        uuid.New().String(),
		AccountID: account.ID,
		BoxID:     devBoxID,
		Label:     "Dev test box",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		log.Fatalf("seed: ownership: %v", err)
	}

	// A few readings so the dashboard has something to show, one of them past
	// the cold-chain ceiling.
	for _, temp := range []float64{3.8, 4.1, 12.6} {
		t := temp
		h := 55.0
		lat := -6.3625
		lon := 106.8269
		if err := readings.Insert(ctx, &readingdomain.SensorReading{
			BoxID:       devBoxID,
			Temperature: &t,
			Humidity:    &h,
			Latitude:    &lat,
			Longitude:   &lon,
		}); err != nil {
			log.Fatalf("seed: reading: %v", err)
		}
	}

	log.Printf("seed: created %s / %s with box %s and 3 readings", devUsername, devPassword, devBoxID)
}
