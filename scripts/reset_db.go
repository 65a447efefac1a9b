//go:build ignore

// Пересоздаёт таблицы contacts, listings и demandes.
// Запуск: DATABASE_URL=postgres://... go run scripts/reset_db.go

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

func main() {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	fmt.Println("Connecting to database...")
	fmt.Printf("Host: %s\n", extractHost(connStr))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	commands := []string{
		"DROP TABLE IF EXISTS contacts CASCADE",
		"DROP TABLE IF EXISTS listings CASCADE",
		"DROP TABLE IF EXISTS demandes CASCADE",

		`CREATE TABLE contacts (
			contact_id       UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			demand_id        TEXT,
			first_name       TEXT        NOT NULL DEFAULT '',
			last_name        TEXT        NOT NULL DEFAULT '',
			phone            TEXT        NOT NULL DEFAULT '',
			transaction_type TEXT        NOT NULL DEFAULT '',
			budget           TEXT,
			description      TEXT        NOT NULL DEFAULT '',
			location         TEXT        NOT NULL DEFAULT '',
			housing_type     TEXT        NOT NULL DEFAULT '',
			married          TEXT        NOT NULL DEFAULT '',
			family_size      INT,
			status           TEXT        NOT NULL DEFAULT 'new',
			scheduled_at     TIMESTAMPTZ,
			scheduled_call   JSONB,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX contacts_created_idx ON contacts (created_at, contact_id)",
		"CREATE INDEX contacts_status_idx ON contacts (status)",

		`CREATE TABLE listings (
			listing_id       UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			address          TEXT        NOT NULL DEFAULT '',
			description      TEXT        NOT NULL DEFAULT '',
			transaction_type TEXT        NOT NULL DEFAULT '',
			price            TEXT,
			published        BOOLEAN     NOT NULL DEFAULT FALSE,
			photos           TEXT[]      NOT NULL DEFAULT '{}',
			video_url        TEXT        NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX listings_published_idx ON listings (published, created_at DESC)",

		`CREATE TABLE demandes (
			demand_id        UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			first_name       TEXT        NOT NULL,
			last_name        TEXT        NOT NULL,
			phone            TEXT        NOT NULL,
			transaction_type TEXT        NOT NULL DEFAULT 'achat',
			budget           TEXT,
			description      TEXT        NOT NULL DEFAULT '',
			location         TEXT        NOT NULL DEFAULT '',
			housing_type     TEXT        NOT NULL DEFAULT '',
			married          TEXT        NOT NULL DEFAULT '',
			family_size      INT,
			requested_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX demandes_requested_idx ON demandes (requested_at DESC, demand_id DESC)",
	}

	fmt.Println("\nExecuting schema commands...")
	for i, cmd := range commands {
		if _, err := conn.Exec(ctx, cmd); err != nil {
			log.Fatalf("command %d failed: %v", i+1, err)
		}
		fmt.Printf("  [%d/%d] OK\n", i+1, len(commands))
	}

	fmt.Println("\n=== DATABASE RESET COMPLETE ===")
	fmt.Println("Load data with: go run scripts/import_snapshot.go")
}

func extractHost(connStr string) string {
	parts := strings.Split(connStr, "@")
	if len(parts) > 1 {
		return strings.Split(parts[1], "/")[0]
	}
	return "unknown"
}
