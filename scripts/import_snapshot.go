//go:build ignore

// Переносит offres.json, contacts.json и demandes.json из каталога со снимком в PostgreSQL.
// Запуск: DATABASE_URL=postgres://... SNAPSHOT_DIR=./data go run scripts/import_snapshot.go

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"agence/internal/domain"
	"agence/internal/lib/logger/sl"
	"agence/internal/repository/demand_repository"
	"agence/internal/repository/lead_repository"
	"agence/internal/repository/listing_repository"
	"agence/internal/repository/snapshot_repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Error("DATABASE_URL is not set")
		os.Exit(1)
	}
	dir := os.Getenv("SNAPSHOT_DIR")
	if dir == "" {
		dir = "./data"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Error("failed to connect", sl.Err(err))
		os.Exit(1)
	}
	defer pool.Close()

	src := snapshot_repository.NewFileSource(dir)

	listings, err := snapshot_repository.NewListingStore(src, log).ListListings(ctx, domain.ListingFilter{})
	if err != nil {
		log.Error("failed to read listings", sl.Err(err))
		os.Exit(1)
	}
	listingRepo := listing_repository.NewListingRepository(pool, log)
	for _, l := range listings {
		if _, err := listingRepo.CreateListing(ctx, l); err != nil {
			log.Error("failed to insert listing", slog.String("address", l.Address), sl.Err(err))
			os.Exit(1)
		}
	}
	log.Info("listings imported", slog.Int("count", len(listings)))

	leadStore := snapshot_repository.NewLeadStore(src, log)
	leadRepo := lead_repository.NewLeadRepository(pool, log)

	imported := 0
	page := &domain.PaginationParams{PageSize: domain.MaxPageSize, OrderDirection: domain.OrderAsc}
	for {
		res, err := leadStore.ListLeads(ctx, domain.LeadFilter{Pagination: page})
		if err != nil {
			log.Error("failed to read contacts", sl.Err(err))
			os.Exit(1)
		}
		for _, l := range res.Items {
			if _, err := leadRepo.CreateLead(ctx, l); err != nil {
				log.Error("failed to insert contact", slog.String("phone", l.Phone), sl.Err(err))
				os.Exit(1)
			}
			imported++
		}
		if !res.HasMore {
			break
		}
		page.PageToken = res.NextPageToken
	}
	log.Info("contacts imported", slog.Int("count", imported))

	demands, err := snapshot_repository.NewDemandStore(src, log).ListDemands(ctx)
	if err != nil {
		log.Error("failed to read demandes", sl.Err(err))
		os.Exit(1)
	}
	demandRepo := demand_repository.NewDemandRepository(pool, log)
	for _, d := range demands {
		if _, err := demandRepo.CreateDemand(ctx, d); err != nil {
			log.Error("failed to insert demande", slog.String("phone", d.Phone), sl.Err(err))
			os.Exit(1)
		}
	}
	log.Info("demandes imported", slog.Int("count", len(demands)))
}
