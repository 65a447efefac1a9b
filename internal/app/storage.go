package app

import (
	"context"
	"fmt"
	"log/slog"

	"agence/internal/config"
	"agence/internal/repository/demand_repository"
	"agence/internal/repository/lead_repository"
	"agence/internal/repository/listing_repository"
	"agence/internal/repository/snapshot_repository"
	"agence/internal/services/demand"
	"agence/internal/services/lead"
	"agence/internal/services/listing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage — выбранные по STORAGE_BACKEND хранилища контактов, объявлений и заявок.
type Storage struct {
	Leads    lead.LeadRepository
	Listings listing.ListingRepository
	Demands  demand.DemandRepository
	close    func()
}

func (s Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// NewStorage подключает PostgreSQL, каталог со снимками или бакет MinIO.
func NewStorage(ctx context.Context, log *slog.Logger, cfg *config.Config) (Storage, error) {
	const op = "app.NewStorage"

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Storage{}, fmt.Errorf("%s: DATABASE_URL is required for postgres storage", op)
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return Storage{}, fmt.Errorf("%s: %w", op, err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return Storage{}, fmt.Errorf("%s: ping database: %w", op, err)
		}

		log.Info("storage: postgres")
		return Storage{
			Leads:    lead_repository.NewLeadRepository(pool, log),
			Listings: listing_repository.NewListingRepository(pool, log),
			Demands:  demand_repository.NewDemandRepository(pool, log),
			close:    pool.Close,
		}, nil

	case config.StorageFile:
		log.Info("storage: json snapshot", slog.String("dir", cfg.SnapshotDir))
		return snapshotStorage(snapshot_repository.NewFileSource(cfg.SnapshotDir), log), nil

	case config.StorageMinio:
		client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.UseSSL,
		})
		if err != nil {
			return Storage{}, fmt.Errorf("%s: %w", op, err)
		}
		exists, err := client.BucketExists(ctx, cfg.Minio.Bucket)
		if err != nil {
			return Storage{}, fmt.Errorf("%s: check bucket: %w", op, err)
		}
		if !exists {
			return Storage{}, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Minio.Bucket)
		}

		log.Info("storage: minio snapshot",
			slog.String("endpoint", cfg.Minio.Endpoint),
			slog.String("bucket", cfg.Minio.Bucket),
		)
		return snapshotStorage(snapshot_repository.NewMinioSource(client, cfg.Minio.Bucket, cfg.Minio.Prefix), log), nil
	}

	return Storage{}, fmt.Errorf("%s: unknown storage backend %q", op, cfg.StorageBackend)
}

func snapshotStorage(src snapshot_repository.Source, log *slog.Logger) Storage {
	return Storage{
		Leads:    snapshot_repository.NewLeadStore(src, log),
		Listings: snapshot_repository.NewListingStore(src, log),
		Demands:  snapshot_repository.NewDemandStore(src, log),
	}
}
