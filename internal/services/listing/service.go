package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"agence/internal/domain"
	"agence/internal/lib/logger/sl"
	"agence/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type ListingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) error
	CreateListing(ctx context.Context, listing domain.Listing) (uuid.UUID, error)
	UpdateListing(ctx context.Context, id uuid.UUID, patch domain.ListingPatch) error
	DeleteListing(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	log  *slog.Logger
	repo ListingRepository
}

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrReadOnly        = errors.New("listings are read-only in this storage")
	ErrNothingToUpdate = errors.New("no listing fields to update")
)

func New(log *slog.Logger, repo ListingRepository) *Service {
	return &Service{
		log:  log,
		repo: repo,
	}
}

// GetListing — объявление по ID независимо от публикации (для админки).
func (s *Service) GetListing(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	const op = "listing.Service.GetListing"

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("%s: %w", op, s.mapErr(err))
	}

	return l, nil
}

// GetPublishedListing — объявление для публичного каталога; неопубликованное не отдаётся.
func (s *Service) GetPublishedListing(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	const op = "listing.Service.GetPublishedListing"

	l, err := s.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("%s: %w", op, err)
	}
	if !l.Published {
		return domain.Listing{}, fmt.Errorf("%s: %w", op, ErrListingNotFound)
	}

	return l, nil
}

// ListPublished — все опубликованные объявления, источник кандидатов для матчинга.
func (s *Service) ListPublished(ctx context.Context) ([]domain.Listing, error) {
	const op = "listing.Service.ListPublished"

	listings, err := s.repo.ListListings(ctx, domain.ListingFilter{Published: lo.ToPtr(true)})
	if err != nil {
		s.log.Error("failed to list published listings", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return listings, nil
}

// ListListings — выборка по произвольному фильтру.
func (s *Service) ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	const op = "listing.Service.ListListings"

	listings, err := s.repo.ListListings(ctx, filter)
	if err != nil {
		s.log.Error("failed to list listings", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return listings, nil
}

// SetPublished — публикует объявление или снимает его с публикации.
func (s *Service) SetPublished(ctx context.Context, id uuid.UUID, published bool) (domain.Listing, error) {
	const op = "listing.Service.SetPublished"
	log := s.log.With(slog.String("op", op), slog.String("listing_id", id.String()))

	if err := s.repo.SetPublished(ctx, id, published); err != nil {
		err = s.mapErr(err)
		if !errors.Is(err, ErrListingNotFound) {
			log.Error("failed to change publication", sl.Err(err))
		}
		return domain.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("listing publication changed", slog.Bool("published", published))

	return s.GetListing(ctx, id)
}

// CreateListing — сохраняет новое объявление и возвращает его в сохранённом виде.
func (s *Service) CreateListing(ctx context.Context, listing domain.Listing) (domain.Listing, error) {
	const op = "listing.Service.CreateListing"
	log := s.log.With(slog.String("op", op), slog.String("address", listing.Address))

	if listing.Photos == nil {
		listing.Photos = []string{}
	}

	id, err := s.repo.CreateListing(ctx, listing)
	if err != nil {
		err = s.mapErr(err)
		if !errors.Is(err, ErrReadOnly) {
			log.Error("failed to create listing", sl.Err(err))
		}
		return domain.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("listing created", slog.String("listing_id", id.String()))

	return s.GetListing(ctx, id)
}

// UpdateListing — меняет только переданные поля объявления.
func (s *Service) UpdateListing(ctx context.Context, id uuid.UUID, patch domain.ListingPatch) (domain.Listing, error) {
	const op = "listing.Service.UpdateListing"
	log := s.log.With(slog.String("op", op), slog.String("listing_id", id.String()))

	if patch.IsEmpty() {
		return domain.Listing{}, fmt.Errorf("%s: %w", op, ErrNothingToUpdate)
	}

	if err := s.repo.UpdateListing(ctx, id, patch); err != nil {
		err = s.mapErr(err)
		if !errors.Is(err, ErrListingNotFound) && !errors.Is(err, ErrReadOnly) {
			log.Error("failed to update listing", sl.Err(err))
		}
		return domain.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("listing updated")

	return s.GetListing(ctx, id)
}

// DeleteListing — удаляет объявление.
func (s *Service) DeleteListing(ctx context.Context, id uuid.UUID) error {
	const op = "listing.Service.DeleteListing"

	if err := s.repo.DeleteListing(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, s.mapErr(err))
	}

	s.log.Info("listing deleted", slog.String("op", op), slog.String("listing_id", id.String()))
	return nil
}

func (s *Service) mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNoFieldsToUpdate):
		return ErrNothingToUpdate
	case errors.Is(err, repository.ErrListingNotFound):
		return ErrListingNotFound
	case errors.Is(err, repository.ErrReadOnly):
		return ErrReadOnly
	}
	return err
}
