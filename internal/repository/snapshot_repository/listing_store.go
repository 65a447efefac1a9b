package snapshot_repository

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"agence/internal/domain"
	"agence/internal/lib/logger/sl"
	"agence/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ListingStore — объявления из offres.json. Файл перечитывается на каждый запрос,
// поэтому правки снимка видны без перезапуска.
type ListingStore struct {
	src Source
	log *slog.Logger
}

func NewListingStore(src Source, log *slog.Logger) *ListingStore {
	return &ListingStore{src: src, log: log}
}

func (s *ListingStore) load(ctx context.Context) ([]domain.Listing, error) {
	data, err := readAll(ctx, s.src, ListingsFile)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords[offreRecord](data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ListingsFile, err)
	}

	listings := lo.Map(records, func(r offreRecord, _ int) domain.Listing {
		return r.toListing()
	})

	// как в публичном каталоге: сначала свежие
	slices.SortStableFunc(listings, func(a, b domain.Listing) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})

	return listings, nil
}

// GetByID — объявление по ID (включая неопубликованные).
func (s *ListingStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	const op = "ListingStore.GetByID"

	listings, err := s.load(ctx)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	l, ok := lo.Find(listings, func(l domain.Listing) bool { return l.ID == id })
	if !ok {
		return domain.Listing{}, fmt.Errorf("%s: %w", op, repository.ErrListingNotFound)
	}

	return l, nil
}

// ListListings фильтрует снимок в памяти по тем же правилам, что и SQL-репозиторий.
func (s *ListingStore) ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	const op = "ListingStore.ListListings"

	listings, err := s.load(ctx)
	if err != nil {
		s.log.Error("failed to load snapshot", slog.String("op", op), slog.String("source", s.src.String()), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	listings = lo.Filter(listings, func(l domain.Listing, _ int) bool {
		if filter.Published != nil && l.Published != *filter.Published {
			return false
		}
		if filter.TransactionType != nil && *filter.TransactionType != "" &&
			!containsFold(l.TransactionType, *filter.TransactionType) {
			return false
		}
		if filter.Query != nil && *filter.Query != "" &&
			!containsFold(l.Address, *filter.Query) && !containsFold(l.Description, *filter.Query) {
			return false
		}
		return true
	})

	limit, offset := domain.LimitOffset(filter.Limit, filter.Page)
	if limit > 0 {
		listings = listings[min(offset, len(listings)):min(offset+limit, len(listings))]
	}

	return listings, nil
}

// SetPublished недоступен: снимок только для чтения.
func (s *ListingStore) SetPublished(_ context.Context, _ uuid.UUID, _ bool) error {
	return fmt.Errorf("ListingStore.SetPublished: %w", repository.ErrReadOnly)
}

// CreateListing недоступен: снимок только для чтения.
func (s *ListingStore) CreateListing(_ context.Context, _ domain.Listing) (uuid.UUID, error) {
	return uuid.Nil, fmt.Errorf("ListingStore.CreateListing: %w", repository.ErrReadOnly)
}

// UpdateListing недоступен: снимок только для чтения.
func (s *ListingStore) UpdateListing(_ context.Context, _ uuid.UUID, _ domain.ListingPatch) error {
	return fmt.Errorf("ListingStore.UpdateListing: %w", repository.ErrReadOnly)
}

// DeleteListing недоступен: снимок только для чтения.
func (s *ListingStore) DeleteListing(_ context.Context, _ uuid.UUID) error {
	return fmt.Errorf("ListingStore.DeleteListing: %w", repository.ErrReadOnly)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
