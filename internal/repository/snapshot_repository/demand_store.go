package snapshot_repository

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"agence/internal/domain"
	"agence/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// DemandStore — заявки из demandes.json, только чтение.
type DemandStore struct {
	src Source
	log *slog.Logger
}

func NewDemandStore(src Source, log *slog.Logger) *DemandStore {
	return &DemandStore{src: src, log: log}
}

// ListDemands — все заявки, свежие первыми.
func (s *DemandStore) ListDemands(ctx context.Context) ([]domain.Demand, error) {
	const op = "DemandStore.ListDemands"

	data, err := readAll(ctx, s.src, DemandsFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records, err := decodeRecords[demandeRecord](data)
	if err != nil {
		return nil, fmt.Errorf("%s: decode %s: %w", op, DemandsFile, err)
	}

	demands := lo.Map(records, func(r demandeRecord, _ int) domain.Demand {
		return r.toDemand()
	})
	slices.SortStableFunc(demands, func(a, b domain.Demand) int {
		return cmp.Or(b.RequestedAt.Compare(a.RequestedAt), slices.Compare(b.ID[:], a.ID[:]))
	})

	return demands, nil
}

// CreateDemand недоступен: снимок только для чтения.
func (s *DemandStore) CreateDemand(_ context.Context, _ domain.Demand) (uuid.UUID, error) {
	return uuid.Nil, fmt.Errorf("DemandStore.CreateDemand: %w", repository.ErrReadOnly)
}

// DeleteDemand недоступен: снимок только для чтения.
func (s *DemandStore) DeleteDemand(_ context.Context, _ uuid.UUID) error {
	return fmt.Errorf("DemandStore.DeleteDemand: %w", repository.ErrReadOnly)
}
