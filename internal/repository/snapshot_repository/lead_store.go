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

// LeadStore — контакты из contacts.json, только чтение.
type LeadStore struct {
	src Source
	log *slog.Logger
}

func NewLeadStore(src Source, log *slog.Logger) *LeadStore {
	return &LeadStore{src: src, log: log}
}

func (s *LeadStore) load(ctx context.Context) ([]domain.Lead, error) {
	data, err := readAll(ctx, s.src, LeadsFile)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords[contactRecord](data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", LeadsFile, err)
	}

	return lo.Map(records, func(r contactRecord, _ int) domain.Lead {
		return r.toLead()
	}), nil
}

// GetByID — контакт по ID.
func (s *LeadStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	const op = "LeadStore.GetByID"

	leads, err := s.load(ctx)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("%s: %w", op, err)
	}

	l, ok := lo.Find(leads, func(l domain.Lead) bool { return l.ID == id })
	if !ok {
		return domain.Lead{}, fmt.Errorf("%s: %w", op, repository.ErrLeadNotFound)
	}

	return l, nil
}

// ListLeads — та же keyset-пагинация по (created_at, id), что и в PostgreSQL.
func (s *LeadStore) ListLeads(ctx context.Context, filter domain.LeadFilter) (*domain.PaginatedResult[domain.Lead], error) {
	const op = "LeadStore.ListLeads"

	leads, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if filter.Status != nil {
		leads = lo.Filter(leads, func(l domain.Lead, _ int) bool { return l.Status == *filter.Status })
	}
	total := int32(len(leads))

	pageSize := int(domain.DefaultPageSize)
	orderDir := domain.OrderDesc
	var cursor *domain.PageCursor
	if filter.Pagination != nil {
		pageSize = int(domain.NormalizePageSize(filter.Pagination.PageSize))
		orderDir = domain.NormalizeOrderDirection(string(filter.Pagination.OrderDirection))
		if cursor, err = domain.DecodePageCursor(filter.Pagination.PageToken); err != nil {
			s.log.Warn("failed to decode page cursor, starting from beginning", "error", err)
			cursor = nil
		}
	}

	compare := func(a, b domain.Lead) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), slices.Compare(a.ID[:], b.ID[:]))
	}
	if orderDir == domain.OrderDesc {
		slices.SortStableFunc(leads, func(a, b domain.Lead) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(leads, compare)
	}

	if cursor != nil {
		pivot := domain.Lead{ID: cursor.LastID, CreatedAt: cursor.LastCreatedAt}
		leads = lo.Filter(leads, func(l domain.Lead, _ int) bool {
			if orderDir == domain.OrderDesc {
				return compare(l, pivot) < 0
			}
			return compare(l, pivot) > 0
		})
	}

	hasMore := len(leads) > pageSize
	if hasMore {
		leads = leads[:pageSize]
	}

	var next string
	if hasMore && len(leads) > 0 {
		last := leads[len(leads)-1]
		next = (&domain.PageCursor{LastID: last.ID, LastCreatedAt: last.CreatedAt}).Encode()
	}

	return &domain.PaginatedResult[domain.Lead]{
		Items:         leads,
		NextPageToken: next,
		TotalCount:    total,
		HasMore:       hasMore,
	}, nil
}

// CreateLead недоступен: снимок только для чтения.
func (s *LeadStore) CreateLead(_ context.Context, _ domain.Lead) (uuid.UUID, error) {
	return uuid.Nil, fmt.Errorf("LeadStore.CreateLead: %w", repository.ErrReadOnly)
}

// UpdateStatus недоступен: снимок только для чтения.
func (s *LeadStore) UpdateStatus(_ context.Context, _ uuid.UUID, _ domain.LeadStatus) error {
	return fmt.Errorf("LeadStore.UpdateStatus: %w", repository.ErrReadOnly)
}

// ScheduleCall недоступен: снимок только для чтения.
func (s *LeadStore) ScheduleCall(_ context.Context, _ uuid.UUID, _ domain.ScheduledCall) error {
	return fmt.Errorf("LeadStore.ScheduleCall: %w", repository.ErrReadOnly)
}

// DeleteLead недоступен: снимок только для чтения.
func (s *LeadStore) DeleteLead(_ context.Context, _ uuid.UUID) error {
	return fmt.Errorf("LeadStore.DeleteLead: %w", repository.ErrReadOnly)
}
