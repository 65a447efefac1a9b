package lead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agence/internal/domain"
	"agence/internal/lib/logger/sl"
	"agence/internal/repository"

	"github.com/google/uuid"
)

type LeadRepository interface {
	CreateLead(ctx context.Context, lead domain.Lead) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) error
	ListLeads(ctx context.Context, filter domain.LeadFilter) (*domain.PaginatedResult[domain.Lead], error)
	ScheduleCall(ctx context.Context, id uuid.UUID, call domain.ScheduledCall) error
	DeleteLead(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	log  *slog.Logger
	repo LeadRepository
}

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrInvalidStatus   = errors.New("invalid lead status")
	ErrInvalidLead     = errors.New("invalid lead")
	ErrReadOnly        = errors.New("contacts are read-only in this storage")
	ErrInvalidSchedule = errors.New("call date is required")
)

// DefaultCallTimezone — часовой пояс звонка, если администратор его не указал.
const DefaultCallTimezone = "UTC"

func New(log *slog.Logger, repo LeadRepository) *Service {
	return &Service{
		log:  log,
		repo: repo,
	}
}

// CreateLead — создаёт новый контакт. Нужен хотя бы телефон или имя.
func (s *Service) CreateLead(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	const op = "lead.Service.CreateLead"
	log := s.log.With(slog.String("op", op), slog.String("name", lead.FullName()))

	if lead.FullName() == "" && lead.Phone == "" {
		return domain.Lead{}, fmt.Errorf("%s: %w: name or phone is required", op, ErrInvalidLead)
	}
	if lead.Status != domain.LeadStatusUnspecified && !lead.Status.IsValid() {
		return domain.Lead{}, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	log.Info("creating new lead")

	id, err := s.repo.CreateLead(ctx, lead)
	if err != nil {
		if errors.Is(err, repository.ErrReadOnly) {
			return domain.Lead{}, fmt.Errorf("%s: %w", op, ErrReadOnly)
		}
		log.Error("failed to create lead", sl.Err(err))
		return domain.Lead{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("lead created successfully", slog.String("lead_id", id.String()))

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("%s: failed to fetch created lead: %w", op, err)
	}

	return created, nil
}

// GetLead — получает контакт по ID.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	const op = "lead.Service.GetLead"

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			s.log.Warn("lead not found", slog.String("lead_id", id.String()))
			return domain.Lead{}, fmt.Errorf("%s: %w", op, ErrLeadNotFound)
		}
		s.log.Error("failed to get lead", sl.Err(err))
		return domain.Lead{}, fmt.Errorf("%s: %w", op, err)
	}

	return lead, nil
}

// UpdateStatus — меняет статус обработки и возвращает обновлённый контакт.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) (domain.Lead, error) {
	const op = "lead.Service.UpdateStatus"

	if !status.IsValid() {
		return domain.Lead{}, fmt.Errorf("%s: %w: %q", op, ErrInvalidStatus, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		switch {
		case errors.Is(err, repository.ErrLeadNotFound):
			return domain.Lead{}, fmt.Errorf("%s: %w", op, ErrLeadNotFound)
		case errors.Is(err, repository.ErrReadOnly):
			return domain.Lead{}, fmt.Errorf("%s: %w", op, ErrReadOnly)
		}
		return domain.Lead{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("%s: failed to fetch updated lead: %w", op, err)
	}

	s.log.Info("lead status updated",
		slog.String("op", op),
		slog.String("lead_id", id.String()),
		slog.String("status", status.String()),
	)

	return updated, nil
}

// ListLeads — возвращает контакты по фильтру с пагинацией.
func (s *Service) ListLeads(ctx context.Context, filter domain.LeadFilter) (*domain.PaginatedResult[domain.Lead], error) {
	const op = "lead.Service.ListLeads"

	if filter.Status != nil && !filter.Status.IsKnown() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	result, err := s.repo.ListLeads(ctx, filter)
	if err != nil {
		s.log.Error("failed to list leads", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// ScheduleCall — назначает звонок контакту и переводит его в статус scheduled.
// Возвращает сохранённые детали звонка.
func (s *Service) ScheduleCall(ctx context.Context, id uuid.UUID, call domain.ScheduledCall) (domain.ScheduledCall, error) {
	const op = "lead.Service.ScheduleCall"

	if call.At.IsZero() {
		return domain.ScheduledCall{}, fmt.Errorf("%s: %w", op, ErrInvalidSchedule)
	}
	if call.Timezone == "" {
		call.Timezone = DefaultCallTimezone
	}
	call.CreatedAt = time.Now().UTC()

	if err := s.repo.ScheduleCall(ctx, id, call); err != nil {
		return domain.ScheduledCall{}, fmt.Errorf("%s: %w", op, s.mapErr(err))
	}

	s.log.Info("call scheduled",
		slog.String("op", op),
		slog.String("lead_id", id.String()),
		slog.Time("at", call.At),
		slog.String("assigned_to", call.AssignedTo),
	)

	return call, nil
}

// DeleteLead — удаляет контакт.
func (s *Service) DeleteLead(ctx context.Context, id uuid.UUID) error {
	const op = "lead.Service.DeleteLead"

	if err := s.repo.DeleteLead(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, s.mapErr(err))
	}

	s.log.Info("lead deleted", slog.String("op", op), slog.String("lead_id", id.String()))
	return nil
}

func (s *Service) mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrLeadNotFound):
		return ErrLeadNotFound
	case errors.Is(err, repository.ErrReadOnly):
		return ErrReadOnly
	}
	s.log.Error("lead storage failure", sl.Err(err))
	return err
}
