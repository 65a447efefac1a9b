package demand

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agence/internal/domain"
	"agence/internal/lib/logger/sl"
	"agence/internal/repository"

	"github.com/google/uuid"
)

type DemandRepository interface {
	CreateDemand(ctx context.Context, demand domain.Demand) (uuid.UUID, error)
	ListDemands(ctx context.Context) ([]domain.Demand, error)
	DeleteDemand(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	log  *slog.Logger
	repo DemandRepository
}

var (
	ErrDemandNotFound = errors.New("demand not found")
	ErrInvalidDemand  = errors.New("last name, first name and phone are required")
	ErrReadOnly       = errors.New("demands are read-only in this storage")
)

// DefaultTransactionType — тип заявки, если посетитель его не выбрал.
const DefaultTransactionType = "achat"

func New(log *slog.Logger, repo DemandRepository) *Service {
	return &Service{
		log:  log,
		repo: repo,
	}
}

// Submit — принимает заявку с сайта.
// Имя, фамилия и телефон обязательны; тип приводится к нижнему регистру,
// пустой бюджет (null, 0, "") не сохраняется.
func (s *Service) Submit(ctx context.Context, d domain.Demand) (domain.Demand, error) {
	const op = "demand.Service.Submit"

	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Phone = strings.TrimSpace(d.Phone)
	if d.FirstName == "" || d.LastName == "" || d.Phone == "" {
		return domain.Demand{}, fmt.Errorf("%s: %w", op, ErrInvalidDemand)
	}

	d.TransactionType = strings.ToLower(d.TransactionType)
	if d.TransactionType == "" {
		d.TransactionType = DefaultTransactionType
	}
	if !d.Budget.Truthy() {
		d.Budget = domain.Amount{}
	}
	if d.FamilySize != nil && *d.FamilySize <= 0 {
		d.FamilySize = nil
	}
	d.RequestedAt = time.Now().UTC()

	log := s.log.With(slog.String("op", op), slog.String("type", d.TransactionType))

	id, err := s.repo.CreateDemand(ctx, d)
	if err != nil {
		if errors.Is(err, repository.ErrReadOnly) {
			return domain.Demand{}, fmt.Errorf("%s: %w", op, ErrReadOnly)
		}
		log.Error("failed to save demand", sl.Err(err))
		return domain.Demand{}, fmt.Errorf("%s: %w", op, err)
	}
	d.ID = id

	log.Info("demand received", slog.String("demand_id", id.String()))

	return d, nil
}

// List — все заявки, свежие первыми.
func (s *Service) List(ctx context.Context) ([]domain.Demand, error) {
	const op = "demand.Service.List"

	demands, err := s.repo.ListDemands(ctx)
	if err != nil {
		s.log.Error("failed to list demands", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return demands, nil
}

// Delete — удаляет заявку.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "demand.Service.Delete"

	if err := s.repo.DeleteDemand(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrDemandNotFound):
			return fmt.Errorf("%s: %w", op, ErrDemandNotFound)
		case errors.Is(err, repository.ErrReadOnly):
			return fmt.Errorf("%s: %w", op, ErrReadOnly)
		}
		s.log.Error("failed to delete demand", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("demand deleted", slog.String("op", op), slog.String("demand_id", id.String()))
	return nil
}
