package demand_repository

import (
	"context"
	"fmt"
	"log/slog"

	"agence/internal/domain"
	"agence/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DemandRepository struct {
	db  repository.DB
	log *slog.Logger
}

func NewDemandRepository(db repository.DB, log *slog.Logger) *DemandRepository {
	return &DemandRepository{db: db, log: log}
}

const demandColumns = `
	demand_id, first_name, last_name, phone,
	transaction_type, budget, description, location,
	housing_type, married, family_size, requested_at
`

// CreateDemand — сохраняет заявку с сайта.
func (r *DemandRepository) CreateDemand(ctx context.Context, d domain.Demand) (uuid.UUID, error) {
	const op = "DemandRepository.CreateDemand"

	query := `
		INSERT INTO demandes (
			first_name, last_name, phone,
			transaction_type, budget, description, location,
			housing_type, married, family_size, requested_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING demand_id
	`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		d.FirstName,
		d.LastName,
		d.Phone,
		d.TransactionType,
		d.Budget.Text(),
		d.Description,
		d.Location,
		d.HousingType,
		d.Married,
		d.FamilySize,
		d.RequestedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// ListDemands — все заявки, свежие первыми.
func (r *DemandRepository) ListDemands(ctx context.Context) ([]domain.Demand, error) {
	const op = "DemandRepository.ListDemands"

	query := `SELECT ` + demandColumns + ` FROM demandes ORDER BY requested_at DESC, demand_id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	demands := []domain.Demand{}
	for rows.Next() {
		d, err := scanDemand(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", op, err)
		}
		demands = append(demands, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return demands, nil
}

// DeleteDemand — удаляет заявку.
func (r *DemandRepository) DeleteDemand(ctx context.Context, id uuid.UUID) error {
	const op = "DemandRepository.DeleteDemand"

	tag, err := r.db.Exec(ctx, `DELETE FROM demandes WHERE demand_id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrDemandNotFound)
	}

	return nil
}

func scanDemand(row pgx.Row) (domain.Demand, error) {
	var (
		d      domain.Demand
		budget *string
	)
	err := row.Scan(
		&d.ID,
		&d.FirstName,
		&d.LastName,
		&d.Phone,
		&d.TransactionType,
		&budget,
		&d.Description,
		&d.Location,
		&d.HousingType,
		&d.Married,
		&d.FamilySize,
		&d.RequestedAt,
	)
	if err != nil {
		return domain.Demand{}, err
	}

	d.Budget = domain.AmountFromText(budget)
	return d, nil
}
