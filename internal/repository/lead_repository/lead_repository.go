package lead_repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agence/internal/domain"
	"agence/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LeadRepository struct {
	db  repository.DB
	log *slog.Logger
}

func NewLeadRepository(db repository.DB, log *slog.Logger) *LeadRepository {
	return &LeadRepository{db: db, log: log}
}

const leadColumns = `
	contact_id, demand_id, first_name, last_name, phone,
	transaction_type, budget, description, location,
	housing_type, married, family_size, status,
	scheduled_at, created_at, updated_at
`

// CreateLead — создаёт новый контакт. Бюджет пишется в текстовую колонку как есть.
func (r *LeadRepository) CreateLead(ctx context.Context, lead domain.Lead) (uuid.UUID, error) {
	const op = "LeadRepository.CreateLead"

	query := `
		INSERT INTO contacts (
			demand_id, first_name, last_name, phone,
			transaction_type, budget, description, location,
			housing_type, married, family_size, status, scheduled_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING contact_id
	`

	status := lead.Status
	if status == domain.LeadStatusUnspecified {
		status = domain.LeadStatusNew
	}

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		lead.DemandID,
		lead.FirstName,
		lead.LastName,
		lead.Phone,
		lead.TransactionType,
		lead.Budget.Text(),
		lead.Description,
		lead.Location,
		lead.HousingType,
		lead.Married,
		lead.FamilySize,
		status.String(),
		lead.ScheduledAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// GetByID — получает контакт по ID.
func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	const op = "LeadRepository.GetByID"

	query := `SELECT ` + leadColumns + ` FROM contacts WHERE contact_id = $1`

	l, err := scanLead(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, fmt.Errorf("%s: %w", op, repository.ErrLeadNotFound)
		}
		return domain.Lead{}, fmt.Errorf("%s: %w", op, err)
	}

	return l, nil
}

// UpdateStatus — меняет статус обработки контакта.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) error {
	const op = "LeadRepository.UpdateStatus"

	query := `UPDATE contacts SET status = $1, updated_at = NOW() WHERE contact_id = $2`

	tag, err := r.db.Exec(ctx, query, status.String(), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrLeadNotFound)
	}

	return nil
}

// scheduledCallJSON — детали звонка в колонке scheduled_call, в формате админки.
type scheduledCallJSON struct {
	DateISO      string `json:"dateIso"`
	Timezone     string `json:"timezone"`
	AssignedTo   string `json:"assignedTo,omitempty"`
	Notes        string `json:"notes"`
	CreatedAt    string `json:"createdAt"`
	ReminderSent bool   `json:"reminderSent"`
}

// ScheduleCall — назначает звонок: статус scheduled, время и детали звонка.
func (r *LeadRepository) ScheduleCall(ctx context.Context, id uuid.UUID, call domain.ScheduledCall) error {
	const op = "LeadRepository.ScheduleCall"

	details, err := json.Marshal(scheduledCallJSON{
		DateISO:    call.At.UTC().Format(time.RFC3339),
		Timezone:   call.Timezone,
		AssignedTo: call.AssignedTo,
		Notes:      call.Notes,
		CreatedAt:  call.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		UPDATE contacts
		SET status = $1, scheduled_at = $2, scheduled_call = $3, updated_at = NOW()
		WHERE contact_id = $4
	`

	tag, err := r.db.Exec(ctx, query, domain.LeadStatusScheduled.String(), call.At, details, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrLeadNotFound)
	}

	return nil
}

// DeleteLead — удаляет контакт.
func (r *LeadRepository) DeleteLead(ctx context.Context, id uuid.UUID) error {
	const op = "LeadRepository.DeleteLead"

	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE contact_id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrLeadNotFound)
	}

	return nil
}

// ListLeads — возвращает контакты по фильтру с keyset-пагинацией по (created_at, contact_id).
func (r *LeadRepository) ListLeads(ctx context.Context, filter domain.LeadFilter) (*domain.PaginatedResult[domain.Lead], error) {
	const op = "LeadRepository.ListLeads"

	pageSize := int(domain.DefaultPageSize)
	var cursor *domain.PageCursor
	orderDir := domain.OrderDesc

	if filter.Pagination != nil {
		pageSize = int(domain.NormalizePageSize(filter.Pagination.PageSize))
		orderDir = domain.NormalizeOrderDirection(string(filter.Pagination.OrderDirection))

		if filter.Pagination.PageToken != "" {
			var err error
			cursor, err = domain.DecodePageCursor(filter.Pagination.PageToken)
			if err != nil {
				r.log.Warn("failed to decode page cursor, starting from beginning", "error", err)
				cursor = nil
			}
		}
	}

	baseWhereClauses := []string{}
	baseParams := []any{}
	paramCount := 1

	if filter.Status != nil {
		baseWhereClauses = append(baseWhereClauses, fmt.Sprintf("status = $%d", paramCount))
		baseParams = append(baseParams, (*filter.Status).String())
		paramCount++
	}

	countQuery := "SELECT COUNT(*) FROM contacts"
	if len(baseWhereClauses) > 0 {
		countQuery += " WHERE " + strings.Join(baseWhereClauses, " AND ")
	}

	var totalCount int32
	if err := r.db.QueryRow(ctx, countQuery, baseParams...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("%s: count failed: %w", op, err)
	}

	whereClauses := append([]string{}, baseWhereClauses...)
	params := append([]any{}, baseParams...)

	if cursor != nil {
		cmp := "<"
		if orderDir == domain.OrderAsc {
			cmp = ">"
		}
		whereClauses = append(whereClauses,
			fmt.Sprintf("(created_at, contact_id) %s ($%d, $%d)", cmp, paramCount, paramCount+1))
		params = append(params, cursor.LastCreatedAt, cursor.LastID)
		paramCount += 2
	}

	query := `SELECT ` + leadColumns + ` FROM contacts`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	dirStr := "DESC"
	if orderDir == domain.OrderAsc {
		dirStr = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY created_at %s, contact_id %s", dirStr, dirStr)

	// LIMIT +1 для определения has_more
	query += fmt.Sprintf(" LIMIT $%d", paramCount)
	params = append(params, pageSize+1)

	rows, err := r.db.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", op, err)
		}
		leads = append(leads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	hasMore := len(leads) > pageSize
	if hasMore {
		leads = leads[:pageSize]
	}

	var nextPageToken string
	if hasMore && len(leads) > 0 {
		last := leads[len(leads)-1]
		nextCursor := &domain.PageCursor{
			LastID:        last.ID,
			LastCreatedAt: last.CreatedAt,
		}
		nextPageToken = nextCursor.Encode()
	}

	return &domain.PaginatedResult[domain.Lead]{
		Items:         leads,
		NextPageToken: nextPageToken,
		TotalCount:    totalCount,
		HasMore:       hasMore,
	}, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		l      domain.Lead
		budget *string
		status string
	)
	err := row.Scan(
		&l.ID,
		&l.DemandID,
		&l.FirstName,
		&l.LastName,
		&l.Phone,
		&l.TransactionType,
		&budget,
		&l.Description,
		&l.Location,
		&l.HousingType,
		&l.Married,
		&l.FamilySize,
		&status,
		&l.ScheduledAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}

	l.Budget = domain.AmountFromText(budget)
	l.Status = domain.LeadStatus(status)
	return l, nil
}
