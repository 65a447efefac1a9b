package listing_repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"agence/internal/domain"
	"agence/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ListingRepository struct {
	db  repository.DB
	log *slog.Logger
}

func NewListingRepository(db repository.DB, log *slog.Logger) *ListingRepository {
	return &ListingRepository{db: db, log: log}
}

const listingColumns = `
	listing_id, address, description, transaction_type,
	price, published, photos, video_url,
	created_at, updated_at
`

// CreateListing — сохраняет объявление. Цена пишется текстом в исходном виде,
// чтобы матчинг разбирал её так же, как при импорте из таблиц.
func (r *ListingRepository) CreateListing(ctx context.Context, listing domain.Listing) (uuid.UUID, error) {
	const op = "ListingRepository.CreateListing"

	query := `
		INSERT INTO listings (
			address, description, transaction_type,
			price, published, photos, video_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING listing_id
	`

	photos := listing.Photos
	if photos == nil {
		photos = []string{}
	}

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		listing.Address,
		listing.Description,
		listing.TransactionType,
		listing.Price.Text(),
		listing.Published,
		photos,
		listing.VideoURL,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// GetByID — получает объявление по ID.
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	const op = "ListingRepository.GetByID"

	query := `SELECT ` + listingColumns + ` FROM listings WHERE listing_id = $1`

	l, err := scanListing(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, fmt.Errorf("%s: %w", op, repository.ErrListingNotFound)
		}
		return domain.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	return l, nil
}

// ListListings — выборка объявлений. Фильтр по типу и текстовый поиск работают
// подстрокой без учёта регистра; Limit <= 0 снимает ограничение.
func (r *ListingRepository) ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	const op = "ListingRepository.ListListings"

	whereClauses := []string{}
	params := []any{}
	paramCount := 1

	if filter.Published != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("published = $%d", paramCount))
		params = append(params, *filter.Published)
		paramCount++
	}
	if filter.TransactionType != nil && *filter.TransactionType != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("transaction_type ILIKE '%%' || $%d || '%%'", paramCount))
		params = append(params, *filter.TransactionType)
		paramCount++
	}
	if filter.Query != nil && *filter.Query != "" {
		whereClauses = append(whereClauses,
			fmt.Sprintf("(address ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", paramCount, paramCount))
		params = append(params, *filter.Query)
		paramCount++
	}

	query := `SELECT ` + listingColumns + ` FROM listings`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY created_at DESC, listing_id DESC"

	if limit, offset := domain.LimitOffset(filter.Limit, filter.Page); limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", paramCount, paramCount+1)
		params = append(params, limit, offset)
	}

	rows, err := r.db.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", op, err)
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return listings, nil
}

// SetPublished — публикует объявление или снимает с публикации.
func (r *ListingRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	const op = "ListingRepository.SetPublished"

	query := `UPDATE listings SET published = $1, updated_at = NOW() WHERE listing_id = $2`

	tag, err := r.db.Exec(ctx, query, published, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrListingNotFound)
	}

	return nil
}

// UpdateListing — меняет только заданные в patch поля.
func (r *ListingRepository) UpdateListing(ctx context.Context, id uuid.UUID, patch domain.ListingPatch) error {
	const op = "ListingRepository.UpdateListing"

	setClauses := []string{}
	params := []any{}
	paramCount := 1

	if patch.Address != nil {
		setClauses = append(setClauses, fmt.Sprintf("address = $%d", paramCount))
		params = append(params, *patch.Address)
		paramCount++
	}
	if patch.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", paramCount))
		params = append(params, *patch.Description)
		paramCount++
	}
	if patch.TransactionType != nil {
		setClauses = append(setClauses, fmt.Sprintf("transaction_type = $%d", paramCount))
		params = append(params, *patch.TransactionType)
		paramCount++
	}
	if patch.Price != nil {
		setClauses = append(setClauses, fmt.Sprintf("price = $%d", paramCount))
		params = append(params, patch.Price.Text())
		paramCount++
	}
	if patch.Published != nil {
		setClauses = append(setClauses, fmt.Sprintf("published = $%d", paramCount))
		params = append(params, *patch.Published)
		paramCount++
	}
	if patch.Photos != nil {
		photos := *patch.Photos
		if photos == nil {
			photos = []string{}
		}
		setClauses = append(setClauses, fmt.Sprintf("photos = $%d", paramCount))
		params = append(params, photos)
		paramCount++
	}
	if patch.VideoURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("video_url = $%d", paramCount))
		params = append(params, *patch.VideoURL)
		paramCount++
	}

	if len(setClauses) == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNoFieldsToUpdate)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE listings SET %s WHERE listing_id = $%d`, strings.Join(setClauses, ", "), paramCount)
	params = append(params, id)

	tag, err := r.db.Exec(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrListingNotFound)
	}

	return nil
}

// DeleteListing — удаляет объявление.
func (r *ListingRepository) DeleteListing(ctx context.Context, id uuid.UUID) error {
	const op = "ListingRepository.DeleteListing"

	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE listing_id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrListingNotFound)
	}

	return nil
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var (
		l     domain.Listing
		price *string
	)
	err := row.Scan(
		&l.ID,
		&l.Address,
		&l.Description,
		&l.TransactionType,
		&price,
		&l.Published,
		&l.Photos,
		&l.VideoURL,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return domain.Listing{}, err
	}

	l.Price = domain.AmountFromText(price)
	return l, nil
}
