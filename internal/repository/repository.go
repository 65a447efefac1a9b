package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrListingNotFound  = errors.New("listing not found")
	ErrDemandNotFound   = errors.New("demand not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	// ErrReadOnly возвращают хранилища, которые нельзя менять (снимки JSON).
	ErrReadOnly = errors.New("storage is read-only")
)

// DB — подмножество pgxpool.Pool, которым пользуются репозитории.
// Его же реализует pgxmock в тестах.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
