package domain

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPageSize кол-во записей на странице по умолчанию
	DefaultPageSize = 20
	// MaxPageSize максимальное кол-во записей на странице
	MaxPageSize = 500
)

// OrderDirection направление сортировки
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// PaginationParams параметры keyset-пагинации
type PaginationParams struct {
	PageSize       int32
	PageToken      string
	OrderDirection OrderDirection
}

// PageCursor курсор: последняя выданная запись (created_at, id)
type PageCursor struct {
	LastID        uuid.UUID `json:"id"`
	LastCreatedAt time.Time `json:"ca"`
}

// Encode кодирует курсор в base64 строку
func (c *PageCursor) Encode() string {
	if c == nil {
		return ""
	}
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodePageCursor декодирует курсор; пустой токен означает первую страницу.
func DecodePageCursor(token string) (*PageCursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var cursor PageCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// PaginatedResult результат пагинированного запроса
type PaginatedResult[T any] struct {
	Items         []T
	NextPageToken string
	TotalCount    int32
	HasMore       bool
}

// NormalizePageSize приводит размер страницы к [1, MaxPageSize]
func NormalizePageSize(size int32) int32 {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// NormalizeOrderDirection нормализует направление сортировки
func NormalizeOrderDirection(dir string) OrderDirection {
	if dir == "asc" || dir == "ASC" {
		return OrderAsc
	}
	return OrderDesc
}

// LimitOffset переводит page/limit публичного каталога в LIMIT/OFFSET.
// limit <= 0 означает "без ограничения" и возвращает limit = 0.
func LimitOffset(limit, page int) (int, int) {
	if limit <= 0 {
		return 0, 0
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}
