package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lead — заявка клиента (контакт): что ищет и с каким бюджетом.
type Lead struct {
	ID       uuid.UUID
	DemandID *string // исходная заявка с сайта, если контакт создан из неё

	FirstName string
	LastName  string
	Phone     string

	// TransactionType в том виде, как его ввёл человек или импорт ("À louer", "achat", ...).
	TransactionType string
	// Budget — максимальный бюджет, может быть числом, строкой или отсутствовать.
	Budget Amount

	Description string
	Location    string
	HousingType string
	Married     string
	FamilySize  *int32

	Status      LeadStatus
	ScheduledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FullName возвращает "Имя Фамилия" без лишних пробелов.
func (l Lead) FullName() string {
	switch {
	case l.FirstName == "":
		return l.LastName
	case l.LastName == "":
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// LeadStatus — статус обработки контакта.
type LeadStatus string

const (
	LeadStatusUnspecified  LeadStatus = ""
	LeadStatusNew          LeadStatus = "new"
	LeadStatusProcessed    LeadStatus = "processed"
	LeadStatusNotProcessed LeadStatus = "not_processed"
	// LeadStatusScheduled ставится только при назначении звонка.
	LeadStatusScheduled LeadStatus = "scheduled"
)

func (s LeadStatus) String() string {
	return string(s)
}

// IsValid проверяет, что статус можно выставить вручную.
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusProcessed, LeadStatusNotProcessed:
		return true
	}
	return false
}

// IsKnown — любой статус, который может быть у контакта, включая scheduled.
func (s LeadStatus) IsKnown() bool {
	return s.IsValid() || s == LeadStatusScheduled
}

// ScheduledCall — назначенный звонок клиенту.
type ScheduledCall struct {
	At         time.Time
	Timezone   string
	AssignedTo string
	Notes      string
	CreatedAt  time.Time
}

// LeadFilter — фильтр для выборки контактов.
type LeadFilter struct {
	Status *LeadStatus

	Pagination *PaginationParams
}
