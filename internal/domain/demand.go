package domain

import (
	"time"

	"github.com/google/uuid"
)

// Demand — заявка, оставленная через форму на сайте. Администратор либо
// сохраняет её как контакт (Lead.DemandID), либо удаляет.
type Demand struct {
	ID uuid.UUID

	FirstName string
	LastName  string
	Phone     string

	TransactionType string
	Budget          Amount

	Description string
	Location    string
	HousingType string
	Married     string
	FamilySize  *int32

	RequestedAt time.Time
}
