package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"agence/internal/domain"

	"github.com/samber/lo"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateLeadRequest повторяет поля формы контакта на сайте.
type CreateLeadRequest struct {
	DemandeID     string        `json:"demandeId"`
	Nom           string        `json:"nom"`
	Prenom        string        `json:"prenom"`
	NumTel        string        `json:"numTel"`
	TypeService   string        `json:"typeService"`
	Type          string        `json:"type"`
	MaxBudget     domain.Amount `json:"maxBudget"`
	Budget        domain.Amount `json:"budget"`
	Description   string        `json:"description"`
	Localisation  string        `json:"localisation"`
	TypeLogement  string        `json:"typeLogement"`
	Marie         string        `json:"marie"`
	NombreFamille *int32        `json:"nombreFamille"`
	Status        string        `json:"status"`
}

// ToDomain сводит дублирующиеся поля: typeService важнее type, maxBudget важнее budget.
// Пустой или нулевой maxBudget уступает budget, как и при чтении снимка.
func (r CreateLeadRequest) ToDomain() domain.Lead {
	kind := strings.TrimSpace(r.TypeService)
	if kind == "" {
		kind = strings.TrimSpace(r.Type)
	}

	budget := r.MaxBudget
	if !budget.Truthy() {
		budget = r.Budget
	}

	l := domain.Lead{
		FirstName:       strings.TrimSpace(r.Prenom),
		LastName:        strings.TrimSpace(r.Nom),
		Phone:           strings.TrimSpace(r.NumTel),
		TransactionType: kind,
		Budget:          budget,
		Description:     r.Description,
		Location:        r.Localisation,
		HousingType:     r.TypeLogement,
		Married:         r.Marie,
		FamilySize:      r.NombreFamille,
		Status:          domain.LeadStatus(r.Status),
	}
	if d := strings.TrimSpace(r.DemandeID); d != "" {
		l.DemandID = &d
	}
	return l
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// PublishRequest: published приходит как bool или строка "true"/"false".
type PublishRequest struct {
	Published any `json:"published"`
}

// Value возвращает флаг и false, если поле не передано.
func (r PublishRequest) Value() (bool, bool) {
	switch v := r.Published.(type) {
	case bool:
		return v, true
	case string:
		return v == "true", true
	case nil:
		return false, false
	}
	return false, true
}

// ScheduleRequest — назначение звонка контакту.
type ScheduleRequest struct {
	DateISO    string `json:"dateIso"`
	Timezone   string `json:"timezone"`
	AssignedTo string `json:"assignedTo"`
	Notes      string `json:"notes"`
}

// localDateLayouts — форматы поля datetime-local, без смещения.
var localDateLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05"}

// ToDomain разбирает dateIso. Пустая дата даёт нулевое время: её отклоняет сервис.
// Дата без смещения читается в указанном часовом поясе.
func (r ScheduleRequest) ToDomain() (domain.ScheduledCall, error) {
	call := domain.ScheduledCall{
		Timezone:   strings.TrimSpace(r.Timezone),
		AssignedTo: strings.TrimSpace(r.AssignedTo),
		Notes:      r.Notes,
	}

	raw := strings.TrimSpace(r.DateISO)
	if raw == "" {
		return call, nil
	}

	if at, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		call.At = at
		return call, nil
	}

	loc := time.UTC
	if call.Timezone != "" {
		if l, err := time.LoadLocation(call.Timezone); err == nil {
			loc = l
		}
	}
	for _, layout := range localDateLayouts {
		if at, err := time.ParseInLocation(layout, raw, loc); err == nil {
			call.At = at
			return call, nil
		}
	}

	return domain.ScheduledCall{}, fmt.Errorf("dateIso %q is not an ISO date", raw)
}

// SubmitDemandRequest — форма заявки на сайте.
type SubmitDemandRequest struct {
	Nom           string        `json:"nom"`
	Prenom        string        `json:"prenom"`
	NumTel        string        `json:"numTel"`
	TypeService   string        `json:"typeService"`
	MaxBudget     domain.Amount `json:"maxBudget"`
	Description   string        `json:"description"`
	Localisation  string        `json:"localisation"`
	TypeLogement  string        `json:"typeLogement"`
	Marie         string        `json:"marie"`
	NombreFamille domain.Amount `json:"nombreFamille"`
}

// ToDomain: nombreFamille приходит числом или строкой; нечисловое значение отбрасывается.
func (r SubmitDemandRequest) ToDomain() domain.Demand {
	d := domain.Demand{
		FirstName:       r.Prenom,
		LastName:        r.Nom,
		Phone:           r.NumTel,
		TransactionType: strings.TrimSpace(r.TypeService),
		Budget:          r.MaxBudget,
		Description:     r.Description,
		Location:        r.Localisation,
		HousingType:     r.TypeLogement,
		Married:         r.Marie,
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(r.NombreFamille.String()), 64); err == nil && n > 0 {
		d.FamilySize = lo.ToPtr(int32(n))
	}
	return d
}

// ListingRequest — создание и правка объявления. Отсутствующее поле при правке
// не меняется; пустая или нулевая цена сбрасывает цену.
type ListingRequest struct {
	Adresse   *string        `json:"adresse"`
	Descript  *string        `json:"descript"`
	Type      *string        `json:"type"`
	Price     *domain.Amount `json:"price"`
	Published any            `json:"published"`
	Photos    *[]string      `json:"photos"`
	VideoURL  *string        `json:"videoUrl"`
}

func (r ListingRequest) price() domain.Amount {
	if r.Price == nil || !r.Price.Truthy() {
		return domain.Amount{}
	}
	return *r.Price
}

// ToListing — новое объявление; без published оно создаётся неопубликованным.
func (r ListingRequest) ToListing() domain.Listing {
	published, _ := PublishRequest{Published: r.Published}.Value()

	return domain.Listing{
		Address:         lo.FromPtr(r.Adresse),
		Description:     lo.FromPtr(r.Descript),
		TransactionType: lo.FromPtr(r.Type),
		Price:           r.price(),
		Published:       published,
		Photos:          lo.FromPtrOr(r.Photos, []string{}),
		VideoURL:        lo.FromPtr(r.VideoURL),
	}
}

// ToPatch — только переданные поля.
func (r ListingRequest) ToPatch() domain.ListingPatch {
	patch := domain.ListingPatch{
		Address:         r.Adresse,
		Description:     r.Descript,
		TransactionType: r.Type,
		Photos:          r.Photos,
		VideoURL:        r.VideoURL,
	}
	if r.Price != nil {
		patch.Price = lo.ToPtr(r.price())
	}
	if published, present := (PublishRequest{Published: r.Published}).Value(); present {
		patch.Published = &published
	}
	return patch
}
