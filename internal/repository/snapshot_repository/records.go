package snapshot_repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agence/internal/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// legacyNamespace — пространство UUIDv5 для старых числовых и Firestore-идентификаторов.
var legacyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:agence:snapshot"))

// offreRecord — объявление в том виде, как оно лежит в offres.json.
// Поля цены и типа исторически назывались по-разному.
type offreRecord struct {
	ID          any           `json:"id"`
	Adresse     string        `json:"adresse"`
	Descript    string        `json:"descript"`
	Type        *string       `json:"type"`
	TypeService *string       `json:"typeService"`
	Price       domain.Amount `json:"price"`
	Prix        domain.Amount `json:"prix"`
	PriceNum    domain.Amount `json:"priceNum"`
	Published   any           `json:"published"`
	Photos      []string      `json:"photos"`
	PhotoPaths  []string      `json:"photoPaths"`
	VideoURL    string        `json:"videoUrl"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

// contactRecord — контакт из contacts.json.
type contactRecord struct {
	ID            any           `json:"id"`
	DemandeID     any           `json:"demandeId"`
	Nom           string        `json:"nom"`
	Prenom        string        `json:"prenom"`
	NumTel        string        `json:"numTel"`
	TypeService   string        `json:"typeService"`
	Type          string        `json:"type"`
	MaxBudget     domain.Amount `json:"maxBudget"`
	Budget        domain.Amount `json:"budget"`
	Description   string        `json:"description"`
	Localisation  string        `json:"localisation"`
	Marie         any           `json:"marie"`
	NombreFamille any           `json:"nombreFamille"`
	TypeLogement  string        `json:"typeLogement"`
	Status        string        `json:"status"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

// demandeRecord — заявка с сайта из demandes.json.
type demandeRecord struct {
	ID            any           `json:"id"`
	Nom           string        `json:"nom"`
	Prenom        string        `json:"prenom"`
	NumTel        string        `json:"numTel"`
	TypeService   string        `json:"typeService"`
	MaxBudget     domain.Amount `json:"maxBudget"`
	Description   string        `json:"description"`
	Localisation  string        `json:"localisation"`
	Marie         any           `json:"marie"`
	NombreFamille any           `json:"nombreFamille"`
	TypeLogement  string        `json:"typeLogement"`
	DateDemande   string        `json:"dateDemande"`
	CreatedAt     string        `json:"createdAt"`
}

func decodeRecords[T any](data []byte) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out []T
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// toListing сводит варианты полей к одному: type ?? typeService, price ?? prix ?? priceNum.
func (r offreRecord) toListing() domain.Listing {
	kind := ""
	switch {
	case r.Type != nil:
		kind = *r.Type
	case r.TypeService != nil:
		kind = *r.TypeService
	}

	price := r.Price
	if !price.IsSet() {
		price = r.Prix
	}
	if !price.IsSet() {
		price = r.PriceNum
	}

	photos := r.Photos
	if len(photos) == 0 {
		photos = r.PhotoPaths
	}

	createdAt := parseTime(r.CreatedAt)
	updatedAt := parseTime(r.UpdatedAt)
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	return domain.Listing{
		ID:              legacyID("offre", r.ID),
		Address:         r.Adresse,
		Description:     r.Descript,
		TransactionType: kind,
		Price:           price,
		Published:       domain.Truthy(r.Published),
		Photos:          lo.Ternary(photos == nil, []string{}, photos),
		VideoURL:        r.VideoURL,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// toLead: typeService || type, maxBudget || budget (пустые значения пропускаются).
func (r contactRecord) toLead() domain.Lead {
	budget := r.MaxBudget
	if !budget.Truthy() {
		budget = r.Budget
	}

	status := domain.LeadStatus(r.Status)
	if status == domain.LeadStatusUnspecified {
		status = domain.LeadStatusNew
	}

	createdAt := parseTime(r.CreatedAt)
	updatedAt := parseTime(r.UpdatedAt)
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	l := domain.Lead{
		ID:              legacyID("contact", r.ID),
		FirstName:       r.Prenom,
		LastName:        r.Nom,
		Phone:           r.NumTel,
		TransactionType: lo.CoalesceOrEmpty(r.TypeService, r.Type),
		Budget:          budget,
		Description:     r.Description,
		Location:        r.Localisation,
		HousingType:     r.TypeLogement,
		Married:         text(r.Marie),
		FamilySize:      parseInt32(r.NombreFamille),
		Status:          status,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
	if demand := text(r.DemandeID); demand != "" {
		l.DemandID = &demand
	}
	return l
}

// toDemand: дата заявки — dateDemande, иначе createdAt.
func (r demandeRecord) toDemand() domain.Demand {
	requestedAt := parseTime(r.DateDemande)
	if requestedAt.IsZero() {
		requestedAt = parseTime(r.CreatedAt)
	}

	return domain.Demand{
		ID:              legacyID("demande", r.ID),
		FirstName:       r.Prenom,
		LastName:        r.Nom,
		Phone:           r.NumTel,
		TransactionType: r.TypeService,
		Budget:          r.MaxBudget,
		Description:     r.Description,
		Location:        r.Localisation,
		HousingType:     r.TypeLogement,
		Married:         text(r.Marie),
		FamilySize:      parseInt32(r.NombreFamille),
		RequestedAt:     requestedAt,
	}
}

// legacyID возвращает UUID как есть либо детерминированный UUIDv5 от старого идентификатора.
func legacyID(kind string, raw any) uuid.UUID {
	s := text(raw)
	if s == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	return uuid.NewSHA1(legacyNamespace, []byte(kind+":"+s))
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return lo.Ternary(t, "oui", "non")
	}
	return fmt.Sprint(v)
}

func parseInt32(v any) *int32 {
	s := text(v)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return nil
	}
	return lo.ToPtr(int32(f))
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
