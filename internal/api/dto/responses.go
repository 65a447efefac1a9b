package dto

import (
	"time"

	"agence/internal/domain"
	"agence/internal/lib/metrics"

	"github.com/samber/lo"
)

type OKResponse struct {
	OK bool `json:"ok"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

type MeResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Listing — объявление в формате, который ждёт фронтенд.
type Listing struct {
	ID        string        `json:"id"`
	Adresse   string        `json:"adresse"`
	Descript  string        `json:"descript"`
	Type      string        `json:"type"`
	Price     domain.Amount `json:"price"`
	Published bool          `json:"published"`
	Photos    []string      `json:"photos"`
	VideoURL  string        `json:"videoUrl,omitempty"`
	CreatedAt string        `json:"createdAt,omitempty"`
	UpdatedAt string        `json:"updatedAt,omitempty"`
}

func NewListing(l domain.Listing) Listing {
	return Listing{
		ID:        l.ID.String(),
		Adresse:   l.Address,
		Descript:  l.Description,
		Type:      l.TransactionType,
		Price:     l.Price,
		Published: l.Published,
		Photos:    lo.Ternary(l.Photos == nil, []string{}, l.Photos),
		VideoURL:  l.VideoURL,
		CreatedAt: formatTime(l.CreatedAt),
		UpdatedAt: formatTime(l.UpdatedAt),
	}
}

func NewListings(listings []domain.Listing) []Listing {
	return lo.Map(listings, func(l domain.Listing, _ int) Listing { return NewListing(l) })
}

type ListingEnvelope struct {
	OK      bool    `json:"ok"`
	Annonce Listing `json:"annonce"`
}

// Lead — контакт в формате админки.
type Lead struct {
	ID            string        `json:"id"`
	DemandeID     *string       `json:"demandeId,omitempty"`
	Nom           string        `json:"nom"`
	Prenom        string        `json:"prenom"`
	NumTel        string        `json:"numTel"`
	TypeService   string        `json:"typeService"`
	MaxBudget     domain.Amount `json:"maxBudget"`
	Description   string        `json:"description,omitempty"`
	Localisation  string        `json:"localisation,omitempty"`
	TypeLogement  string        `json:"typeLogement,omitempty"`
	Marie         string        `json:"marie,omitempty"`
	NombreFamille *int32        `json:"nombreFamille,omitempty"`
	Status        string        `json:"status"`
	ScheduledAt   string        `json:"scheduledAt,omitempty"`
	CreatedAt     string        `json:"createdAt,omitempty"`
	UpdatedAt     string        `json:"updatedAt,omitempty"`
}

func NewLead(l domain.Lead) Lead {
	out := Lead{
		ID:            l.ID.String(),
		DemandeID:     l.DemandID,
		Nom:           l.LastName,
		Prenom:        l.FirstName,
		NumTel:        l.Phone,
		TypeService:   l.TransactionType,
		MaxBudget:     l.Budget,
		Description:   l.Description,
		Localisation:  l.Location,
		TypeLogement:  l.HousingType,
		Marie:         l.Married,
		NombreFamille: l.FamilySize,
		Status:        l.Status.String(),
		CreatedAt:     formatTime(l.CreatedAt),
		UpdatedAt:     formatTime(l.UpdatedAt),
	}
	if l.ScheduledAt != nil {
		out.ScheduledAt = formatTime(*l.ScheduledAt)
	}
	return out
}

type LeadListResponse struct {
	OK            bool   `json:"ok"`
	Contacts      []Lead `json:"contacts"`
	NextPageToken string `json:"nextPageToken,omitempty"`
	TotalCount    int32  `json:"totalCount"`
	HasMore       bool   `json:"hasMore"`
}

type LeadEnvelope struct {
	OK      bool `json:"ok"`
	Contact Lead `json:"contact"`
}

// ScheduledCall — детали назначенного звонка.
type ScheduledCall struct {
	DateISO      string  `json:"dateIso"`
	Timezone     string  `json:"timezone"`
	AssignedTo   *string `json:"assignedTo"`
	Notes        string  `json:"notes"`
	CreatedAt    string  `json:"createdAt"`
	ReminderSent bool    `json:"reminderSent"`
}

func NewScheduledCall(c domain.ScheduledCall) ScheduledCall {
	return ScheduledCall{
		DateISO:    formatTime(c.At),
		Timezone:   c.Timezone,
		AssignedTo: lo.EmptyableToPtr(c.AssignedTo),
		Notes:      c.Notes,
		CreatedAt:  formatTime(c.CreatedAt),
	}
}

type ScheduleResponse struct {
	OK            bool          `json:"ok"`
	ScheduledCall ScheduledCall `json:"scheduledCall"`
}

// Demand — заявка с сайта в формате админки.
type Demand struct {
	ID            string        `json:"id"`
	Nom           string        `json:"nom"`
	Prenom        string        `json:"prenom"`
	NumTel        string        `json:"numTel"`
	TypeService   string        `json:"typeService"`
	MaxBudget     domain.Amount `json:"maxBudget"`
	Description   string        `json:"description"`
	Localisation  string        `json:"localisation"`
	TypeLogement  string        `json:"typeLogement"`
	Marie         string        `json:"marie"`
	NombreFamille *int32        `json:"nombreFamille"`
	DateDemande   string        `json:"dateDemande"`
}

func NewDemand(d domain.Demand) Demand {
	return Demand{
		ID:            d.ID.String(),
		Nom:           d.LastName,
		Prenom:        d.FirstName,
		NumTel:        d.Phone,
		TypeService:   d.TransactionType,
		MaxBudget:     d.Budget,
		Description:   d.Description,
		Localisation:  d.Location,
		TypeLogement:  d.HousingType,
		Marie:         d.Married,
		NombreFamille: d.FamilySize,
		DateDemande:   formatTime(d.RequestedAt),
	}
}

func NewDemands(demands []domain.Demand) []Demand {
	return lo.Map(demands, func(d domain.Demand, _ int) Demand { return NewDemand(d) })
}

type DemandCreatedResponse struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id"`
	Demande Demand `json:"demande"`
}

type Match struct {
	Score int     `json:"score"`
	Offer Listing `json:"offer"`
}

type MatchesResponse struct {
	OK      bool    `json:"ok"`
	Matches []Match `json:"matches"`
}

func NewMatchesResponse(matches []domain.MatchResult) MatchesResponse {
	return MatchesResponse{
		OK: true,
		Matches: lo.Map(matches, func(m domain.MatchResult, _ int) Match {
			return Match{Score: m.Score, Offer: NewListing(m.Listing)}
		}),
	}
}

// NormalizedListing — строка отладочной таблицы нормализации.
type NormalizedListing struct {
	ID             string        `json:"id"`
	RawType        string        `json:"rawType"`
	NormalizedType string        `json:"normalizedType"`
	RawPrice       domain.Amount `json:"rawPrice"`
	ParsedPrice    float64       `json:"parsedPrice"`
	Published      bool          `json:"published"`
}

func NewNormalizedListing(n domain.NormalizedListing) NormalizedListing {
	return NormalizedListing{
		ID:             n.ID.String(),
		RawType:        n.RawType,
		NormalizedType: n.NormalizedType.String(),
		RawPrice:       n.RawPrice,
		ParsedPrice:    n.ParsedPrice,
		Published:      n.Published,
	}
}

func NewNormalizedListings(items []domain.NormalizedListing) []NormalizedListing {
	return lo.Map(items, func(n domain.NormalizedListing, _ int) NormalizedListing {
		return NewNormalizedListing(n)
	})
}

type NormalizedListingsResponse struct {
	OK       bool                `json:"ok"`
	Count    int                 `json:"count"`
	Annonces []NormalizedListing `json:"annonces"`
}

type ScoredListing struct {
	NormalizedListing
	Score int `json:"score"`
}

type Reasons struct {
	TypeExcluded    int `json:"type_excluded"`
	PriceExcluded   int `json:"price_excluded"`
	ParsedPriceZero int `json:"parsedPrice_zero"`
	NotPublished    int `json:"not_published"`
}

type TraceContact struct {
	TypeService string        `json:"typeService"`
	MaxBudget   domain.Amount `json:"maxBudget"`
}

// TraceResponse — разбор матчинга по шагам.
type TraceResponse struct {
	OK              bool                `json:"ok"`
	ContactID       string              `json:"contactId"`
	Contact         TraceContact        `json:"contact"`
	TypeWanted      string              `json:"typeWanted"`
	Budget          float64             `json:"budget"`
	BudgetWindow    bool                `json:"budgetWindow"`
	MinPrice        float64             `json:"minPrice"`
	MaxPrice        float64             `json:"maxPrice"`
	LoadedCount     int                 `json:"loadedCount"`
	Loaded          []NormalizedListing `json:"loaded"`
	AfterTypeCount  int                 `json:"afterTypeCount"`
	AfterType       []NormalizedListing `json:"afterType"`
	AfterPriceCount int                 `json:"afterPriceCount"`
	AfterPrice      []NormalizedListing `json:"afterPrice"`
	Reasons         Reasons             `json:"reasons"`
	Scored          []ScoredListing     `json:"scored"`
}

func NewTraceResponse(t domain.MatchTrace) TraceResponse {
	return TraceResponse{
		OK:              true,
		ContactID:       t.LeadID.String(),
		Contact:         TraceContact{TypeService: t.RawType, MaxBudget: t.RawBudget},
		TypeWanted:      t.WantedType.String(),
		Budget:          t.Budget,
		BudgetWindow:    t.BudgetWindow,
		MinPrice:        t.MinPrice,
		MaxPrice:        t.MaxPrice,
		LoadedCount:     len(t.Loaded),
		Loaded:          NewNormalizedListings(t.Loaded),
		AfterTypeCount:  len(t.AfterType),
		AfterType:       NewNormalizedListings(t.AfterType),
		AfterPriceCount: len(t.AfterPrice),
		AfterPrice:      NewNormalizedListings(t.AfterPrice),
		Reasons: Reasons{
			TypeExcluded:    t.Reasons.TypeExcluded,
			PriceExcluded:   t.Reasons.PriceExcluded,
			ParsedPriceZero: t.Reasons.ParsedPriceZero,
			NotPublished:    t.Reasons.NotPublished,
		},
		Scored: lo.Map(t.Scored, func(s domain.ScoredCandidate, _ int) ScoredListing {
			return ScoredListing{NormalizedListing: NewNormalizedListing(s.NormalizedListing), Score: s.Score}
		}),
	}
}

type NormalizeTypeResponse struct {
	Value      string `json:"value"`
	Normalized string `json:"normalized"`
}

type ParsePriceResponse struct {
	Value  string  `json:"value"`
	Parsed float64 `json:"parsed"`
}

type MatchStatsResponse struct {
	OK    bool          `json:"ok"`
	Stats metrics.Stats `json:"stats"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
