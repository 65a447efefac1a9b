package domain

import (
	"time"

	"github.com/google/uuid"
)

// Listing — объявление агентства (аренда или продажа).
type Listing struct {
	ID          uuid.UUID
	Address     string
	Description string
	// TransactionType как записан в объявлении; сравнивается только после нормализации.
	TransactionType string
	// Price хранится в исходном виде (импорт из таблиц, ручной ввод).
	Price     Amount
	Published bool
	Photos    []string
	VideoURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransactionType — каноническое значение типа сделки после нормализации.
// Всё, что не распознано, остаётся очищенной строкой без канонического смысла.
type TransactionType string

const (
	TransactionUnknown TransactionType = ""
	TransactionRent    TransactionType = "a_louer"
	TransactionSale    TransactionType = "a_vendre"
)

func (t TransactionType) String() string {
	return string(t)
}

// IsCanonical сообщает, является ли значение одним из двух канонических токенов.
func (t TransactionType) IsCanonical() bool {
	return t == TransactionRent || t == TransactionSale
}

// ListingPatch — частичное обновление объявления; nil-поля не меняются.
type ListingPatch struct {
	Address         *string
	Description     *string
	TransactionType *string
	Price           *Amount
	Published       *bool
	Photos          *[]string
	VideoURL        *string
}

// IsEmpty сообщает, что менять нечего.
func (p ListingPatch) IsEmpty() bool {
	return p == ListingPatch{}
}

// ListingFilter — фильтр для выборки объявлений.
type ListingFilter struct {
	Published *bool
	// TransactionType — подстрочный поиск без учёта регистра, как в публичном каталоге.
	TransactionType *string
	// Query ищет по адресу и описанию.
	Query *string

	Limit int
	Page  int
}

// MatchResult — кандидат для контакта с оценкой близости к бюджету.
type MatchResult struct {
	Score   int
	Listing Listing
}

// NormalizedListing — объявление с сырыми и нормализованными полями, для отладки матчинга.
type NormalizedListing struct {
	ID             uuid.UUID
	RawType        string
	NormalizedType TransactionType
	RawPrice       Amount
	ParsedPrice    float64
	Published      bool
}

// ExclusionReasons — сколько кандидатов отсеяно и почему.
type ExclusionReasons struct {
	TypeExcluded    int
	PriceExcluded   int
	ParsedPriceZero int
	NotPublished    int
}

// Total возвращает общее число исключённых кандидатов.
func (r ExclusionReasons) Total() int {
	return r.TypeExcluded + r.PriceExcluded + r.ParsedPriceZero + r.NotPublished
}

// ScoredCandidate — строка итоговой таблицы в трассировке матчинга.
type ScoredCandidate struct {
	NormalizedListing
	Score int
}

// MatchTrace — пошаговый разбор матчинга для одного контакта.
type MatchTrace struct {
	LeadID       uuid.UUID
	RawType      string
	WantedType   TransactionType
	RawBudget    Amount
	Budget       float64
	MinPrice     float64
	MaxPrice     float64
	BudgetWindow bool

	Loaded     []NormalizedListing
	AfterType  []NormalizedListing
	AfterPrice []NormalizedListing
	Reasons    ExclusionReasons
	Scored     []ScoredCandidate
}
