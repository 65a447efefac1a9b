package matching

import (
	"fmt"
	"testing"

	"agence/internal/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListing(kind string, price any) domain.Listing {
	return domain.Listing{
		ID:              uuid.New(),
		TransactionType: kind,
		Price:           domain.NewAmount(price),
		Published:       true,
	}
}

func newContact(kind string, budget any) domain.Lead {
	return domain.Lead{
		ID:              uuid.New(),
		TransactionType: kind,
		Budget:          domain.NewAmount(budget),
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		budget, price float64
		want          int
	}{
		{1000, 1000, 100},
		{1000, 2000, 0},
		{1000, 0, 0},
		{1000, 1500, 50},
		{1000, 500, 50},
		{1000, 900, 90},
		{1000, 3000, 0},
		{0, 1000, 0},
		{-1000, 1000, 0},
		{1000, 1004, 100},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%v", tt.budget, tt.price), func(t *testing.T) {
			got := Score(tt.budget, tt.price)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestEngine_BudgetWindow(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	w := e.BudgetWindow(1000)
	assert.True(t, w.Active)
	assert.Equal(t, 500.0, w.Min)
	assert.Equal(t, 1500.0, w.Max)

	// floor/ceil на нецелых границах
	w = e.BudgetWindow(999)
	assert.Equal(t, 499.0, w.Min)
	assert.Equal(t, 1499.0, w.Max)

	assert.False(t, e.BudgetWindow(0).Active)
	assert.False(t, e.BudgetWindow(-5).Active)
}

func TestEngine_BudgetWindowBoundaries(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("a_louer", 1000)

	listings := []domain.Listing{
		newListing("a_louer", 499),
		newListing("a_louer", 500),
		newListing("a_louer", 1500),
		newListing("a_louer", 1501),
	}

	got, reasons := e.Candidates(contact, listings)

	prices := lo.Map(got, func(l domain.Listing, _ int) float64 { return ParsePrice(l.Price) })
	assert.Equal(t, []float64{500, 1500}, prices)
	assert.Equal(t, 2, reasons.PriceExcluded)
}

func TestEngine_NoBudgetSkipsWindow(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("location", nil)

	listings := []domain.Listing{
		newListing("a_louer", 10),
		newListing("a_louer", "sur demande"),
		newListing("a_louer", 5_000_000),
	}

	res := e.Match(contact, listings, 10)

	require.Len(t, res.Matches, 3)
	assert.False(t, res.Window.Active)
	for _, m := range res.Matches {
		assert.Equal(t, 0, m.Score)
	}
	// при равных оценках сохраняется исходный порядок
	assert.Equal(t, listings[0].ID, res.Matches[0].Listing.ID)
	assert.Equal(t, listings[2].ID, res.Matches[2].Listing.ID)
}

func TestEngine_ZeroPriceExcludedWhenBudgetSet(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("a_vendre", "1 000")

	listings := []domain.Listing{
		newListing("a_vendre", nil),
		newListing("a_vendre", "prix à débattre"),
		newListing("a_vendre", 1000),
	}

	res := e.Match(contact, listings, 5)

	require.Len(t, res.Matches, 1)
	assert.Equal(t, 100, res.Matches[0].Score)
	assert.Equal(t, 2, res.Reasons.ParsedPriceZero)
}

func TestEngine_TypeExactness(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("À louer", 1000)

	listings := []domain.Listing{
		newListing("À vendre", 1000),
		newListing("achat", 1000),
		newListing("vente", 950),
	}

	res := e.Match(contact, listings, 5)

	assert.Empty(t, res.Matches)
	assert.NotNil(t, res.Matches)
	assert.Equal(t, 3, res.Reasons.TypeExcluded)
}

func TestEngine_EmptyLeadTypeAcceptsAnyTypedListing(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("", 1000)

	listings := []domain.Listing{
		newListing("a_louer", 1000),
		newListing("a_vendre", 1100),
		newListing("", 1000),
	}

	res := e.Match(contact, listings, 5)

	require.Len(t, res.Matches, 2)
	assert.Equal(t, 1, res.Reasons.TypeExcluded)
}

func TestEngine_PassThroughLeadTypeRequiresSameListingType(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("Maison", 1000)

	require.Equal(t, domain.TransactionType("maison"), NormalizeType(contact.TransactionType))

	maison := newListing("maison", 1000)
	listings := []domain.Listing{
		newListing("a_louer", 1000),
		newListing("À vendre", 1000),
		newListing("", 1000),
		maison,
	}

	res := e.Match(contact, listings, 5)

	require.Len(t, res.Matches, 1)
	assert.Equal(t, maison.ID, res.Matches[0].Listing.ID)
	assert.Equal(t, 3, res.Reasons.TypeExcluded)
}

func TestEngine_UnpublishedExcluded(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("a_louer", 1000)

	draft := newListing("a_louer", 1000)
	draft.Published = false

	res := e.Match(contact, []domain.Listing{draft}, 5)

	assert.Empty(t, res.Matches)
	assert.Equal(t, 1, res.Reasons.NotPublished)
}

func TestEngine_TopNTruncation(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("a_vendre", 1000)

	listings := make([]domain.Listing, 0, 10)
	for i := 0; i < 10; i++ {
		listings = append(listings, newListing("a_vendre", 600+i*90))
	}

	full := e.Rank(contact, listings, len(listings))
	top := e.Rank(contact, listings, 3)

	require.Len(t, full, 10)
	require.Len(t, top, 3)
	assert.Equal(t, full[:3], top)
	for i := 1; i < len(full); i++ {
		assert.GreaterOrEqual(t, full[i-1].Score, full[i].Score)
	}
}

func TestEngine_DefaultTopN(t *testing.T) {
	e := NewEngine(Policy{Tolerance: 0.5})
	contact := newContact("a_vendre", nil)

	listings := make([]domain.Listing, 8)
	for i := range listings {
		listings[i] = newListing("a_vendre", 100)
	}

	assert.Len(t, e.Rank(contact, listings, 0), DefaultTopN)
	assert.Len(t, e.Rank(contact, listings, -1), DefaultTopN)
}

func TestEngine_CustomTolerance(t *testing.T) {
	e := NewEngine(Policy{Tolerance: 0.1, DefaultTopN: 5})
	contact := newContact("a_louer", 1000)

	listings := []domain.Listing{
		newListing("a_louer", 899),
		newListing("a_louer", 900),
		newListing("a_louer", 1100),
		newListing("a_louer", 1101),
	}

	got, _ := e.Candidates(contact, listings)
	assert.Len(t, got, 2)
}

func TestEngine_DoesNotMutateInput(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("Location", "1 000")

	listings := []domain.Listing{
		newListing("À louer", "1 200"),
		newListing("À louer", 950),
		newListing("à vendre", 1000),
	}
	before := append([]domain.Listing(nil), listings...)
	contactBefore := contact

	res := e.Match(contact, listings, 5)

	assert.Equal(t, before, listings)
	assert.Equal(t, contactBefore, contact)
	require.Len(t, res.Matches, 2)
	// результат несёт исходное объявление, без нормализации
	assert.Equal(t, "À louer", res.Matches[0].Listing.TransactionType)
	assert.Equal(t, 950, res.Matches[0].Listing.Price.Raw())
}

func TestEngine_Deterministic(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("a_louer", 1000)
	listings := []domain.Listing{
		newListing("a_louer", 900),
		newListing("a_louer", 1100),
		newListing("a_louer", 1000),
	}

	first := e.Rank(contact, listings, 5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Rank(contact, listings, 5))
	}
	// 900 и 1100 равноудалены от бюджета, порядок входа сохраняется
	require.Len(t, first, 3)
	assert.Equal(t, listings[2].ID, first[0].Listing.ID)
	assert.Equal(t, listings[0].ID, first[1].Listing.ID)
	assert.Equal(t, listings[1].ID, first[2].Listing.ID)
}

func TestEngine_EndToEndScenario(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("location", 1000)

	listings := []domain.Listing{
		newListing("À louer", 900),
		newListing("À vendre", 950),
		newListing("a_louer", 2000),
	}

	res := e.Match(contact, listings, 5)

	require.Len(t, res.Matches, 1)
	assert.Equal(t, 900, res.Matches[0].Listing.Price.Raw())
	assert.Equal(t, 90, res.Matches[0].Score)
	assert.Equal(t, 3, res.Loaded)
	assert.Equal(t, 1, res.Reasons.TypeExcluded)
	assert.Equal(t, 1, res.Reasons.PriceExcluded)
}

func TestEngine_Trace(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	contact := newContact("location", "1 000")
	listings := []domain.Listing{
		newListing("À louer", "900"),
		newListing("À vendre", 950),
		newListing("a_louer", 2000),
	}

	trace := e.Trace(contact, listings, 5)

	assert.Equal(t, contact.ID, trace.LeadID)
	assert.Equal(t, domain.TransactionRent, trace.WantedType)
	assert.Equal(t, 1000.0, trace.Budget)
	assert.Equal(t, 500.0, trace.MinPrice)
	assert.Equal(t, 1500.0, trace.MaxPrice)
	assert.True(t, trace.BudgetWindow)
	assert.Len(t, trace.Loaded, 3)
	assert.Len(t, trace.AfterType, 2)
	assert.Len(t, trace.AfterPrice, 1)
	require.Len(t, trace.Scored, 1)
	assert.Equal(t, 90, trace.Scored[0].Score)
	assert.Equal(t, "À louer", trace.Scored[0].RawType)
	assert.Equal(t, 900.0, trace.Scored[0].ParsedPrice)
}

func TestDescribe(t *testing.T) {
	l := newListing("Location", "45 000,5")
	l.Published = false

	d := Describe(l)

	assert.Equal(t, l.ID, d.ID)
	assert.Equal(t, "Location", d.RawType)
	assert.Equal(t, domain.TransactionRent, d.NormalizedType)
	assert.Equal(t, 45000.5, d.ParsedPrice)
	assert.Equal(t, "45 000,5", d.RawPrice.String())
	assert.False(t, d.Published)
}
