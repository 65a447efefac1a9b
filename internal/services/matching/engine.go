package matching

import (
	"cmp"
	"math"
	"slices"

	"agence/internal/domain"

	"github.com/samber/lo"
)

const (
	// DefaultTolerance — допуск ±50% вокруг бюджета контакта.
	DefaultTolerance = 0.5
	// DefaultTopN — сколько объявлений возвращать, если не указано.
	DefaultTopN = 5
)

// Policy — бизнес-параметры матчинга.
type Policy struct {
	// Tolerance задаёт окно цен [floor(budget*(1-t)), ceil(budget*(1+t))].
	Tolerance   float64
	DefaultTopN int
}

// DefaultPolicy возвращает параметры по умолчанию (±50%, топ-5).
func DefaultPolicy() Policy {
	return Policy{
		Tolerance:   DefaultTolerance,
		DefaultTopN: DefaultTopN,
	}
}

func (p Policy) sanitize() Policy {
	if p.Tolerance < 0 || math.IsNaN(p.Tolerance) || math.IsInf(p.Tolerance, 0) {
		p.Tolerance = DefaultTolerance
	}
	if p.DefaultTopN <= 0 {
		p.DefaultTopN = DefaultTopN
	}
	return p
}

// Engine — чистый конвейер: фильтр по типу, окно бюджета, оценка, сортировка.
// Состояния не держит, безопасен для конкурентного использования.
type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy.sanitize()}
}

// Policy возвращает действующие параметры.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Window — ценовое окно вокруг бюджета.
type Window struct {
	Min    float64
	Max    float64
	Active bool
}

// BudgetWindow считает окно цен. Для бюджета <= 0 окно не применяется.
func (e *Engine) BudgetWindow(budget float64) Window {
	if !(budget > 0) {
		return Window{}
	}
	t := e.policy.Tolerance
	return Window{
		Min:    math.Max(0, math.Floor(budget*(1-t))),
		Max:    math.Ceil(budget * (1 + t)),
		Active: true,
	}
}

// Contains проверяет попадание цены в окно (границы включены).
func (w Window) Contains(price float64) bool {
	return price >= w.Min && price <= w.Max
}

// Score — близость цены к бюджету в диапазоне [0, 100].
// Если бюджет или цена не положительны, сравнивать нечего и оценка 0.
func Score(budget, price float64) int {
	if !(budget > 0) || !(price > 0) {
		return 0
	}
	proximity := math.Max(0, 1-math.Abs(price-budget)/budget)
	return int(math.Round(math.Min(proximity, 1) * 100))
}

// candidate — объявление с уже разобранными типом и ценой.
type candidate struct {
	listing domain.Listing
	kind    domain.TransactionType
	price   float64
	score   int
}

func newCandidate(l domain.Listing) candidate {
	return candidate{
		listing: l,
		kind:    NormalizeType(l.TransactionType),
		price:   ParsePrice(l.Price),
	}
}

// pipeline — все промежуточные стадии одного прогона, нужны для логов и отладки.
type pipeline struct {
	wanted domain.TransactionType
	budget float64
	window Window

	loaded     []candidate
	afterType  []candidate
	afterPrice []candidate
	scored     []candidate
	reasons    domain.ExclusionReasons
}

func (e *Engine) run(contact domain.Lead, listings []domain.Listing) pipeline {
	p := pipeline{
		wanted: NormalizeType(contact.TransactionType),
		budget: ParsePrice(contact.Budget),
	}
	p.window = e.BudgetWindow(p.budget)

	p.loaded = lo.Map(listings, func(l domain.Listing, _ int) candidate {
		return newCandidate(l)
	})

	published := lo.Filter(p.loaded, func(c candidate, _ int) bool {
		if !c.listing.Published {
			p.reasons.NotPublished++
			return false
		}
		return true
	})

	p.afterType = lo.Filter(published, func(c candidate, _ int) bool {
		if c.kind == domain.TransactionUnknown || (p.wanted != domain.TransactionUnknown && c.kind != p.wanted) {
			p.reasons.TypeExcluded++
			return false
		}
		return true
	})

	p.afterPrice = p.afterType
	if p.window.Active {
		p.afterPrice = lo.Filter(p.afterType, func(c candidate, _ int) bool {
			switch {
			case c.price == 0:
				p.reasons.ParsedPriceZero++
				return false
			case !p.window.Contains(c.price):
				p.reasons.PriceExcluded++
				return false
			}
			return true
		})
	}

	p.scored = lo.Map(p.afterPrice, func(c candidate, _ int) candidate {
		c.score = Score(p.budget, c.price)
		return c
	})
	slices.SortStableFunc(p.scored, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})

	return p
}

func (e *Engine) limit(topN int) int {
	if topN <= 0 {
		return e.policy.DefaultTopN
	}
	return topN
}

// Result — итог ранжирования вместе со сводкой фильтрации.
type Result struct {
	Matches    []domain.MatchResult
	Wanted     domain.TransactionType
	Budget     float64
	Window     Window
	Loaded     int
	Candidates int
	Reasons    domain.ExclusionReasons
}

// Match прогоняет конвейер и возвращает не более topN результатов,
// отсортированных по убыванию оценки. Matches никогда не nil.
func (e *Engine) Match(contact domain.Lead, listings []domain.Listing, topN int) Result {
	p := e.run(contact, listings)
	top := p.scored[:min(e.limit(topN), len(p.scored))]

	return Result{
		Matches: lo.Map(top, func(c candidate, _ int) domain.MatchResult {
			return domain.MatchResult{Score: c.score, Listing: c.listing}
		}),
		Wanted:     p.wanted,
		Budget:     p.budget,
		Window:     p.window,
		Loaded:     len(p.loaded),
		Candidates: len(p.afterPrice),
		Reasons:    p.reasons,
	}
}

// Rank — то же, что Match, но только список результатов.
func (e *Engine) Rank(contact domain.Lead, listings []domain.Listing, topN int) []domain.MatchResult {
	return e.Match(contact, listings, topN).Matches
}

// Candidates возвращает объявления, прошедшие оба фильтра, в исходном порядке.
func (e *Engine) Candidates(contact domain.Lead, listings []domain.Listing) ([]domain.Listing, domain.ExclusionReasons) {
	p := e.run(contact, listings)
	return lo.Map(p.afterPrice, func(c candidate, _ int) domain.Listing {
		return c.listing
	}), p.reasons
}

// Trace строит пошаговый разбор для отладочного маршрута.
func (e *Engine) Trace(contact domain.Lead, listings []domain.Listing, topN int) domain.MatchTrace {
	p := e.run(contact, listings)
	top := p.scored[:min(e.limit(topN), len(p.scored))]

	return domain.MatchTrace{
		LeadID:       contact.ID,
		RawType:      contact.TransactionType,
		WantedType:   p.wanted,
		RawBudget:    contact.Budget,
		Budget:       p.budget,
		MinPrice:     p.window.Min,
		MaxPrice:     p.window.Max,
		BudgetWindow: p.window.Active,
		Loaded:       lo.Map(p.loaded, describeCandidate),
		AfterType:    lo.Map(p.afterType, describeCandidate),
		AfterPrice:   lo.Map(p.afterPrice, describeCandidate),
		Reasons:      p.reasons,
		Scored: lo.Map(top, func(c candidate, i int) domain.ScoredCandidate {
			return domain.ScoredCandidate{NormalizedListing: describeCandidate(c, i), Score: c.score}
		}),
	}
}

// Describe возвращает сырые и нормализованные поля объявления.
func Describe(l domain.Listing) domain.NormalizedListing {
	return describeCandidate(newCandidate(l), 0)
}

func describeCandidate(c candidate, _ int) domain.NormalizedListing {
	return domain.NormalizedListing{
		ID:             c.listing.ID,
		RawType:        c.listing.TransactionType,
		NormalizedType: c.kind,
		RawPrice:       c.listing.Price,
		ParsedPrice:    c.price,
		Published:      c.listing.Published,
	}
}
