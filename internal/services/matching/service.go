package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agence/internal/domain"
	"agence/internal/lib/logger/sl"
	"agence/internal/lib/metrics"
	"agence/internal/services/lead"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ListingProvider — источник объявлений для матчинга.
type ListingProvider interface {
	ListPublished(ctx context.Context) ([]domain.Listing, error)
	ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
}

// LeadProvider — источник контактов.
type LeadProvider interface {
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

var ErrLeadNotFound = errors.New("lead not found")

type Service struct {
	log      *slog.Logger
	engine   *Engine
	listings ListingProvider
	leads    LeadProvider
	metrics  *metrics.MatchMetrics

	fetchTimeout time.Duration
}

// New создаёт сервис матчинга. fetchTimeout <= 0 — без отдельного таймаута
// на загрузку объявлений. m может быть nil.
func New(
	log *slog.Logger,
	engine *Engine,
	listings ListingProvider,
	leads LeadProvider,
	m *metrics.MatchMetrics,
	fetchTimeout time.Duration,
) *Service {
	if engine == nil {
		engine = NewEngine(DefaultPolicy())
	}
	return &Service{
		log:          log,
		engine:       engine,
		listings:     listings,
		leads:        leads,
		metrics:      m,
		fetchTimeout: fetchTimeout,
	}
}

// Engine возвращает движок, с которым работает сервис.
func (s *Service) Engine() *Engine {
	return s.engine
}

// GetTopMatches — лучшие объявления для контакта. Если источник объявлений
// недоступен, ошибка логируется и возвращается пустой список: подбор не должен
// ломать карточку контакта.
func (s *Service) GetTopMatches(ctx context.Context, contact domain.Lead, topN int) []domain.MatchResult {
	const op = "matching.Service.GetTopMatches"
	log := s.log.With(slog.String("op", op), slog.String("lead_id", contact.ID.String()))

	timer := s.metrics.StartTimer()

	listings, err := s.loadPublished(ctx)
	if err != nil {
		log.Error("failed to load listings, returning no matches", sl.Err(err))
		timer.Stop(metrics.OutcomeFailOpen, 0, domain.ExclusionReasons{})
		return []domain.MatchResult{}
	}

	res := s.engine.Match(contact, listings, topN)

	log.Info("matching finished",
		slog.Int("loaded", res.Loaded),
		slog.String("raw_type", contact.TransactionType),
		slog.String("wanted_type", res.Wanted.String()),
		slog.Float64("budget", res.Budget),
		slog.Bool("budget_window", res.Window.Active),
		slog.Float64("min_price", res.Window.Min),
		slog.Float64("max_price", res.Window.Max),
		slog.Int("candidates", res.Candidates),
		slog.Int("returned", len(res.Matches)),
		slog.Group("excluded",
			slog.Int("type", res.Reasons.TypeExcluded),
			slog.Int("price_window", res.Reasons.PriceExcluded),
			slog.Int("price_zero", res.Reasons.ParsedPriceZero),
			slog.Int("not_published", res.Reasons.NotPublished),
		),
	)

	timer.Stop(metrics.OutcomeMatched, len(res.Matches), res.Reasons)
	return res.Matches
}

// MatchLead находит контакт и подбирает для него объявления.
// Отсутствие контакта — ErrLeadNotFound; прочие ошибки хранилища контактов
// возвращаются как есть.
func (s *Service) MatchLead(ctx context.Context, id uuid.UUID, topN int) ([]domain.MatchResult, error) {
	const op = "matching.Service.MatchLead"

	contact, err := s.resolveLead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetTopMatches(ctx, contact, topN), nil
}

// ExplainLead — пошаговый разбор матчинга. В отличие от GetTopMatches ошибки
// источника объявлений не скрываются.
func (s *Service) ExplainLead(ctx context.Context, id uuid.UUID, topN int) (domain.MatchTrace, error) {
	const op = "matching.Service.ExplainLead"

	contact, err := s.resolveLead(ctx, id)
	if err != nil {
		return domain.MatchTrace{}, fmt.Errorf("%s: %w", op, err)
	}

	listings, err := s.loadPublished(ctx)
	if err != nil {
		return domain.MatchTrace{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.engine.Trace(contact, listings, topN), nil
}

// NormalizedListings — все объявления (включая неопубликованные) с сырыми
// и нормализованными типом и ценой.
func (s *Service) NormalizedListings(ctx context.Context) ([]domain.NormalizedListing, error) {
	const op = "matching.Service.NormalizedListings"

	listings, err := s.listings.ListListings(ctx, domain.ListingFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lo.Map(listings, func(l domain.Listing, _ int) domain.NormalizedListing {
		return Describe(l)
	}), nil
}

func (s *Service) resolveLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	contact, err := s.leads.GetLead(ctx, id)
	if err != nil {
		if errors.Is(err, lead.ErrLeadNotFound) {
			s.metrics.RecordMatch(metrics.OutcomeLeadNotFound, 0, 0, domain.ExclusionReasons{})
			return domain.Lead{}, ErrLeadNotFound
		}
		return domain.Lead{}, err
	}
	return contact, nil
}

// loadPublished ограничивает загрузку таймаутом и превращает панику
// источника в ошибку.
func (s *Service) loadPublished(ctx context.Context) (listings []domain.Listing, err error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			listings, err = nil, fmt.Errorf("listing provider panic: %v", r)
		}
	}()

	return s.listings.ListPublished(ctx)
}
