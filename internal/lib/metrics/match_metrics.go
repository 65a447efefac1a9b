package metrics

import (
	"log/slog"
	"sync/atomic"
	"time"

	"agence/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome — чем закончился запрос матчинга.
type Outcome string

const (
	// OutcomeMatched — источник объявлений ответил, результат посчитан (возможно пустой).
	OutcomeMatched Outcome = "matched"
	// OutcomeFailOpen — источник объявлений недоступен, отдан пустой список.
	OutcomeFailOpen Outcome = "fail_open"
	// OutcomeLeadNotFound — контакт не найден.
	OutcomeLeadNotFound Outcome = "lead_not_found"
)

// MatchMetrics — счётчики матчинга: атомарные для JSON-статистики в админке
// и коллекторы Prometheus для /metrics.
type MatchMetrics struct {
	log *slog.Logger

	callsTotal    int64
	failOpenTotal int64
	notFoundTotal int64
	emptyTotal    int64
	resultsTotal  int64

	latencyTotalMs int64
	lastLatencyMs  int64

	requests *prometheus.CounterVec
	duration prometheus.Histogram
	excluded *prometheus.CounterVec
	results  prometheus.Histogram
}

// NewMatchMetrics регистрирует коллекторы в reg. reg == nil — только атомарные счётчики.
func NewMatchMetrics(log *slog.Logger, reg prometheus.Registerer) *MatchMetrics {
	m := &MatchMetrics{log: log}
	if reg == nil {
		return m
	}

	factory := promauto.With(reg)
	m.requests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agence_match_requests_total",
			Help: "Total number of lead matching requests by outcome",
		},
		[]string{"outcome"},
	)
	m.duration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agence_match_duration_seconds",
			Help:    "Duration of lead matching including listing fetch",
			Buckets: prometheus.DefBuckets,
		},
	)
	m.excluded = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agence_match_excluded_total",
			Help: "Listings excluded from matching by reason",
		},
		[]string{"reason"},
	)
	m.results = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agence_match_results",
			Help:    "Number of matches returned per request",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)
	return m
}

// RecordMatch записывает один запрос матчинга. Безопасен для nil-получателя.
func (m *MatchMetrics) RecordMatch(outcome Outcome, latency time.Duration, results int, reasons domain.ExclusionReasons) {
	if m == nil {
		return
	}

	latencyMs := latency.Milliseconds()
	atomic.AddInt64(&m.callsTotal, 1)
	atomic.AddInt64(&m.latencyTotalMs, latencyMs)
	atomic.StoreInt64(&m.lastLatencyMs, latencyMs)

	switch outcome {
	case OutcomeFailOpen:
		atomic.AddInt64(&m.failOpenTotal, 1)
	case OutcomeLeadNotFound:
		atomic.AddInt64(&m.notFoundTotal, 1)
	case OutcomeMatched:
		atomic.AddInt64(&m.resultsTotal, int64(results))
		if results == 0 {
			atomic.AddInt64(&m.emptyTotal, 1)
		}
	}

	if m.requests != nil {
		m.requests.WithLabelValues(string(outcome)).Inc()
		m.duration.Observe(latency.Seconds())
		if outcome == OutcomeMatched {
			m.results.Observe(float64(results))
		}
		m.excluded.WithLabelValues("type").Add(float64(reasons.TypeExcluded))
		m.excluded.WithLabelValues("price_window").Add(float64(reasons.PriceExcluded))
		m.excluded.WithLabelValues("price_zero").Add(float64(reasons.ParsedPriceZero))
		m.excluded.WithLabelValues("not_published").Add(float64(reasons.NotPublished))
	}

	if m.log != nil {
		attrs := []any{
			slog.String("outcome", string(outcome)),
			slog.Int64("latency_ms", latencyMs),
			slog.Int("results", results),
		}
		if outcome == OutcomeFailOpen {
			m.log.Warn("match request degraded", attrs...)
		} else {
			m.log.Debug("match request completed", attrs...)
		}
	}
}

// MatchTimer помогает измерять время запроса.
type MatchTimer struct {
	metrics   *MatchMetrics
	startTime time.Time
}

// StartTimer начинает измерение. Работает и на nil-получателе.
func (m *MatchMetrics) StartTimer() *MatchTimer {
	return &MatchTimer{
		metrics:   m,
		startTime: time.Now(),
	}
}

// Stop останавливает таймер и записывает метрики.
func (t *MatchTimer) Stop(outcome Outcome, results int, reasons domain.ExclusionReasons) {
	t.metrics.RecordMatch(outcome, time.Since(t.startTime), results, reasons)
}

// Stats — текущая статистика матчинга.
type Stats struct {
	CallsTotal    int64   `json:"calls_total"`
	FailOpenTotal int64   `json:"fail_open_total"`
	NotFoundTotal int64   `json:"lead_not_found_total"`
	EmptyTotal    int64   `json:"empty_results_total"`
	FailOpenRate  float64 `json:"fail_open_rate"`
	AvgResults    float64 `json:"avg_results"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	LastLatencyMs int64   `json:"last_latency_ms"`
}

// GetStats возвращает снимок счётчиков.
func (m *MatchMetrics) GetStats() Stats {
	if m == nil {
		return Stats{}
	}

	calls := atomic.LoadInt64(&m.callsTotal)
	failOpen := atomic.LoadInt64(&m.failOpenTotal)
	notFound := atomic.LoadInt64(&m.notFoundTotal)
	results := atomic.LoadInt64(&m.resultsTotal)

	s := Stats{
		CallsTotal:    calls,
		FailOpenTotal: failOpen,
		NotFoundTotal: notFound,
		EmptyTotal:    atomic.LoadInt64(&m.emptyTotal),
		LastLatencyMs: atomic.LoadInt64(&m.lastLatencyMs),
	}
	if calls > 0 {
		s.FailOpenRate = float64(failOpen) / float64(calls)
		s.AvgLatencyMs = float64(atomic.LoadInt64(&m.latencyTotalMs)) / float64(calls)
	}
	if matched := calls - failOpen - notFound; matched > 0 {
		s.AvgResults = float64(results) / float64(matched)
	}
	return s
}

// Reset сбрасывает атомарные счётчики (коллекторы Prometheus монотонны и не трогаются).
func (m *MatchMetrics) Reset() {
	if m == nil {
		return
	}
	atomic.StoreInt64(&m.callsTotal, 0)
	atomic.StoreInt64(&m.failOpenTotal, 0)
	atomic.StoreInt64(&m.notFoundTotal, 0)
	atomic.StoreInt64(&m.emptyTotal, 0)
	atomic.StoreInt64(&m.resultsTotal, 0)
	atomic.StoreInt64(&m.latencyTotalMs, 0)
	atomic.StoreInt64(&m.lastLatencyMs, 0)
}
