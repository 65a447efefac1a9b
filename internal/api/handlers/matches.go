package handlers

import (
	"context"
	"net/http"

	"agence/internal/api/dto"
	"agence/internal/domain"
	"agence/internal/lib/metrics"

	"github.com/google/uuid"
)

type MatchService interface {
	MatchLead(ctx context.Context, id uuid.UUID, topN int) ([]domain.MatchResult, error)
	ExplainLead(ctx context.Context, id uuid.UUID, topN int) (domain.MatchTrace, error)
}

type StatsProvider interface {
	GetStats() metrics.Stats
}

type MatchesHandler struct {
	*Base
	matcher    MatchService
	stats      StatsProvider
	defaultTop int
}

// NewMatchesHandler: defaultTop — сколько объявлений отдавать без ?top.
func NewMatchesHandler(base *Base, matcher MatchService, stats StatsProvider, defaultTop int) *MatchesHandler {
	return &MatchesHandler{Base: base, matcher: matcher, stats: stats, defaultTop: defaultTop}
}

func (h *MatchesHandler) top(r *http.Request) int {
	top := ParseIntParam(r, "top", h.defaultTop)
	if top <= 0 {
		return h.defaultTop
	}
	return top
}

// Matches godoc
// @Summary  Best listings for a contact
// @Description Empty list when the listing store is unavailable.
// @Tags     matching
// @Produce  json
// @Param    id  path  string true  "contact id"
// @Param    top query int    false "how many listings"
// @Success  200 {object} dto.MatchesResponse
// @Failure  404 {object} dto.APIError
// @Router   /api/admin/contacts/{id}/matches [get]
func (h *MatchesHandler) Matches(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.MatchesHandler.Matches"

	id, ok := h.PathID(w, r, "contact")
	if !ok {
		return
	}

	matches, err := h.matcher.MatchLead(r.Context(), id, h.top(r))
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewMatchesResponse(matches))
}

// Debug godoc
// @Summary  Step-by-step matching trace for a contact
// @Tags     matching
// @Produce  json
// @Param    id  path  string true  "contact id"
// @Param    top query int    false "how many scored rows"
// @Success  200 {object} dto.TraceResponse
// @Failure  404 {object} dto.APIError
// @Router   /api/admin/contacts/{id}/matches-debug [get]
func (h *MatchesHandler) Debug(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.MatchesHandler.Debug"

	id, ok := h.PathID(w, r, "contact")
	if !ok {
		return
	}

	trace, err := h.matcher.ExplainLead(r.Context(), id, h.top(r))
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewTraceResponse(trace))
}

// Stats godoc
// @Summary  Matching counters since start
// @Tags     matching
// @Produce  json
// @Success  200 {object} dto.MatchStatsResponse
// @Router   /api/admin/match-stats [get]
func (h *MatchesHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	h.WriteJSON(w, http.StatusOK, dto.MatchStatsResponse{OK: true, Stats: h.stats.GetStats()})
}
