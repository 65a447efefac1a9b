package handlers

import (
	"context"
	"net/http"

	"agence/internal/api/dto"
	"agence/internal/domain"
	"agence/internal/services/matching"
)

type NormalizedLister interface {
	NormalizedListings(ctx context.Context) ([]domain.NormalizedListing, error)
}

// DebugHandler показывает, как движок видит сырые данные.
type DebugHandler struct {
	*Base
	lister NormalizedLister
}

func NewDebugHandler(base *Base, lister NormalizedLister) *DebugHandler {
	return &DebugHandler{Base: base, lister: lister}
}

// NormalizedListings godoc
// @Summary  Every listing with raw and normalised type and price
// @Tags     debug
// @Produce  json
// @Success  200 {object} dto.NormalizedListingsResponse
// @Router   /api/debug/annonces-normalized [get]
func (h *DebugHandler) NormalizedListings(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.DebugHandler.NormalizedListings"

	items, err := h.lister.NormalizedListings(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NormalizedListingsResponse{
		OK:       true,
		Count:    len(items),
		Annonces: dto.NewNormalizedListings(items),
	})
}

// NormalizeType godoc
// @Summary  Normalise a transaction type
// @Tags     debug
// @Produce  json
// @Param    value query string true "raw type"
// @Success  200 {object} dto.NormalizeTypeResponse
// @Router   /api/debug/normalize-type [get]
func (h *DebugHandler) NormalizeType(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	h.WriteJSON(w, http.StatusOK, dto.NormalizeTypeResponse{
		Value:      value,
		Normalized: matching.NormalizeType(value).String(),
	})
}

// ParsePrice godoc
// @Summary  Parse a free-form price
// @Tags     debug
// @Produce  json
// @Param    value query string true "raw price"
// @Success  200 {object} dto.ParsePriceResponse
// @Router   /api/debug/parse-price [get]
func (h *DebugHandler) ParsePrice(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	h.WriteJSON(w, http.StatusOK, dto.ParsePriceResponse{
		Value:  value,
		Parsed: matching.ParsePrice(value),
	})
}
