package handlers

import (
	"context"
	"net/http"

	"agence/internal/api/dto"
	"agence/internal/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type ListingService interface {
	GetListing(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	GetPublishedListing(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) (domain.Listing, error)
	CreateListing(ctx context.Context, listing domain.Listing) (domain.Listing, error)
	UpdateListing(ctx context.Context, id uuid.UUID, patch domain.ListingPatch) (domain.Listing, error)
	DeleteListing(ctx context.Context, id uuid.UUID) error
}

type ListingsHandler struct {
	*Base
	listings ListingService
}

func NewListingsHandler(base *Base, listings ListingService) *ListingsHandler {
	return &ListingsHandler{Base: base, listings: listings}
}

// PublicList godoc
// @Summary  Published listings, newest first
// @Tags     offres
// @Produce  json
// @Param    type  query string false "transaction type substring"
// @Param    q     query string false "search in address and description"
// @Param    limit query int    false "page size"
// @Param    page  query int    false "page number, from 1"
// @Success  200 {array} dto.Listing
// @Router   /api/offres [get]
func (h *ListingsHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ListingsHandler.PublicList"

	filter := domain.ListingFilter{
		Published:       lo.ToPtr(true),
		TransactionType: OptionalString(r, "type"),
		Query:           OptionalString(r, "q"),
		Limit:           ParseIntParam(r, "limit", 0),
		Page:            ParseIntParam(r, "page", 1),
	}

	listings, err := h.listings.ListListings(r.Context(), filter)
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewListings(listings))
}

// PublicGet godoc
// @Summary  Published listing by id
// @Tags     offres
// @Produce  json
// @Param    id path string true "listing id"
// @Success  200 {object} dto.Listing
// @Failure  404 {object} dto.APIError
// @Router   /api/offres/{id} [get]
func (h *ListingsHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ListingsHandler.PublicGet"

	id, ok := h.PathID(w, r, "offre")
	if !ok {
		return
	}

	l, err := h.listings.GetPublishedListing(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewListing(l))
}

// AdminList godoc
// @Summary  All listings, published or not
// @Tags     offres
// @Produce  json
// @Success  200 {array} dto.Listing
// @Failure  401 {object} dto.APIError
// @Router   /api/admin/offres [get]
func (h *ListingsHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ListingsHandler.AdminList"

	listings, err := h.listings.ListListings(r.Context(), domain.ListingFilter{})
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewListings(listings))
}

// Publish godoc
// @Summary  Publish or unpublish a listing
// @Tags     offres
// @Accept   json
// @Produce  json
// @Param    id   path string             true "listing id"
// @Param    body body dto.PublishRequest true "published flag"
// @Success  200 {object} dto.ListingEnvelope
// @Failure  400 {object} dto.APIError
// @Failure  404 {object} dto.APIError
// @Failure  409 {object} dto.APIError
// @Router   /api/admin/offres/{id}/publish [put]
func (h *ListingsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ListingsHandler.Publish"

	id, ok := h.PathID(w, r, "offre")
	if !ok {
		return
	}

	var req dto.PublishRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	published, present := req.Value()
	if !present {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("published field required"))
		return
	}

	updated, err := h.listings.SetPublished(r.Context(), id, published)
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.ListingEnvelope{OK: true, Annonce: dto.NewListing(updated)})
}

// AdminGet godoc
// @Summary  Listing by id, published or not
// @Tags     offres
// @Produce  json
// @Param    id path string true "listing id"
// @Success  200 {object} dto.Listing
// @Failure  404 {object} dto.APIError
// @Router   /api/admin/offres/{id} [get]
func (h *ListingsHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ListingsHandler.AdminGet"

	id, ok := h.PathID(w, r, "offre")
	if !ok {
		return
	}

	l, err := h.listings.GetListing(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewListing(l))
}

// Create godoc
// @Summary  Create a listing
// @Tags     offres
// @Accept   json
// @Produce  json
// @Param    body body dto.ListingRequest true "listing"
// @Success  201 {object} dto.ListingEnvelope
// @Failure  400 {object} dto.APIError
// @Failure  409 {object} dto.APIError
// @Router   /api/admin/offres [post]
func (h *ListingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ListingsHandler.Create"

	var req dto.ListingRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	created, err := h.listings.CreateListing(r.Context(), req.ToListing())
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, dto.ListingEnvelope{OK: true, Annonce: dto.NewListing(created)})
}

// Update godoc
// @Summary  Update the given listing fields
// @Tags     offres
// @Accept   json
// @Produce  json
// @Param    id   path string             true "listing id"
// @Param    body body dto.ListingRequest true "fields to change"
// @Success  200 {object} dto.ListingEnvelope
// @Failure  400 {object} dto.APIError
// @Failure  404 {object} dto.APIError
// @Failure  409 {object} dto.APIError
// @Router   /api/admin/offres/{id} [put]
func (h *ListingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ListingsHandler.Update"

	id, ok := h.PathID(w, r, "offre")
	if !ok {
		return
	}

	var req dto.ListingRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	updated, err := h.listings.UpdateListing(r.Context(), id, req.ToPatch())
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.ListingEnvelope{OK: true, Annonce: dto.NewListing(updated)})
}

// Delete godoc
// @Summary  Delete a listing
// @Tags     offres
// @Produce  json
// @Param    id path string true "listing id"
// @Success  200 {object} dto.OKResponse
// @Failure  404 {object} dto.APIError
// @Failure  409 {object} dto.APIError
// @Router   /api/admin/offres/{id} [delete]
func (h *ListingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ListingsHandler.Delete"

	id, ok := h.PathID(w, r, "offre")
	if !ok {
		return
	}

	if err := h.listings.DeleteListing(r.Context(), id); err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}
