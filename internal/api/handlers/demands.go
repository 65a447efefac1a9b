package handlers

import (
	"context"
	"net/http"

	"agence/internal/api/dto"
	"agence/internal/domain"

	"github.com/google/uuid"
)

type DemandService interface {
	Submit(ctx context.Context, demand domain.Demand) (domain.Demand, error)
	List(ctx context.Context) ([]domain.Demand, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type DemandsHandler struct {
	*Base
	demands DemandService
}

func NewDemandsHandler(base *Base, demands DemandService) *DemandsHandler {
	return &DemandsHandler{Base: base, demands: demands}
}

// Submit godoc
// @Summary  Submit a demand from the public site
// @Tags     demandes
// @Accept   json
// @Produce  json
// @Param    body body dto.SubmitDemandRequest true "demand form"
// @Success  201 {object} dto.DemandCreatedResponse
// @Failure  400 {object} dto.APIError
// @Failure  409 {object} dto.APIError
// @Router   /api/demandes [post]
func (h *DemandsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.DemandsHandler.Submit"

	var req dto.SubmitDemandRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	saved, err := h.demands.Submit(r.Context(), req.ToDomain())
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, dto.DemandCreatedResponse{
		OK:      true,
		ID:      saved.ID.String(),
		Demande: dto.NewDemand(saved),
	})
}

// List godoc
// @Summary  All demands, newest first
// @Tags     demandes
// @Produce  json
// @Success  200 {array} dto.Demand
// @Failure  401 {object} dto.APIError
// @Router   /api/admin/demandes [get]
func (h *DemandsHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.DemandsHandler.List"

	demands, err := h.demands.List(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewDemands(demands))
}

// Delete godoc
// @Summary  Delete a demand
// @Tags     demandes
// @Produce  json
// @Param    id path string true "demand id"
// @Success  200 {object} dto.OKResponse
// @Failure  404 {object} dto.APIError
// @Failure  409 {object} dto.APIError
// @Router   /api/admin/demandes/{id} [delete]
func (h *DemandsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.DemandsHandler.Delete"

	id, ok := h.PathID(w, r, "demande")
	if !ok {
		return
	}

	if err := h.demands.Delete(r.Context(), id); err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}
