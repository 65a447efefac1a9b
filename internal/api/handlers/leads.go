package handlers

import (
	"context"
	"net/http"

	"agence/internal/api/dto"
	"agence/internal/api/middleware"
	"agence/internal/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type LeadService interface {
	CreateLead(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) (domain.Lead, error)
	ListLeads(ctx context.Context, filter domain.LeadFilter) (*domain.PaginatedResult[domain.Lead], error)
	ScheduleCall(ctx context.Context, id uuid.UUID, call domain.ScheduledCall) (domain.ScheduledCall, error)
	DeleteLead(ctx context.Context, id uuid.UUID) error
}

type LeadsHandler struct {
	*Base
	leads LeadService
}

func NewLeadsHandler(base *Base, leads LeadService) *LeadsHandler {
	return &LeadsHandler{Base: base, leads: leads}
}

// List godoc
// @Summary  List contacts (keyset pagination)
// @Tags     contacts
// @Produce  json
// @Param    page_size  query int    false "page size"
// @Param    page_token query string false "cursor from the previous page"
// @Param    order      query string false "asc | desc"
// @Param    status     query string false "new | processed | not_processed | scheduled"
// @Success  200 {object} dto.LeadListResponse
// @Failure  400 {object} dto.APIError
// @Router   /api/admin/contacts [get]
func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.LeadsHandler.List"

	q := r.URL.Query()
	filter := domain.LeadFilter{
		Pagination: &domain.PaginationParams{
			PageSize:       int32(ParseIntParam(r, "page_size", domain.DefaultPageSize)),
			PageToken:      q.Get("page_token"),
			OrderDirection: domain.NormalizeOrderDirection(q.Get("order")),
		},
	}
	if s := q.Get("status"); s != "" {
		filter.Status = lo.ToPtr(domain.LeadStatus(s))
	}

	page, err := h.leads.ListLeads(r.Context(), filter)
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.LeadListResponse{
		OK:            true,
		Contacts:      lo.Map(page.Items, func(l domain.Lead, _ int) dto.Lead { return dto.NewLead(l) }),
		NextPageToken: page.NextPageToken,
		TotalCount:    page.TotalCount,
		HasMore:       page.HasMore,
	})
}

// Create godoc
// @Summary  Create a contact
// @Tags     contacts
// @Accept   json
// @Produce  json
// @Param    body body dto.CreateLeadRequest true "contact"
// @Success  201 {object} dto.LeadEnvelope
// @Failure  400 {object} dto.APIError
// @Failure  409 {object} dto.APIError
// @Router   /api/admin/contacts [post]
func (h *LeadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.LeadsHandler.Create"

	var req dto.CreateLeadRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	created, err := h.leads.CreateLead(r.Context(), req.ToDomain())
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, dto.LeadEnvelope{OK: true, Contact: dto.NewLead(created)})
}

// Get godoc
// @Summary  Get a contact
// @Tags     contacts
// @Produce  json
// @Param    id path string true "contact id"
// @Success  200 {object} dto.LeadEnvelope
// @Failure  404 {object} dto.APIError
// @Router   /api/admin/contacts/{id} [get]
func (h *LeadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.LeadsHandler.Get"

	id, ok := h.PathID(w, r, "contact")
	if !ok {
		return
	}

	l, err := h.leads.GetLead(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.LeadEnvelope{OK: true, Contact: dto.NewLead(l)})
}

// UpdateStatus godoc
// @Summary  Change contact status
// @Tags     contacts
// @Accept   json
// @Produce  json
// @Param    id   path string                  true "contact id"
// @Param    body body dto.UpdateStatusRequest true "new status"
// @Success  200 {object} dto.LeadEnvelope
// @Failure  400 {object} dto.APIError
// @Failure  404 {object} dto.APIError
// @Failure  409 {object} dto.APIError
// @Router   /api/admin/contacts/{id}/status [put]
func (h *LeadsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.LeadsHandler.UpdateStatus"

	id, ok := h.PathID(w, r, "contact")
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	updated, err := h.leads.UpdateStatus(r.Context(), id, domain.LeadStatus(req.Status))
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.LeadEnvelope{OK: true, Contact: dto.NewLead(updated)})
}

// Schedule godoc
// @Summary  Schedule a call with a contact
// @Tags     contacts
// @Accept   json
// @Produce  json
// @Param    id   path string              true "contact id"
// @Param    body body dto.ScheduleRequest true "call date and details"
// @Success  200 {object} dto.ScheduleResponse
// @Failure  400 {object} dto.APIError
// @Failure  404 {object} dto.APIError
// @Failure  409 {object} dto.APIError
// @Router   /api/admin/contacts/{id}/schedule [post]
func (h *LeadsHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.LeadsHandler.Schedule"

	id, ok := h.PathID(w, r, "contact")
	if !ok {
		return
	}

	var req dto.ScheduleRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	call, err := req.ToDomain()
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	if call.AssignedTo == "" {
		if p, ok := middleware.PrincipalFrom(r.Context()); ok {
			call.AssignedTo = p.Email
		}
	}

	scheduled, err := h.leads.ScheduleCall(r.Context(), id, call)
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.ScheduleResponse{OK: true, ScheduledCall: dto.NewScheduledCall(scheduled)})
}

// Delete godoc
// @Summary  Delete a contact
// @Tags     contacts
// @Produce  json
// @Param    id path string true "contact id"
// @Success  200 {object} dto.OKResponse
// @Failure  404 {object} dto.APIError
// @Failure  409 {object} dto.APIError
// @Router   /api/admin/contacts/{id} [delete]
func (h *LeadsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.LeadsHandler.Delete"

	id, ok := h.PathID(w, r, "contact")
	if !ok {
		return
	}

	if err := h.leads.DeleteLead(r.Context(), id); err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}
