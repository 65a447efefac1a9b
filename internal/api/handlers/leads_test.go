package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agence/internal/api/dto"
	"agence/internal/api/handlers"
	"agence/internal/api/middleware"
	"agence/internal/domain"
	"agence/internal/lib/logger/handlers/slogdiscard"
	"agence/internal/services/auth"
	"agence/internal/services/lead"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestifyMockLeadService - мок сервиса контактов
type TestifyMockLeadService struct {
	mock.Mock
}

func (m *TestifyMockLeadService) CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	args := m.Called(ctx, l)
	return args.Get(0).(domain.Lead), args.Error(1)
}

func (m *TestifyMockLeadService) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Lead), args.Error(1)
}

func (m *TestifyMockLeadService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) (domain.Lead, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(domain.Lead), args.Error(1)
}

func (m *TestifyMockLeadService) ListLeads(ctx context.Context, filter domain.LeadFilter) (*domain.PaginatedResult[domain.Lead], error) {
	args := m.Called(ctx, filter)
	page, _ := args.Get(0).(*domain.PaginatedResult[domain.Lead])
	return page, args.Error(1)
}

func (m *TestifyMockLeadService) ScheduleCall(ctx context.Context, id uuid.UUID, call domain.ScheduledCall) (domain.ScheduledCall, error) {
	args := m.Called(ctx, id, call)
	return args.Get(0).(domain.ScheduledCall), args.Error(1)
}

func (m *TestifyMockLeadService) DeleteLead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// staticParser принимает любой токен и возвращает одного администратора.
type staticParser struct {
	principal auth.Principal
}

func (p staticParser) ParseToken(string) (auth.Principal, error) {
	return p.principal, nil
}

func newLeadsRouter(svc handlers.LeadService) http.Handler {
	h := handlers.NewLeadsHandler(handlers.NewBase(slogdiscard.NewDiscardLogger()), svc)

	r := chi.NewRouter()
	r.Get("/contacts", h.List)
	r.Post("/contacts", h.Create)
	r.Get("/contacts/{id}", h.Get)
	r.Put("/contacts/{id}/status", h.UpdateStatus)
	r.Delete("/contacts/{id}", h.Delete)
	r.With(middleware.RequireAdmin(staticParser{auth.Principal{Email: "admin@agence.dz", Role: "admin"}}, slogdiscard.NewDiscardLogger())).
		Post("/contacts/{id}/schedule", h.Schedule)
	return r
}

func TestLeadsHandler_List(t *testing.T) {
	svc := new(TestifyMockLeadService)
	processed := domain.LeadStatusProcessed
	svc.On("ListLeads", mock.Anything, domain.LeadFilter{
		Status: &processed,
		Pagination: &domain.PaginationParams{
			PageSize:       5,
			PageToken:      "abc",
			OrderDirection: domain.OrderAsc,
		},
	}).Return(&domain.PaginatedResult[domain.Lead]{
		Items:         []domain.Lead{{ID: uuid.New(), LastName: "Benali", Status: processed}},
		NextPageToken: "next",
		TotalCount:    7,
		HasMore:       true,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/contacts?page_size=5&page_token=abc&order=asc&status=processed", nil)
	rec := httptest.NewRecorder()
	newLeadsRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.LeadListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Contacts, 1)
	assert.Equal(t, "Benali", resp.Contacts[0].Nom)
	assert.Equal(t, "next", resp.NextPageToken)
	assert.True(t, resp.HasMore)
	assert.Equal(t, int32(7), resp.TotalCount)
	svc.AssertExpectations(t)
}

func TestLeadsHandler_Create(t *testing.T) {
	svc := new(TestifyMockLeadService)
	svc.On("CreateLead", mock.Anything, mock.MatchedBy(func(l domain.Lead) bool {
		return l.LastName == "Kaci" && l.TransactionType == "achat" && l.Budget.String() == "12 000 000"
	})).Return(domain.Lead{ID: uuid.New(), LastName: "Kaci", Status: domain.LeadStatusNew}, nil)

	body := `{"nom": "Kaci", "numTel": "0770", "type": "achat", "budget": "12 000 000"}`
	req := httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newLeadsRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.LeadEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "new", resp.Contact.Status)
	svc.AssertExpectations(t)
}

func TestLeadsHandler_ErrorMapping(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"not found", lead.ErrLeadNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"invalid status", lead.ErrInvalidStatus, http.StatusBadRequest, dto.ErrCodeValidation},
		{"read-only", lead.ErrReadOnly, http.StatusConflict, dto.ErrCodeConflict},
		{"storage failure", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(TestifyMockLeadService)
			svc.On("UpdateStatus", mock.Anything, id, domain.LeadStatusProcessed).
				Return(domain.Lead{}, tt.err)

			req := httptest.NewRequest(http.MethodPut, "/contacts/"+id.String()+"/status",
				strings.NewReader(`{"status": "processed"}`))
			rec := httptest.NewRecorder()
			newLeadsRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			var apiErr dto.APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.Equal(t, tt.wantErr, apiErr.Code)
			assert.NotContains(t, apiErr.Message, "connection reset")
		})
	}
}

func TestLeadsHandler_Get_InvalidID(t *testing.T) {
	svc := new(TestifyMockLeadService)

	req := httptest.NewRequest(http.MethodGet, "/contacts/42", nil)
	rec := httptest.NewRecorder()
	newLeadsRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertNotCalled(t, "GetLead", mock.Anything, mock.Anything)
}

func TestLeadsHandler_Schedule(t *testing.T) {
	id := uuid.New()
	at := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
	createdAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	svc := new(TestifyMockLeadService)
	svc.On("ScheduleCall", mock.Anything, id, mock.MatchedBy(func(c domain.ScheduledCall) bool {
		return c.At.Equal(at) && c.AssignedTo == "admin@agence.dz" && c.Notes == "visite F3"
	})).Return(domain.ScheduledCall{
		At:         at,
		Timezone:   "UTC",
		AssignedTo: "admin@agence.dz",
		Notes:      "visite F3",
		CreatedAt:  createdAt,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/contacts/"+id.String()+"/schedule",
		strings.NewReader(`{"dateIso": "2025-04-02T09:30:00Z", "notes": "visite F3"}`))
	req.Header.Set("Authorization", "Bearer any")
	rec := httptest.NewRecorder()
	newLeadsRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ScheduleResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "2025-04-02T09:30:00Z", resp.ScheduledCall.DateISO)
	assert.Equal(t, "UTC", resp.ScheduledCall.Timezone)
	require.NotNil(t, resp.ScheduledCall.AssignedTo)
	assert.Equal(t, "admin@agence.dz", *resp.ScheduledCall.AssignedTo)
	assert.False(t, resp.ScheduledCall.ReminderSent)
	svc.AssertExpectations(t)
}

func TestLeadsHandler_Schedule_Errors(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
	}{
		{"missing date", `{"timezone": "UTC"}`, lead.ErrInvalidSchedule, http.StatusBadRequest},
		{"unknown contact", `{"dateIso": "2025-04-02T09:30:00Z"}`, lead.ErrLeadNotFound, http.StatusNotFound},
		{"snapshot storage", `{"dateIso": "2025-04-02T09:30:00Z"}`, lead.ErrReadOnly, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(TestifyMockLeadService)
			svc.On("ScheduleCall", mock.Anything, id, mock.Anything).Return(domain.ScheduledCall{}, tt.svcErr)

			req := httptest.NewRequest(http.MethodPost, "/contacts/"+id.String()+"/schedule", strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer any")
			rec := httptest.NewRecorder()
			newLeadsRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestLeadsHandler_Schedule_BadDate(t *testing.T) {
	svc := new(TestifyMockLeadService)

	req := httptest.NewRequest(http.MethodPost, "/contacts/"+uuid.NewString()+"/schedule",
		strings.NewReader(`{"dateIso": "demain"}`))
	req.Header.Set("Authorization", "Bearer any")
	rec := httptest.NewRecorder()
	newLeadsRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ScheduleCall", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadsHandler_Delete(t *testing.T) {
	found, missing := uuid.New(), uuid.New()

	svc := new(TestifyMockLeadService)
	svc.On("DeleteLead", mock.Anything, found).Return(nil)
	svc.On("DeleteLead", mock.Anything, missing).Return(lead.ErrLeadNotFound)

	router := newLeadsRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/contacts/"+found.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.OKResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.OK)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/contacts/"+missing.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}
