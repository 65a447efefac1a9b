package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"agence/internal/api/dto"
	"agence/internal/lib/logger/sl"
	"agence/internal/services/auth"
	"agence/internal/services/demand"
	"agence/internal/services/lead"
	"agence/internal/services/listing"
	"agence/internal/services/matching"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes — предел тела JSON-запроса.
const maxBodyBytes = 1 << 20

// Base — общие помощники всех обработчиков.
type Base struct {
	log *slog.Logger
}

func NewBase(log *slog.Logger) *Base {
	return &Base{log: log}
}

func (b *Base) WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteServiceError переводит ошибки сервисов в HTTP-статус.
func (b *Base) WriteServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, lead.ErrLeadNotFound), errors.Is(err, matching.ErrLeadNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("contact"))
	case errors.Is(err, listing.ErrListingNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("offre"))
	case errors.Is(err, demand.ErrDemandNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("demande"))
	case errors.Is(err, lead.ErrInvalidLead),
		errors.Is(err, lead.ErrInvalidStatus),
		errors.Is(err, lead.ErrInvalidSchedule),
		errors.Is(err, listing.ErrNothingToUpdate),
		errors.Is(err, demand.ErrInvalidDemand):
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, lead.ErrReadOnly), errors.Is(err, listing.ErrReadOnly), errors.Is(err, demand.ErrReadOnly):
		b.WriteError(w, http.StatusConflict, dto.ConflictError("storage is read-only"))
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthorized):
		b.WriteError(w, http.StatusUnauthorized, dto.UnauthorizedError())
	case errors.Is(err, auth.ErrTooManyAttempts):
		b.WriteError(w, http.StatusTooManyRequests, dto.TooManyRequestsError())
	default:
		b.log.Error("request failed",
			slog.String("op", op),
			slog.String("path", r.URL.Path),
			sl.Err(err),
		)
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// DecodeJSON читает тело запроса; при ошибке сам отвечает 400.
func (b *Base) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		b.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return false
	}
	return true
}

// PathID разбирает {id} из пути; при ошибке сам отвечает 404.
func (b *Base) PathID(w http.ResponseWriter, r *http.Request, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError(resource))
		return uuid.Nil, false
	}
	return id, true
}

// ParseIntParam разбирает целый query-параметр со значением по умолчанию.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// OptionalString — указатель на непустой query-параметр.
func OptionalString(r *http.Request, name string) *string {
	val := r.URL.Query().Get(name)
	if val == "" {
		return nil
	}
	return &val
}
