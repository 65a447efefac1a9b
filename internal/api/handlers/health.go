package handlers

import (
	"net/http"

	"agence/internal/api/dto"
)

type HealthHandler struct {
	*Base
}

func NewHealthHandler(base *Base) *HealthHandler {
	return &HealthHandler{Base: base}
}

// ServeHTTP godoc
// @Summary  Liveness check
// @Tags     health
// @Produce  json
// @Success  200 {object} dto.HealthResponse
// @Router   /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.WriteJSON(w, http.StatusOK, dto.NewHealthResponse())
}
