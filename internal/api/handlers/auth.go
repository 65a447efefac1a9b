package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"agence/internal/api/dto"
	"agence/internal/api/middleware"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	TokenTTL() time.Duration
}

type AuthHandler struct {
	*Base
	auth         Authenticator
	secureCookie bool
}

// NewAuthHandler: secureCookie выставляет флаг Secure (вне локальной разработки).
func NewAuthHandler(base *Base, auth Authenticator, secureCookie bool) *AuthHandler {
	return &AuthHandler{Base: base, auth: auth, secureCookie: secureCookie}
}

// Login godoc
// @Summary  Admin login, sets the admin_token cookie
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    body body dto.LoginRequest true "credentials"
// @Success  200 {object} dto.OKResponse
// @Failure  400 {object} dto.APIError
// @Failure  401 {object} dto.APIError
// @Failure  429 {object} dto.APIError
// @Router   /api/admin/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.AuthHandler.Login"

	var req dto.LoginRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("email and password required"))
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.WriteServiceError(w, r, op, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.auth.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Logout godoc
// @Summary  Clears the admin_token cookie
// @Tags     admin
// @Produce  json
// @Success  200 {object} dto.OKResponse
// @Router   /api/admin/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Me godoc
// @Summary  Current admin
// @Tags     admin
// @Produce  json
// @Success  200 {object} dto.MeResponse
// @Failure  401 {object} dto.APIError
// @Router   /api/admin/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, dto.UnauthorizedError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.MeResponse{Email: p.Email, Role: p.Role})
}
