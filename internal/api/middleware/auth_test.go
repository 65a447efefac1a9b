package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agence/internal/api/middleware"
	"agence/internal/lib/logger/handlers/slogdiscard"
	"agence/internal/services/auth"

	"github.com/stretchr/testify/assert"
)

type fakeParser map[string]auth.Principal

func (f fakeParser) ParseToken(token string) (auth.Principal, error) {
	p, ok := f[token]
	if !ok {
		return auth.Principal{}, errors.New("bad token")
	}
	return p, nil
}

func TestRequireAdmin(t *testing.T) {
	parser := fakeParser{"good": {Email: "admin@agence.dz", Role: "admin"}}

	var seen auth.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := middleware.RequireAdmin(parser, slogdiscard.NewDiscardLogger())(next)

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: middleware.AdminCookie, Value: "good"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "admin@agence.dz", seen.Email)
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic Z29vZA==")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})
}

func TestTokenFromRequest_CookieWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AdminCookie, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	assert.Equal(t, "from-cookie", middleware.TokenFromRequest(req))
}

func TestLogger_PassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	middleware.Logger(slogdiscard.NewDiscardLogger())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
