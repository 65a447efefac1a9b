package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"agence/internal/api/dto"
	"agence/internal/services/auth"
)

// AdminCookie — cookie с токеном администратора.
const AdminCookie = "admin_token"

type TokenParser interface {
	ParseToken(token string) (auth.Principal, error)
}

type principalKey struct{}

// RequireAdmin пропускает запрос только с действующим токеном администратора
// из cookie admin_token или заголовка Authorization: Bearer.
func RequireAdmin(parser TokenParser, log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := parser.ParseToken(TokenFromRequest(r))
			if err != nil {
				log.Debug("admin auth rejected", slog.String("path", r.URL.Path), slog.String("reason", err.Error()))
				writeError(w, http.StatusUnauthorized, dto.UnauthorizedError())
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
		})
	}
}

// TokenFromRequest достаёт токен: сначала cookie, затем Bearer.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AdminCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// PrincipalFrom возвращает администратора, положенного в контекст RequireAdmin.
func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(auth.Principal)
	return p, ok
}

func writeError(w http.ResponseWriter, status int, apiErr dto.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiErr)
}
