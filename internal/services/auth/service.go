package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agence/internal/lib/jwt"
	"agence/internal/lib/logger/sl"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Admin — учётная запись администратора агентства (одна, из окружения).
type Admin struct {
	Email        string
	PasswordHash string
}

// Principal — кто выполняет запрос.
type Principal struct {
	Email     string
	Role      string
	ExpiresAt time.Time
}

type Service struct {
	log      *slog.Logger
	admin    Admin
	secret   string
	tokenTTL time.Duration
	limiter  *rate.Limiter
}

// New создаёт сервис входа. perMinute ограничивает число попыток входа в минуту
// (0 — без ограничения).
func New(log *slog.Logger, admin Admin, secret string, tokenTTL time.Duration, perMinute int) *Service {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return &Service{
		log:      log,
		admin:    admin,
		secret:   secret,
		tokenTTL: tokenTTL,
		limiter:  limiter,
	}
}

// TokenTTL — срок жизни выпускаемого токена (для cookie Max-Age).
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Login проверяет email и пароль и выпускает токен администратора.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Service.Login"
	log := s.log.With(slog.String("op", op))

	if !s.limiter.Allow() {
		log.Warn("login throttled")
		return "", fmt.Errorf("%s: %w", op, ErrTooManyAttempts)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		log.Error("admin credentials are not configured")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(s.admin.Email))) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password))
	if !emailOK || passErr != nil {
		log.Warn("invalid login attempt", slog.String("email", email))
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := jwt.NewToken(s.admin.Email, jwt.RoleAdmin, s.tokenTTL, s.secret)
	if err != nil {
		log.Error("failed to issue token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin logged in", slog.String("email", s.admin.Email))
	return token, nil
}

// ParseToken проверяет токен и роль.
func (s *Service) ParseToken(token string) (Principal, error) {
	const op = "auth.Service.ParseToken"

	if token == "" {
		return Principal{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	claims, err := jwt.ParseToken(token, s.secret)
	if err != nil {
		return Principal{}, fmt.Errorf("%s: %w: %v", op, ErrUnauthorized, err)
	}
	if claims.Role != jwt.RoleAdmin {
		return Principal{}, fmt.Errorf("%s: %w: role %q", op, ErrUnauthorized, claims.Role)
	}

	p := Principal{Email: claims.Email, Role: claims.Role}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
