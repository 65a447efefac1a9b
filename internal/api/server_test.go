package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"agence/internal/api"
	"agence/internal/api/dto"
	"agence/internal/api/middleware"
	"agence/internal/lib/logger/handlers/slogdiscard"
	"agence/internal/lib/metrics"
	"agence/internal/repository/snapshot_repository"
	"agence/internal/services/auth"
	"agence/internal/services/demand"
	"agence/internal/services/lead"
	"agence/internal/services/listing"
	"agence/internal/services/matching"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@agence.dz"
	adminPassword = "s3cret"
)

const testOffres = `[
  {"id": 1, "adresse": "Hai Yasmine", "descript": "F3", "type": "À louer", "price": 900, "published": true, "createdAt": "2024-03-01T10:00:00Z"},
  {"id": 2, "adresse": "Bir El Djir", "descript": "F4", "type": "À vendre", "price": 950, "published": true, "createdAt": "2024-03-02T10:00:00Z"},
  {"id": 3, "adresse": "Canastel", "descript": "Villa", "typeService": "a_louer", "prix": "2 000", "published": true, "createdAt": "2024-03-03T10:00:00Z"},
  {"id": 4, "adresse": "Akid Lotfi", "descript": "Brouillon", "type": "a_louer", "price": 1000, "published": false, "createdAt": "2024-03-04T10:00:00Z"}
]`

const testContacts = `[
  {"id": "c-1", "nom": "Benali", "prenom": "Amine", "numTel": "0550000000", "typeService": "location", "maxBudget": 1000, "createdAt": "2024-04-01T08:00:00Z"}
]`

type testEnv struct {
	handler http.Handler
	metrics *metrics.MatchMetrics
}

func newTestEnv(t *testing.T, offres, contacts string) testEnv {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, snapshot_repository.ListingsFile), []byte(offres), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, snapshot_repository.LeadsFile), []byte(contacts), 0o644))

	log := slogdiscard.NewDiscardLogger()
	src := snapshot_repository.NewFileSource(dir)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.NewMatchMetrics(log, reg)

	leadSvc := lead.New(log, snapshot_repository.NewLeadStore(src, log))
	listingSvc := listing.New(log, snapshot_repository.NewListingStore(src, log))
	demandSvc := demand.New(log, snapshot_repository.NewDemandStore(src, log))
	matchSvc := matching.New(log, nil, listingSvc, leadSvc, m, time.Second)
	authSvc := auth.New(log, auth.Admin{Email: adminEmail, PasswordHash: string(hash)}, "test-secret", time.Hour, 0)

	srv := api.NewServer(api.Config{
		Port:         0,
		Timeout:      time.Second,
		ClientOrigin: "http://localhost:5173",
		DefaultTop:   8,
	}, api.Deps{
		Auth:     authSvc,
		Leads:    leadSvc,
		Listings: listingSvc,
		Demands:  demandSvc,
		Matching: matchSvc,
		Stats:    m,
		Gatherer: reg,
	}, log)

	return testEnv{handler: srv.Router(), metrics: m}
}

func (e testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/admin/login",
		`{"email": "`+adminEmail+`", "password": "`+adminPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AdminCookie {
			require.NotEmpty(t, c.Value)
			assert.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatal("admin_token cookie not set")
	return nil
}

func (e testEnv) contactID(t *testing.T, cookie *http.Cookie) string {
	t.Helper()

	rec := e.do(t, http.MethodGet, "/api/admin/contacts", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.LeadListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Contacts, 1)
	return resp.Contacts[0].ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)

	rec := env.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[dto.HealthResponse](t, rec).Status)
}

func TestServer_AdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)

	paths := []string{
		"/api/admin/me",
		"/api/admin/contacts",
		"/api/admin/offres",
		"/api/admin/offres/" + uuid.NewString(),
		"/api/admin/demandes",
		"/api/admin/match-stats",
		"/api/admin/contacts/" + uuid.NewString() + "/matches",
		"/api/debug/annonces-normalized",
		"/api/debug/parse-price?value=1",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, p, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, dto.ErrCodeUnauthorized, decode[dto.APIError](t, rec).Code)
		})
	}

	forged := &http.Cookie{Name: middleware.AdminCookie, Value: "not-a-jwt"}
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/admin/me", "", forged).Code)
}

func TestServer_Login(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"wrong password", `{"email": "admin@agence.dz", "password": "nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email": "x@agence.dz", "password": "s3cret"}`, http.StatusUnauthorized},
		{"missing password", `{"email": "admin@agence.dz"}`, http.StatusBadRequest},
		{"broken json", `{"email":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/admin/login", tt.body, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}

	cookie := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/admin/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[dto.MeResponse](t, rec)
	assert.Equal(t, adminEmail, me.Email)
	assert.Equal(t, "admin", me.Role)

	// тот же токен в заголовке Authorization
	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	bearer := httptest.NewRecorder()
	env.handler.ServeHTTP(bearer, req)
	assert.Equal(t, http.StatusOK, bearer.Code)

	logout := env.do(t, http.MethodPost, "/api/admin/logout", "", cookie)
	require.Equal(t, http.StatusOK, logout.Code)
	cleared := logout.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, middleware.AdminCookie, cleared[0].Name)
	assert.Negative(t, cleared[0].MaxAge)
}

func TestServer_ContactMatches(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)
	cookie := env.login(t)
	id := env.contactID(t, cookie)

	rec := env.do(t, http.MethodGet, "/api/admin/contacts/"+id+"/matches", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dto.MatchesResponse](t, rec)
	assert.True(t, resp.OK)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, 90, resp.Matches[0].Score)
	assert.Equal(t, "900", resp.Matches[0].Offer.Price.String())
	assert.Equal(t, "Hai Yasmine", resp.Matches[0].Offer.Adresse)

	stats := env.metrics.GetStats()
	assert.Equal(t, int64(1), stats.CallsTotal)
}

func TestServer_ContactMatches_NotFound(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)
	cookie := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/admin/contacts/"+uuid.NewString()+"/matches", "", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decode[dto.APIError](t, rec).Code)

	rec = env.do(t, http.MethodGet, "/api/admin/contacts/not-a-uuid/matches", "", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ContactMatches_FailOpen(t *testing.T) {
	env := newTestEnv(t, `[{"id": 1, "price":`, testContacts)
	cookie := env.login(t)
	id := env.contactID(t, cookie)

	rec := env.do(t, http.MethodGet, "/api/admin/contacts/"+id+"/matches?top=3", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dto.MatchesResponse](t, rec)
	assert.True(t, resp.OK)
	assert.NotNil(t, resp.Matches)
	assert.Empty(t, resp.Matches)
	assert.Equal(t, int64(1), env.metrics.GetStats().FailOpenTotal)

	// отладочный маршрут ошибку источника не скрывает
	debug := env.do(t, http.MethodGet, "/api/admin/contacts/"+id+"/matches-debug", "", cookie)
	assert.Equal(t, http.StatusInternalServerError, debug.Code)
}

func TestServer_MatchesDebug(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)
	cookie := env.login(t)
	id := env.contactID(t, cookie)

	rec := env.do(t, http.MethodGet, "/api/admin/contacts/"+id+"/matches-debug", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	trace := decode[dto.TraceResponse](t, rec)
	assert.Equal(t, id, trace.ContactID)
	assert.Equal(t, "a_louer", trace.TypeWanted)
	assert.Equal(t, 1000.0, trace.Budget)
	assert.Equal(t, 500.0, trace.MinPrice)
	assert.Equal(t, 1500.0, trace.MaxPrice)
	assert.Equal(t, 3, trace.LoadedCount)
	assert.Equal(t, 2, trace.AfterTypeCount)
	assert.Equal(t, 1, trace.AfterPriceCount)
	assert.Equal(t, 1, trace.Reasons.TypeExcluded)
	assert.Equal(t, 1, trace.Reasons.PriceExcluded)
	require.Len(t, trace.Scored, 1)
	assert.Equal(t, 90, trace.Scored[0].Score)
}

func TestServer_PublicListings(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)

	rec := env.do(t, http.MethodGet, "/api/offres", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]dto.Listing](t, rec)
	require.Len(t, all, 3)
	assert.Equal(t, "Canastel", all[0].Adresse)
	for _, l := range all {
		assert.True(t, l.Published)
	}

	rec = env.do(t, http.MethodGet, "/api/offres?type=vendre", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.Listing](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/offres?limit=2&page=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	paged := decode[[]dto.Listing](t, rec)
	require.Len(t, paged, 1)
	assert.Equal(t, "Hai Yasmine", paged[0].Adresse)

	rec = env.do(t, http.MethodGet, "/api/offres/"+all[0].ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, all[0].ID, decode[dto.Listing](t, rec).ID)
}

func TestServer_UnpublishedListingHiddenFromPublic(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)
	cookie := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/admin/offres", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]dto.Listing](t, rec)
	require.Len(t, all, 4)

	var draftID string
	for _, l := range all {
		if !l.Published {
			draftID = l.ID
		}
	}
	require.NotEmpty(t, draftID)

	rec = env.do(t, http.MethodGet, "/api/offres/"+draftID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_SnapshotIsReadOnly(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)
	cookie := env.login(t)
	id := env.contactID(t, cookie)

	rec := env.do(t, http.MethodPost, "/api/admin/contacts", `{"nom": "Kaci", "numTel": "0770"}`, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/contacts/"+id+"/status", `{"status": "processed"}`, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/contacts/"+id+"/status", `{"status": "archived"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/contacts/"+id+"/schedule", `{"dateIso": "2025-04-02T09:30:00Z"}`, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/contacts/"+id+"/schedule", `{"notes": "sans date"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/contacts/"+id, "", cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/offres", `{"adresse": "Canastel", "price": 900}`, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/offres/"+uuid.NewString(), `{}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/offres/"+uuid.NewString(), "", cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/demandes", `{"nom": "Kaci", "prenom": "Amine", "numTel": "0770"}`, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/demandes/"+uuid.NewString(), "", cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_PublicDemandValidation(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)

	rec := env.do(t, http.MethodPost, "/api/demandes", `{"nom": "Kaci"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeValidation, decode[dto.APIError](t, rec).Code)
}

func TestServer_AdminDemandesAndListing(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)
	cookie := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/admin/demandes", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]dto.Demand](t, rec))

	rec = env.do(t, http.MethodGet, "/api/admin/offres", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	listings := decode[[]dto.Listing](t, rec)

	var draftID string
	for _, l := range listings {
		if !l.Published {
			draftID = l.ID
		}
	}
	require.NotEmpty(t, draftID)

	rec = env.do(t, http.MethodGet, "/api/admin/offres/"+draftID, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Akid Lotfi", decode[dto.Listing](t, rec).Adresse)
}

func TestServer_DebugRoutes(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)
	cookie := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/debug/parse-price?value=1%20500%2C50", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1500.5, decode[dto.ParsePriceResponse](t, rec).Parsed)

	rec = env.do(t, http.MethodGet, "/api/debug/normalize-type?value=%C3%80%20Louer", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a_louer", decode[dto.NormalizeTypeResponse](t, rec).Normalized)

	rec = env.do(t, http.MethodGet, "/api/debug/annonces-normalized", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	normalized := decode[dto.NormalizedListingsResponse](t, rec)
	assert.Equal(t, 4, normalized.Count)
}

func TestServer_Metrics(t *testing.T) {
	env := newTestEnv(t, testOffres, testContacts)
	cookie := env.login(t)
	id := env.contactID(t, cookie)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/admin/contacts/"+id+"/matches", "", cookie).Code)

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `agence_match_requests_total{outcome="matched"} 1`)

	rec = env.do(t, http.MethodGet, "/api/admin/match-stats", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[dto.MatchStatsResponse](t, rec).Stats.CallsTotal)
}
