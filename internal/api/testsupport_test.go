package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/api"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/jwt"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/model"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/service"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/weatherstack"
)

// In-memory repositories so the handlers, middleware and services run for
// real; only the database, the weather provider and NATS are stubbed.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return uuid.Nil, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	stored := *user
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	r.users[stored.ID] = &stored
	return stored.ID, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copy := *u
	return &copy, nil
}

func (r *memUserRepo) UpdateRefreshTokenHash(_ context.Context, id uuid.UUID, tokenHash *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.RefreshTokenHash = tokenHash
	}
	return nil
}

func (r *memUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memUserRepo) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type memHistoryRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.SearchHistory
	byUser  map[uuid.UUID]string
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{records: map[uuid.UUID]*model.SearchHistory{}, byUser: map[uuid.UUID]string{}}
}

func (r *memHistoryRepo) Insert(_ context.Context, record *model.SearchHistory) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = uuid.New()
	record.SearchedAt = time.Now()
	stored := *record
	r.records[stored.ID] = &stored
	return stored.ID, nil
}

func (r *memHistoryRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.SearchHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.SearchHistory{}
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SearchedAt.After(out[j].SearchedAt) })
	return out, nil
}

func (r *memHistoryRepo) ListAllWithOwner(_ context.Context) ([]model.SearchHistoryWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.SearchHistoryWithOwner{}
	for _, rec := range r.records {
		out = append(out, model.SearchHistoryWithOwner{SearchHistory: *rec, OwnerName: r.byUser[rec.UserID], OwnerEmail: r.byUser[rec.UserID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SearchedAt.After(out[j].SearchedAt) })
	return out, nil
}

func (r *memHistoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SearchHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	copy := *rec
	return &copy, nil
}

func (r *memHistoryRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return false, nil
	}
	delete(r.records, id)
	return true, nil
}

func (r *memHistoryRepo) DeleteByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, rec := range r.records {
		if rec.UserID == userID {
			delete(r.records, id)
			count++
		}
	}
	return count, nil
}

type stubProvider struct {
	mu       sync.Mutex
	response *weatherstack.Response
	err      error
}

func (p *stubProvider) Current(context.Context, string) (*weatherstack.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.response, p.err
}

func (p *stubProvider) set(response *weatherstack.Response, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.response = response
	p.err = err
}

type noopPublisher struct{}

func (noopPublisher) PublishUserRegistered(uuid.UUID, string) error             { return nil }
func (noopPublisher) PublishWeatherSearched(uuid.UUID, string, time.Time) error { return nil }

type testEnv struct {
	app      *fiber.App
	users    *memUserRepo
	history  *memHistoryRepo
	provider *stubProvider
	tokens   *jwt.Manager
}

// newTestEnv wires the same route table as main, over in-memory stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUserRepo()
	history := newMemHistoryRepo()
	provider := &stubProvider{response: &weatherstack.Response{}}
	tokens := jwt.NewManager("test-secret")

	authService := service.NewAuthService(users, tokens, noopPublisher{})
	weatherService := service.NewWeatherService(provider, history, noopPublisher{})
	historyService := service.NewHistoryService(history)

	authHandler := api.NewAuthHandler(authService, "development")
	weatherHandler := api.NewWeatherHandler(weatherService, historyService)
	adminHandler := api.NewAdminHandler(authService, historyService)

	authRequired := api.AuthMiddleware(tokens, authService)

	app := fiber.New()

	root := app.Group("/api")

	authRoutes := root.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Post("/logout", authRequired, authHandler.Logout)
	authRoutes.Get("/me", authRequired, authHandler.Me)

	weatherRoutes := root.Group("/weather", authRequired)
	weatherRoutes.Get("/history", weatherHandler.History)
	weatherRoutes.Delete("/history/all", weatherHandler.ClearHistory)
	weatherRoutes.Delete("/history/:id", weatherHandler.DeleteHistoryItem)
	weatherRoutes.Get("/:city", weatherHandler.Get)

	adminRoutes := root.Group("/admin", authRequired, api.RequireRole(model.RoleAdmin))
	adminRoutes.Get("/users", adminHandler.Users)
	adminRoutes.Get("/all-history", adminHandler.AllHistory)
	adminRoutes.Delete("/history/:id", adminHandler.DeleteHistoryItem)

	return &testEnv{app: app, users: users, history: history, provider: provider, tokens: tokens}
}

type request struct {
	method string
	path   string
	body   any
	token  string
	cookie *http.Cookie
}

func (e *testEnv) do(t *testing.T, r request) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(r.method, r.path, reader)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 {
		// list endpoints return arrays; callers decode those themselves
		if raw[0] == '{' {
			require.NoError(t, json.Unmarshal(raw, &decoded))
		} else {
			decoded = map[string]any{"_raw": string(raw)}
		}
	}

	return resp, decoded
}

func (e *testEnv) register(t *testing.T, name, email, password, role string) (string, map[string]any) {
	t.Helper()
	body := map[string]any{"name": name, "email": email, "password": password}
	if role != "" {
		body["role"] = role
	}
	resp, decoded := e.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: body})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := decoded["token"].(string)
	require.NotEmpty(t, token)
	return token, decoded
}

func (e *testEnv) login(t *testing.T, email, password string) (string, *http.Cookie, map[string]any) {
	t.Helper()
	resp, decoded := e.do(t, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   map[string]any{"email": email, "password": password},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refreshCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "jwt" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie, "login must set the jwt cookie")

	token, _ := decoded["token"].(string)
	require.NotEmpty(t, token)
	return token, refreshCookie, decoded
}
