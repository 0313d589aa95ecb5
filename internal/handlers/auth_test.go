package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gadamagado/api/internal/config"
	"gadamagado/api/internal/models"
	"gadamagado/api/internal/repository"
	"gadamagado/api/internal/security"
	"gadamagado/api/internal/service"
	"gadamagado/api/internal/session"
)

type fakeUsers struct {
	byPhone map[string]models.User
	created []models.User
}

func (f *fakeUsers) FindByPhone(_ context.Context, phone string) (models.User, error) {
	user, ok := f.byPhone[phone]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUsers) Create(_ context.Context, user models.User) error {
	f.created = append(f.created, user)
	f.byPhone[user.PhoneNumber] = user
	return nil
}

type fakeSessions struct {
	next       string
	records    map[string]string
	destroyErr error
	destroyed  []string
}

func (f *fakeSessions) Create(_ context.Context, userID string) (string, error) {
	id := f.next
	if id == "" {
		id = "session-1"
	}
	f.records[id] = userID
	return id, nil
}

func (f *fakeSessions) Resolve(_ context.Context, id string) (string, error) {
	userID, ok := f.records[id]
	if !ok {
		return "", session.ErrSessionNotFound
	}
	return userID, nil
}

func (f *fakeSessions) Destroy(_ context.Context, id string) error {
	f.destroyed = append(f.destroyed, id)
	if f.destroyErr != nil {
		return f.destroyErr
	}
	delete(f.records, id)
	return nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			TokenSecret:   "handler-test-secret",
			TokenTTL:      time.Hour,
			SessionTTL:    time.Hour,
			SessionCookie: "sid",
		},
	}
}

func authTestRouter(users *fakeUsers, sessions *fakeSessions) (*gin.Engine, HandlerSet) {
	cfg := testConfig()
	h := HandlerSet{
		log:         zerolog.Nop(),
		cfg:         cfg,
		sessions:    sessions,
		authService: service.NewAuthService(users, sessions, cfg, zerolog.Nop()),
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", h.RegisterUser)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/status", h.AuthStatus)
	return r, h
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func seededUser(t *testing.T, phone, password string, active bool) models.User {
	t.Helper()
	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	return models.User{
		ID:           "u1",
		FullName:     "Test User",
		PhoneNumber:  phone,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
		IsActive:     active,
		Region:       "Banaadir",
		District:     "Mogadishu",
	}
}

func TestRegisterUser(t *testing.T) {
	users := &fakeUsers{byPhone: map[string]models.User{}}
	sessions := &fakeSessions{records: map[string]string{}}
	r, _ := authTestRouter(users, sessions)

	w := postJSON(t, r, "/auth/register", gin.H{
		"fullName":    "New User",
		"phoneNumber": "+252615555555",
		"password":    "secret123",
		"region":      "Banaadir",
		"district":    "Mogadishu",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Registration successful", body["message"])
	assert.NotEmpty(t, body["token"])
	require.Len(t, users.created, 1)
	assert.Equal(t, models.UserRoleUser, users.created[0].Role)

	// The issued token must verify against the configured secret.
	claims, err := security.ParseToken(body["token"].(string), "handler-test-secret")
	require.NoError(t, err)
	assert.Equal(t, users.created[0].ID, claims.UserID)

	// The session cookie opens the second channel.
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Contains(t, sessions.records, cookies[0].Value)
}

func TestRegisterUserDuplicatePhone(t *testing.T) {
	existing := seededUser(t, "+252615555555", "secret123", true)
	users := &fakeUsers{byPhone: map[string]models.User{existing.PhoneNumber: existing}}
	sessions := &fakeSessions{records: map[string]string{}}
	r, _ := authTestRouter(users, sessions)

	w := postJSON(t, r, "/auth/register", gin.H{
		"fullName":    "New User",
		"phoneNumber": "+252615555555",
		"password":    "secret123",
		"region":      "Banaadir",
		"district":    "Mogadishu",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Phone number already registered"}`, w.Body.String())
}

func TestRegisterUserMissingFields(t *testing.T) {
	users := &fakeUsers{byPhone: map[string]models.User{}}
	sessions := &fakeSessions{records: map[string]string{}}
	r, _ := authTestRouter(users, sessions)

	w := postJSON(t, r, "/auth/register", gin.H{"fullName": "No Phone"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Please provide all required fields"}`, w.Body.String())
}

func TestLogin(t *testing.T) {
	user := seededUser(t, "+252611111111", "admin123", true)
	users := &fakeUsers{byPhone: map[string]models.User{user.PhoneNumber: user}}
	sessions := &fakeSessions{records: map[string]string{}}
	r, _ := authTestRouter(users, sessions)

	w := postJSON(t, r, "/auth/login", gin.H{
		"phoneNumber": "+252611111111",
		"password":    "admin123",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Login successful", body["message"])
	assert.NotEmpty(t, body["token"])

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, user.ID, sessions.records[cookies[0].Value])
}

func TestLoginInvalidCredentials(t *testing.T) {
	user := seededUser(t, "+252611111111", "admin123", true)
	users := &fakeUsers{byPhone: map[string]models.User{user.PhoneNumber: user}}
	sessions := &fakeSessions{records: map[string]string{}}
	r, _ := authTestRouter(users, sessions)

	tests := []struct {
		name  string
		phone string
		pass  string
	}{
		{"wrong password", "+252611111111", "nope"},
		{"unknown phone", "+252619999999", "admin123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/auth/login", gin.H{"phoneNumber": tt.phone, "password": tt.pass})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"Invalid credentials"}`, w.Body.String())
		})
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	user := seededUser(t, "+252611111111", "admin123", false)
	users := &fakeUsers{byPhone: map[string]models.User{user.PhoneNumber: user}}
	sessions := &fakeSessions{records: map[string]string{}}
	r, _ := authTestRouter(users, sessions)

	w := postJSON(t, r, "/auth/login", gin.H{
		"phoneNumber": "+252611111111",
		"password":    "admin123",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Account is deactivated"}`, w.Body.String())
}

func TestLogoutDestroysSessionAndClearsCookie(t *testing.T) {
	users := &fakeUsers{byPhone: map[string]models.User{}}
	sessions := &fakeSessions{records: map[string]string{"s1": "u1"}}
	r, _ := authTestRouter(users, sessions)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "s1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Logged out successfully"}`, w.Body.String())
	assert.Equal(t, []string{"s1"}, sessions.destroyed)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Less(t, cookies[0].MaxAge, 0, "cookie must be expired")
}

func TestLogoutIdempotent(t *testing.T) {
	users := &fakeUsers{byPhone: map[string]models.User{}}
	sessions := &fakeSessions{
		records:    map[string]string{"s1": "u1"},
		destroyErr: errors.New("redis down"),
	}
	r, _ := authTestRouter(users, sessions)

	// Store failure must not surface.
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "s1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// No cookie at all still succeeds.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Logged out successfully"}`, w.Body.String())
}

func TestAuthStatus(t *testing.T) {
	users := &fakeUsers{byPhone: map[string]models.User{}}
	sessions := &fakeSessions{records: map[string]string{"s1": "u1"}}
	r, _ := authTestRouter(users, sessions)

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "s1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"authenticated":true,"userId":"u1"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))
	assert.JSONEq(t, `{"success":true,"authenticated":false}`, w.Body.String())
}
