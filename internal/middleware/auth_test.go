package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gadamagado/api/internal/auth"
	"gadamagado/api/internal/models"
	"gadamagado/api/internal/repository"
	"gadamagado/api/internal/security"
	"gadamagado/api/internal/session"
)

const (
	testCookie = "sid"
	testSecret = "middleware-test-secret"
)

type stubDirectory struct {
	users map[string]models.User
	err   error
}

func (d *stubDirectory) GetByID(_ context.Context, id string) (models.User, error) {
	if d.err != nil {
		return models.User{}, d.err
	}
	user, ok := d.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

type stubSessionStore struct {
	sessions map[string]string
}

func (s *stubSessionStore) Resolve(_ context.Context, id string) (string, error) {
	userID, ok := s.sessions[id]
	if !ok {
		return "", session.ErrSessionNotFound
	}
	return userID, nil
}

func (s *stubSessionStore) Touch(_ context.Context, _ string) error { return nil }

func (s *stubSessionStore) Destroy(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func testResolver(dir auth.Directory, store auth.SessionStore) *auth.Resolver {
	verifier := auth.VerifierFunc(func(token string) (string, error) {
		claims, err := security.ParseToken(token, testSecret)
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	})
	return auth.NewResolver(dir, store, verifier, auth.Options{}, zerolog.Nop())
}

func protectedRouter(resolver *auth.Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", Require(resolver, testCookie, zerolog.Nop()), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "userId": user.ID})
	})
	r.GET("/feed", Optional(resolver, testCookie, zerolog.Nop()), func(c *gin.Context) {
		if user, ok := CurrentUser(c); ok {
			c.JSON(http.StatusOK, gin.H{"success": true, "userId": user.ID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "userId": nil})
	})
	return r
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := security.IssueToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return token
}

func TestRequireWithValidToken(t *testing.T) {
	dir := &stubDirectory{users: map[string]models.User{
		"u1": {ID: "u1", Role: models.UserRoleUser, IsActive: true},
	}}
	r := protectedRouter(testResolver(dir, &stubSessionStore{}))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"userId":"u1"}`, w.Body.String())
}

func TestRequireWithValidSessionCookie(t *testing.T) {
	dir := &stubDirectory{users: map[string]models.User{
		"u1": {ID: "u1", Role: models.UserRoleUser, IsActive: true},
	}}
	store := &stubSessionStore{sessions: map[string]string{"s1": "u1"}}
	r := protectedRouter(testResolver(dir, store))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "s1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"userId":"u1"}`, w.Body.String())
}

func TestRequireRejectsWithGenericMessage(t *testing.T) {
	dir := &stubDirectory{users: map[string]models.User{}}
	store := &stubSessionStore{sessions: map[string]string{}}
	r := protectedRouter(testResolver(dir, store))

	tests := []struct {
		name    string
		prepare func(req *http.Request)
	}{
		{"no credentials", func(*http.Request) {}},
		{"invalid token", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer garbage")
		}},
		{"unknown session", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: testCookie, Value: "nope"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"Not authorized to access this route"}`, w.Body.String())
		})
	}
}

func TestRequireInternalFault(t *testing.T) {
	dir := &stubDirectory{err: errors.New("directory unreachable")}
	r := protectedRouter(testResolver(dir, &stubSessionStore{}))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Authentication failed"}`, w.Body.String())
}

func TestOptionalProceedsAnonymously(t *testing.T) {
	dir := &stubDirectory{users: map[string]models.User{}}
	store := &stubSessionStore{sessions: map[string]string{}}
	r := protectedRouter(testResolver(dir, store))

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "nope"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"userId":null}`, w.Body.String())
}

func TestOptionalAttachesResolvedPrincipal(t *testing.T) {
	dir := &stubDirectory{users: map[string]models.User{
		"u1": {ID: "u1", Role: models.UserRoleUser, IsActive: true},
	}}
	store := &stubSessionStore{sessions: map[string]string{"s1": "u1"}}
	r := protectedRouter(testResolver(dir, store))

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "s1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"userId":"u1"}`, w.Body.String())
}

func TestOptionalSwallowsFault(t *testing.T) {
	dir := &stubDirectory{err: errors.New("directory unreachable")}
	r := protectedRouter(testResolver(dir, &stubSessionStore{}))

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"userId":null}`, w.Body.String())
}

func TestRequireRepairsOrphanedSession(t *testing.T) {
	dir := &stubDirectory{users: map[string]models.User{}}
	store := &stubSessionStore{sessions: map[string]string{"s1": "deleted-user"}}
	r := protectedRouter(testResolver(dir, store))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "s1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, store.sessions, "s1", "orphaned session must be destroyed")

	// The destroyed identifier must keep failing on replay.
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "s1"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
