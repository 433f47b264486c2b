package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lunch-orders/internal/auth"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-that-is-long-enough-000", 15*time.Minute)
}

func protectedEndpoint(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(claims.EditorID))
	})
}

// ============================================
// Token Extraction Tests
// ============================================

func TestExtractToken_Cookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})

	assert.Equal(t, "cookie-token", ExtractToken(r))
}

func TestExtractToken_BearerHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.Header.Set("Authorization", "Bearer header-token")

	assert.Equal(t, "header-token", ExtractToken(r))
}

func TestExtractToken_CookieWinsOverHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")

	assert.Equal(t, "cookie-token", ExtractToken(r))
}

func TestExtractToken_None(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	assert.Empty(t, ExtractToken(r))
}

// ============================================
// AuthMiddleware Tests
// ============================================

func TestAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.GenerateAccessToken("ed-1", "ed@example.com", "editor")
	require.NoError(t, err)

	handler := AuthMiddleware(svc)(protectedEndpoint(t))
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ed-1", w.Body.String())
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	handler := AuthMiddleware(newTestJWTService())(protectedEndpoint(t))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	handler := AuthMiddleware(newTestJWTService())(protectedEndpoint(t))
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ============================================
// RequireRole Tests
// ============================================

func requestWithRole(t *testing.T, svc *auth.JWTService, role string) *http.Request {
	t.Helper()
	token, _, err := svc.GenerateAccessToken("ed-1", "ed@example.com", role)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/menus", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestRequireRole_Allowed(t *testing.T) {
	svc := newTestJWTService()
	handler := AuthMiddleware(svc)(RequireRole("admin")(protectedEndpoint(t)))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, requestWithRole(t, svc, "admin"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	svc := newTestJWTService()
	handler := AuthMiddleware(svc)(RequireRole("admin")(protectedEndpoint(t)))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, requestWithRole(t, svc, "editor"))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ============================================
// Actor Resolution Tests
// ============================================

func TestActorFromContext_NoClaims(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)

	_, err := ActorFromContext(r.Context())

	assert.ErrorIs(t, err, auth.ErrMissingIdentity)
}
