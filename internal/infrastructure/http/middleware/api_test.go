package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/application/account"
)

func newAccounts(t *testing.T) *account.Service {
	t.Helper()
	return account.NewService(nil, "test-secret", time.Hour, zaptest.NewLogger(t))
}

func TestAuthenticateAPIRejectsMissingHeader(t *testing.T) {
	handler := AuthenticateAPI(newAccounts(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/kitchen/session", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization header required")
}

func TestAuthenticateAPIRejectsMalformedHeader(t *testing.T) {
	handler := AuthenticateAPI(newAccounts(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/kitchen/session", nil)
	req.Header.Set("Authorization", "Token abc123")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateAPIPopulatesContext(t *testing.T) {
	accounts := newAccounts(t)

	resp, err := accounts.GuestSession(context.Background())
	require.NoError(t, err)

	var sawSession string
	handler := AuthenticateAPI(accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, resp.User.ID, userID)

		sessionID, ok := GetSessionIDFromContext(r.Context())
		assert.True(t, ok)
		sawSession = sessionID

		role, ok := GetRoleFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "guest", role)

		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/kitchen/session", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, sawSession)
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	handler := CORS([]string{"https://kasalokusina.ph"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight should not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recipes/featured", nil)
	req.Header.Set("Origin", "https://kasalokusina.ph")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://kasalokusina.ph", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSUnlistedOriginGetsNoAllowHeader(t *testing.T) {
	handler := CORS([]string{"https://kasalokusina.ph"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes/featured", nil)
	req.Header.Set("Origin", "https://evil.example")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
