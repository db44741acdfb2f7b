package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolade-dev/heartlink-backend/internal/common/utils"
)

const testSecret = "test-secret"

func protectedEcho(t *testing.T) (http.Handler, *int64) {
	t.Helper()
	var gotUserID int64

	m := NewMiddleware(testSecret)
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		gotUserID = userID
		w.WriteHeader(http.StatusOK)
	}))

	return handler, &gotUserID
}

func TestAuthenticate_ValidToken(t *testing.T) {
	handler, gotUserID := protectedEcho(t)

	token, err := utils.GenerateJWT(&utils.JWTClaims{UserID: 42, Username: "ada", Type: "access"}, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), *gotUserID)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	handler, _ := protectedEcho(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	handler, _ := protectedEcho(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	handler, _ := protectedEcho(t)

	token, err := utils.GenerateJWT(&utils.JWTClaims{UserID: 42, Type: "access"}, "other-secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	handler, _ := protectedEcho(t)

	token, err := utils.GenerateJWT(&utils.JWTClaims{UserID: 42, Type: "access"}, testSecret, -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_RefreshTokenRejected(t *testing.T) {
	handler, _ := protectedEcho(t)

	token, err := utils.GenerateJWT(&utils.JWTClaims{UserID: 42, Type: "refresh"}, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
