package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-station/internal/auth"
	"ms-station/internal/logger"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestHMACVerifierRoundTrip(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "")
	t.Setenv("JWT_SECRET", "test-secret")

	verifier, err := auth.NewVerifier()
	require.NoError(t, err)

	raw := signToken(t, "test-secret", jwt.MapClaims{
		"sub":   "user-42",
		"staff": true,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	id, err := verifier.Verify(context.Background(), raw)
	assert.NoError(t, err)
	assert.Equal(t, "user-42", id.UserID)
	assert.True(t, id.Staff)
}

func TestHMACVerifierRejectsBadSignature(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "")
	t.Setenv("JWT_SECRET", "test-secret")

	verifier, err := auth.NewVerifier()
	require.NoError(t, err)

	raw := signToken(t, "wrong-secret", jwt.MapClaims{"sub": "user-42"})
	_, err = verifier.Verify(context.Background(), raw)
	assert.Error(t, err)
}

func TestHMACVerifierRequiresSubject(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "")
	t.Setenv("JWT_SECRET", "test-secret")

	verifier, err := auth.NewVerifier()
	require.NoError(t, err)

	raw := signToken(t, "test-secret", jwt.MapClaims{"staff": true})
	_, err = verifier.Verify(context.Background(), raw)
	assert.Error(t, err)
}

func TestExtractTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := auth.ExtractTokenFromRequest(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Basic abc")
	_, err = auth.ExtractTokenFromRequest(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Bearer some-token")
	token, err := auth.ExtractTokenFromRequest(req)
	assert.NoError(t, err)
	assert.Equal(t, "some-token", token)
}

func TestMiddleware(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "")
	t.Setenv("JWT_SECRET", "test-secret")

	verifier, err := auth.NewVerifier()
	require.NoError(t, err)

	var seen auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := auth.Middleware(verifier, &logger.Logger{})(next)

	// No token
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token threads the identity through
	raw := signToken(t, "test-secret", jwt.MapClaims{"sub": "user-42", "staff": false})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", seen.UserID)
}
