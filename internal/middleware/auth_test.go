package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, email string, scopes []string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scopes: scopes,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func authedRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/reply", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuth(t *testing.T) {
	var gotEmail string
	var gotScopes []string
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = GetUserEmail(r.Context())
		gotScopes = GetScopes(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, signToken(t, "user@example.com", []string{"calendar"})))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user@example.com", gotEmail)
		assert.Equal(t, []string{"calendar"}, gotScopes)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, ""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user@example.com"}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, token))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user@example.com",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, token))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty subject", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, signToken(t, "", nil)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireScope(t *testing.T) {
	chain := Auth(testSecret)(RequireScope("calendar")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("scope present", func(t *testing.T) {
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, authedRequest(t, signToken(t, "user@example.com", []string{"calendar"})))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("scope missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, authedRequest(t, signToken(t, "user@example.com", []string{"other"})))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no scopes at all", func(t *testing.T) {
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, authedRequest(t, signToken(t, "user@example.com", nil)))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHasScope(t *testing.T) {
	assert.False(t, HasScope(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "calendar"))
}
