package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kirana/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, userID string, roles []string, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		Username: "tester",
		UserID:   userID,
		Role:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	require.NoError(t, err)
	return token
}

func TestAuthenticatePutsUserInContext(t *testing.T) {
	var gotUser string
	var gotRoles []string
	next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUser, _ = r.Context().Value(globals.UserIDKey).(string)
		gotRoles, _ = r.Context().Value(globals.RoleKey).([]string)
		w.WriteHeader(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "u1", []string{"user"}, time.Hour))
	rec := httptest.NewRecorder()
	Authenticate(next)(rec, req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u1", gotUser)
	require.Equal(t, []string{"user"}, gotRoles)
}

func TestAuthenticateRejectsMissingAndMalformedTokens(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Fatal("handler must not run")
	}

	for _, header := range []string{"", "Bearer", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		Authenticate(next)(rec, req, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header: %q", header)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Fatal("handler must not run")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "u1", []string{"user"}, -time.Minute))
	rec := httptest.NewRecorder()
	Authenticate(next)(rec, req, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRolesGatesAdminEndpoints(t *testing.T) {
	called := false
	next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
		w.WriteHeader(http.StatusOK)
	}
	adminOnly := Chain(Authenticate, RequireRoles("admin"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "u1", []string{"user"}, time.Hour))
	rec := httptest.NewRecorder()
	adminOnly(next)(rec, req, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, called)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "u2", []string{"user", "admin"}, time.Hour))
	rec = httptest.NewRecorder()
	adminOnly(next)(rec, req, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, called)
}
