package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func serveAdmin(t *testing.T, secret, authHeader string) (int, bool) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()

	called := false
	AdminJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := AdminClaimsFromContext(r.Context())
		if !ok || claims.Role != AdminRole {
			t.Fatalf("expected admin claims in context, got %+v", claims)
		}
	})).ServeHTTP(rec, req)
	return rec.Code, called
}

func TestAdminJWT(t *testing.T) {
	valid := signedToken(t, "secret", AdminRole, time.Hour, jwt.SigningMethodHS256)

	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{"missing secret", "", "Bearer " + valid, http.StatusUnauthorized},
		{"missing header", "secret", "", http.StatusUnauthorized},
		{"wrong scheme", "secret", "Basic " + valid, http.StatusUnauthorized},
		{"wrong key", "secret", "Bearer " + signedToken(t, "other", AdminRole, time.Hour, jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"expired", "secret", "Bearer " + signedToken(t, "secret", AdminRole, -time.Minute, jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"wrong alg", "secret", "Bearer " + signedToken(t, "secret", AdminRole, time.Hour, jwt.SigningMethodHS512), http.StatusUnauthorized},
		{"not admin", "secret", "Bearer " + signedToken(t, "secret", "viewer", time.Hour, jwt.SigningMethodHS256), http.StatusForbidden},
		{"valid", "secret", "Bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, called := serveAdmin(t, tt.secret, tt.header)
			if code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, code)
			}
			if called != (tt.want == http.StatusOK) {
				t.Fatalf("unexpected handler invocation: %v", called)
			}
		})
	}
}

func signedToken(t *testing.T, secret, role string, ttl time.Duration, method jwt.SigningMethod) string {
	t.Helper()
	claims := AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "operator",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
