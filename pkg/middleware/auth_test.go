package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okValidator(claims *Claims) TokenValidator {
	return func(ctx context.Context, token string) (*Claims, error) {
		return claims, nil
	}
}

func failValidator() TokenValidator {
	return func(ctx context.Context, token string) (*Claims, error) {
		return nil, errors.New("bad token")
	}
}

func protected(t *testing.T, wantID, wantKind string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantID, PrincipalIDFromContext(r.Context()))
		assert.Equal(t, wantKind, PrincipalKindFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_CookieToken(t *testing.T) {
	handler := Auth("tz_access", okValidator(&Claims{PrincipalID: "user-1", Kind: "user"}))(
		protected(t, "user-1", "user"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "tz_access", Value: "token-abc"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuth_BearerFallback(t *testing.T) {
	handler := Auth("tz_access", okValidator(&Claims{PrincipalID: "admin-1", Kind: "admin"}))(
		protected(t, "admin-1", "admin"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	handler := Auth("tz_access", okValidator(&Claims{}))(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"code":"UNAUTHORIZED","message":"authentication required"}`, rr.Body.String())
}

func TestAuth_InvalidToken_SameResponseAsMissing(t *testing.T) {
	handler := Auth("tz_access", failValidator())(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "tz_access", Value: "expired"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"code":"UNAUTHORIZED","message":"authentication required"}`, rr.Body.String())
}

func TestAuth_MalformedAuthorizationHeader(t *testing.T) {
	handler := Auth("tz_access", okValidator(&Claims{}))(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "token-without-scheme")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireKind_Allowed(t *testing.T) {
	handler := Auth("tz_admin_access", okValidator(&Claims{PrincipalID: "a1", Kind: "admin"}))(
		RequireKind("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "tz_admin_access", Value: "tok"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireKind_Forbidden(t *testing.T) {
	handler := Auth("tz_access", okValidator(&Claims{PrincipalID: "u1", Kind: "user"}))(
		RequireKind("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "tz_access", Value: "tok"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
