package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

func TestAuthIssueAndParse(t *testing.T) {
	auth := NewAuth("secret", time.Hour)
	token, err := auth.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := auth.UserIDFromAuthHeader("Bearer " + token)
	if err != nil {
		t.Fatalf("UserIDFromAuthHeader: %v", err)
	}
	if id != "user-1" {
		t.Fatalf("expected user-1, got %q", id)
	}
}

func TestAuthRejects(t *testing.T) {
	auth := NewAuth("secret", time.Hour)

	expired := NewAuth("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := NewAuth("other", time.Hour).Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}).
		SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := map[string]string{
		"empty":       "",
		"no bearer":   "Token abc",
		"not a jwt":   "Bearer abc",
		"expired":     "Bearer " + old,
		"wrong key":   "Bearer " + other,
		"alg none":    "Bearer " + none,
		"missing sub": "Bearer " + noSub,
	}
	for name, header := range cases {
		if _, err := auth.UserIDFromAuthHeader(header); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestAuthMissingHeaderError(t *testing.T) {
	auth := NewAuth("secret", time.Hour)
	if _, err := auth.UserIDFromAuthHeader("  "); err != errMissingAuthorization {
		t.Fatalf("expected errMissingAuthorization, got %v", err)
	}
	if _, err := auth.UserIDFromAuthHeader("Basic a.b.c"); err != errBadAuthorization {
		t.Fatalf("expected errBadAuthorization, got %v", err)
	}
}

func TestRequireUser(t *testing.T) {
	e := echo.New()
	auth := NewAuth("secret", time.Hour)
	var seen string
	h := requireUser(auth)(func(c echo.Context) error {
		seen = userID(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	token, _ := auth.Issue("user-2")
	req = httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK || seen != "user-2" {
		t.Fatalf("expected 200 for user-2, got %d %q", rec.Code, seen)
	}
}
