package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
)

type stubFirebaseVerifier struct {
	token *firebaseauth.Token
	err   error
}

func (s *stubFirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	return s.token, s.err
}

func TestFirebaseAuthenticatorSuccess(t *testing.T) {
	verifier := &stubFirebaseVerifier{
		token: &firebaseauth.Token{
			UID: "staff-1",
			Claims: map[string]any{
				"email": "staff@fashionshop.vn",
				"role":  []any{"staff", "ops"},
			},
		},
	}

	auth := NewFirebaseAuthenticator(verifier)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	user, err := auth.Authenticate(req, "good-token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.UID != "staff-1" || user.Email != "staff@fashionshop.vn" {
		t.Fatalf("unexpected user %#v", user)
	}
	if len(user.Roles) != 2 || user.Roles[0] != "staff" {
		t.Fatalf("unexpected roles %#v", user.Roles)
	}
	if user.Token != "good-token" {
		t.Fatalf("token not forwarded: %q", user.Token)
	}
}

func TestFirebaseAuthenticatorRejectsNonStaff(t *testing.T) {
	verifier := &stubFirebaseVerifier{
		token: &firebaseauth.Token{UID: "shopper", Claims: map[string]any{"email": "a@b.c"}},
	}
	_, err := NewFirebaseAuthenticator(verifier).Authenticate(httptest.NewRequest(http.MethodGet, "/", nil), "t")
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Reason != ReasonForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	verifier.token.Claims["admin"] = true
	if _, err := NewFirebaseAuthenticator(verifier).Authenticate(httptest.NewRequest(http.MethodGet, "/", nil), "t"); err != nil {
		t.Fatalf("admin claim should pass: %v", err)
	}
}

func TestFirebaseAuthenticatorHandlesExpiredToken(t *testing.T) {
	auth := NewFirebaseAuthenticator(&stubFirebaseVerifier{err: ErrTokenExpired})

	_, err := auth.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil), "expired")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if authErr.Reason != ReasonTokenExpired {
		t.Fatalf("expected token_expired, got %s", authErr.Reason)
	}
}

func TestAuthRedirectsWithoutToken(t *testing.T) {
	handler := HTMX()(Auth(DevAuthenticator(), "/admin/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders?date_range=30", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if loc.Path != "/admin/login" || loc.Query().Get("next") != "/admin/orders?date_range=30" {
		t.Fatalf("unexpected redirect %s", loc)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/1/accept", nil)
	req.Header.Set("HX-Request", "true")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Redirect") != "/admin/login" {
		t.Fatalf("unexpected HX-Redirect %q", rec.Header().Get("HX-Redirect"))
	}
}

func TestAuthAcceptsCookieToken(t *testing.T) {
	var got *User
	handler := Auth(DevAuthenticator(), "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "Bearer dev-staff"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.Token != "dev-staff" {
		t.Fatalf("expected user with token, got %#v", got)
	}
}

func TestCSRFDoubleSubmit(t *testing.T) {
	var issued string
	handler := CSRF(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		issued = CSRFTokenFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != issued || issued == "" {
		t.Fatalf("expected issued cookie, got %#v", cookies)
	}

	post := func(header, field string) int {
		body := url.Values{}
		if field != "" {
			body.Set(CSRFFormField, field)
		}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookies[0])
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post(issued, ""); code != http.StatusOK {
		t.Fatalf("header token rejected: %d", code)
	}
	if code := post("", issued); code != http.StatusOK {
		t.Fatalf("form token rejected: %d", code)
	}
	if code := post("wrong", ""); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	if code := post("", ""); code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", code)
	}
}

func TestCSRFReissuesMalformedCookie(t *testing.T) {
	var issued string
	handler := CSRF(CSRFConfig{CookieName: "staff_csrf"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		issued = CSRFTokenFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "staff_csrf", Value: "short"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "staff_csrf" || cookies[0].Value == "short" {
		t.Fatalf("expected fresh cookie, got %#v", cookies)
	}
	if issued != cookies[0].Value {
		t.Fatalf("context token %q does not match cookie %q", issued, cookies[0].Value)
	}

	post := httptest.NewRequest(http.MethodPost, "/", nil)
	post.AddCookie(&http.Cookie{Name: "staff_csrf", Value: "short"})
	post.Header.Set("X-CSRF-Token", "short")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, post)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for forged short token, got %d", rec.Code)
	}
}

func TestJoin(t *testing.T) {
	cases := map[[2]string]string{
		{"/admin", "orders"}: "/admin/orders",
		{"/", "orders"}:      "/orders",
		{"admin/", "/login"}: "/admin/login",
		{"", ""}:             "/",
		{"/admin", "/a/b/"}:  "/admin/a/b",
	}
	for in, want := range cases {
		if got := Join(in[0], in[1]); got != want {
			t.Errorf("Join(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}
