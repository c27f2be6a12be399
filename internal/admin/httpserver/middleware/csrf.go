package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

type staffTokenKey struct{}

// CSRFFormField is the form field accepted when the header is absent.
const CSRFFormField = "csrf_token"

const csrfTokenBytes = 32

// CSRFConfig configures the staff CSRF cookie. Zero values fall back to
// admin_csrf on "/" for a day, checked through X-CSRF-Token.
type CSRFConfig struct {
	CookieName string
	CookiePath string
	HeaderName string
	MaxAge     time.Duration
	Secure     bool
}

type csrfGuard struct {
	cookie string
	path   string
	header string
	maxAge int
	secure bool
}

func newCSRFGuard(cfg CSRFConfig) csrfGuard {
	g := csrfGuard{
		cookie: cfg.CookieName,
		path:   cfg.CookiePath,
		header: cfg.HeaderName,
		maxAge: int(cfg.MaxAge / time.Second),
		secure: cfg.Secure,
	}
	if g.cookie == "" {
		g.cookie = "admin_csrf"
	}
	if g.path == "" {
		g.path = "/"
	}
	if g.header == "" {
		g.header = "X-CSRF-Token"
	}
	if g.maxAge <= 0 {
		g.maxAge = int((24 * time.Hour) / time.Second)
	}
	return g
}

// CSRF guards order actions and login posts with a double-submit token. Every
// request carries the staff token in its context; writes must echo it back in
// the header or the csrf_token form field.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	guard := newCSRFGuard(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := guard.token(w, r)
			if err != nil {
				http.Error(w, "csrf token error", http.StatusInternalServerError)
				return
			}
			if writes(r.Method) && !guard.echoed(r, token) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), staffTokenKey{}, token)))
		})
	}
}

// CSRFTokenFromContext returns the staff token for templates and htmx headers.
func CSRFTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(staffTokenKey{}).(string)
	return token
}

// token reuses a well-formed cookie value and mints a new one otherwise.
func (g csrfGuard) token(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(g.cookie); err == nil && wellFormed(c.Value) {
		return c.Value, nil
	}
	raw := securecookie.GenerateRandomKey(csrfTokenBytes)
	if raw == nil {
		return "", errors.New("csrf: random source unavailable")
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookie,
		Value:    token,
		Path:     g.path,
		MaxAge:   g.maxAge,
		HttpOnly: true,
		Secure:   g.secure || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

func (g csrfGuard) echoed(r *http.Request, token string) bool {
	sent := r.Header.Get(g.header)
	if sent == "" {
		sent = r.PostFormValue(CSRFFormField)
	}
	return sent != "" && subtle.ConstantTimeCompare([]byte(sent), []byte(token)) == 1
}

func wellFormed(token string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	return err == nil && len(raw) == csrfTokenBytes
}

func writes(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	return true
}
