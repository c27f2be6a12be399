package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const (
	// CSRFHeader carries the token on htmx requests.
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField carries the token on plain form posts.
	CSRFFormField = "csrf_token"
)

// CSRF verifies that unsafe requests carry the session's CSRF token.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		sess, ok := SessionFromContext(r.Context())
		if !ok || sess.CSRFToken() == "" {
			WriteError(w, r, http.StatusForbidden, "csrf_invalid", "invalid CSRF token")
			return
		}
		token := strings.TrimSpace(r.Header.Get(CSRFHeader))
		if token == "" {
			token = strings.TrimSpace(r.PostFormValue(CSRFFormField))
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(sess.CSRFToken())) != 1 {
			WriteError(w, r, http.StatusForbidden, "csrf_invalid", "invalid CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
