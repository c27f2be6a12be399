package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/akira3175/fashionshop/internal/platform/observability"
)

type authContextKey string

const userContextKey authContextKey = "auth.user"

// TokenCookieName is the cookie holding the staff ID token after login.
const TokenCookieName = "Authorization"

// User represents the authenticated staff member.
type User struct {
	UID   string
	Email string
	Roles []string
	Token string
}

// Authenticator resolves an incoming token into a User.
type Authenticator interface {
	Authenticate(r *http.Request, token string) (*User, error)
}

// ErrUnauthorized is returned when authentication fails.
var ErrUnauthorized = errors.New("unauthorized")

// AuthError contains reason codes for failed authentication attempts.
type AuthError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError constructs an AuthError with the provided reason.
func NewAuthError(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}

const (
	ReasonMissingToken = "missing_token"
	ReasonTokenInvalid = "token_invalid"
	ReasonTokenExpired = "token_expired"
	ReasonForbidden    = "forbidden"
)

// DevAuthenticator accepts any non-empty token as an admin. It is meant for local
// development against the static order service only.
func DevAuthenticator() Authenticator {
	return devAuthenticator{}
}

type devAuthenticator struct{}

func (devAuthenticator) Authenticate(_ *http.Request, token string) (*User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, NewAuthError(ReasonMissingToken, ErrUnauthorized)
	}
	return &User{UID: token, Email: token + "@local", Roles: []string{"admin"}, Token: token}, nil
}

// Auth validates incoming requests and either attaches a User to context or
// sends the caller to the login page.
func Auth(authenticator Authenticator, loginPath string) func(http.Handler) http.Handler {
	if authenticator == nil {
		authenticator = DevAuthenticator()
	}
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())

			token := parseBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				token = cookieToken(r)
			}
			if token == "" {
				logger.Info("admin auth failure", zap.String("reason", ReasonMissingToken))
				handleUnauthorized(w, r, loginPath, ReasonMissingToken)
				return
			}

			user, err := authenticator.Authenticate(r, token)
			if err != nil || user == nil {
				reason := ReasonTokenInvalid
				var authErr *AuthError
				if errors.As(err, &authErr) && authErr.Reason != "" {
					reason = authErr.Reason
				}
				if err == nil {
					err = ErrUnauthorized
				}
				logger.Info("admin auth failure", zap.String("reason", reason), zap.Error(err))
				handleUnauthorized(w, r, loginPath, reason)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = observability.WithLogger(ctx, logger.With(zap.String("staff_uid", user.UID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user if present.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok && user != nil
}

// WithUser attaches user to ctx. Tests use it to bypass Auth.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func parseBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func cookieToken(r *http.Request) string {
	for _, name := range []string{TokenCookieName, "__session"} {
		c, err := r.Cookie(name)
		if err != nil {
			continue
		}
		val := strings.TrimSpace(c.Value)
		if val == "" {
			continue
		}
		if bearer := parseBearerToken(val); bearer != "" {
			return bearer
		}
		return val
	}
	return ""
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath, reason string) {
	if reason == ReasonForbidden {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	target := loginPath
	if u, err := url.Parse(loginPath); err == nil {
		q := u.Query()
		if reason == ReasonTokenExpired {
			q.Set("reason", "expired")
		}
		if r.Method == http.MethodGet && !IsHTMXRequest(r.Context()) {
			q.Set("next", r.URL.RequestURI())
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	if IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
