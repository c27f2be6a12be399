package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "github.com/akira3175/fashionshop/internal/admin/httpserver/middleware"
	"github.com/akira3175/fashionshop/internal/admin/templates/auth"
	"github.com/akira3175/fashionshop/internal/platform/observability"
)

type authHandlers struct {
	authenticator custommw.Authenticator
	basePath      string
	loginPath     string
}

func newAuthHandlers(authenticator custommw.Authenticator, basePath, loginPath string) *authHandlers {
	if authenticator == nil {
		panic("auth: authenticator is required")
	}
	basePath = custommw.NormalizeBase(basePath)
	if strings.TrimSpace(loginPath) == "" {
		loginPath = custommw.Join(basePath, "login")
	}
	return &authHandlers{
		authenticator: authenticator,
		basePath:      basePath,
		loginPath:     loginPath,
	}
}

func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) && !forceLogin(r) {
		http.Redirect(w, r, h.redirectTarget(r.URL.Query().Get("next")), http.StatusFound)
		return
	}
	h.renderLoginPage(w, r, h.buildLoginPageData(r, nil), http.StatusOK)
}

func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		state := &loginFormState{Error: "Gửi biểu mẫu thất bại, vui lòng thử lại."}
		h.renderLoginPage(w, r, h.buildLoginPageData(r, state), http.StatusBadRequest)
		return
	}

	state := &loginFormState{Next: r.PostFormValue("next")}
	token := strings.TrimSpace(r.PostFormValue("id_token"))
	if token == "" {
		state.Error = "Vui lòng nhập mã xác thực."
		h.renderLoginPage(w, r, h.buildLoginPageData(r, state), http.StatusBadRequest)
		return
	}

	user, err := h.authenticator.Authenticate(r, token)
	if err != nil || user == nil {
		observability.FromContext(r.Context()).Info("admin login failed", zap.Error(err))
		state.Error = errorMessageFor(err)
		status := http.StatusUnauthorized
		var authErr *custommw.AuthError
		if errors.As(err, &authErr) && authErr.Reason == custommw.ReasonForbidden {
			status = http.StatusForbidden
		}
		h.renderLoginPage(w, r, h.buildLoginPageData(r, state), status)
		return
	}

	issued := token
	if user.Token != "" {
		issued = user.Token
	}
	h.setAuthCookie(w, r, issued)
	observability.FromContext(r.Context()).Info("admin login", zap.String("staff_uid", user.UID))

	target := h.redirectTarget(state.Next)
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearAuthCookie(w)
	redirect := h.loginURLWithParams(map[string]string{"status": "logged_out"})

	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", redirect)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

type loginFormState struct {
	Next  string
	Error string
}

func (h *authHandlers) buildLoginPageData(r *http.Request, state *loginFormState) auth.LoginPageData {
	q := r.URL.Query()

	next := h.normalizeNext(q.Get("next"))
	errorText := ""
	if state != nil {
		if state.Next != "" {
			next = h.normalizeNext(state.Next)
		}
		errorText = state.Error
	}

	return auth.LoginPageData{
		LoginPath: h.loginPath,
		Next:      next,
		Error:     errorText,
		Message:   messageForQuery(q),
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
	}
}

func (h *authHandlers) renderLoginPage(w http.ResponseWriter, r *http.Request, data auth.LoginPageData, status int) {
	templ.Handler(auth.LoginPage(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *authHandlers) isAuthenticated(r *http.Request) bool {
	c, err := r.Cookie(custommw.TokenCookieName)
	if err != nil {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(c.Value, "Bearer "))
	if token == "" {
		return false
	}
	user, err := h.authenticator.Authenticate(r, token)
	return err == nil && user != nil
}

func errorMessageFor(err error) string {
	var authErr *custommw.AuthError
	if errors.As(err, &authErr) {
		switch authErr.Reason {
		case custommw.ReasonTokenExpired:
			return "Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại."
		case custommw.ReasonMissingToken:
			return "Thiếu thông tin xác thực."
		case custommw.ReasonForbidden:
			return "Tài khoản không có quyền quản trị."
		}
	}
	return "Xác thực thất bại, vui lòng kiểm tra lại."
}

func messageForQuery(q url.Values) string {
	if q.Get("status") == "logged_out" {
		return "Đã đăng xuất."
	}
	switch q.Get("reason") {
	case custommw.ReasonTokenExpired, "expired":
		return "Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại."
	case custommw.ReasonMissingToken:
		return "Vui lòng đăng nhập."
	default:
		return ""
	}
}

func (h *authHandlers) redirectTarget(raw string) string {
	if next := h.normalizeNext(raw); next != "" {
		return next
	}
	return custommw.Join(h.basePath, "orders")
}

func (h *authHandlers) setAuthCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     custommw.TokenCookieName,
		Value:    "Bearer " + token,
		Path:     h.basePath,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *authHandlers) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     custommw.TokenCookieName,
		Value:    "",
		Path:     h.basePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *authHandlers) loginURLWithParams(params map[string]string) string {
	parsed, err := url.Parse(h.loginPath)
	if err != nil {
		return h.loginPath
	}
	q := parsed.Query()
	for key, val := range params {
		if strings.TrimSpace(val) != "" {
			q.Set(key, val)
		}
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func forceLogin(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("force"))) {
	case "1", "true", "yes", "force":
		return true
	default:
		return false
	}
}

// normalizeNext accepts only same-site paths under the admin base that do not
// point back at the login page.
func (h *authHandlers) normalizeNext(raw string) string {
	sanitized := sanitizeNextTarget(h.basePath, raw)
	if sanitized == "" {
		return ""
	}
	if parsed, err := url.Parse(sanitized); err == nil && strings.TrimRight(parsed.Path, "/") == strings.TrimRight(h.loginPath, "/") {
		return ""
	}
	return sanitized
}

func sanitizeNextTarget(basePath, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return ""
	}

	pathValue := parsed.Path
	if pathValue == "" {
		pathValue = "/"
	}
	unescaped, err := url.PathUnescape(pathValue)
	if err != nil || strings.Contains(unescaped, "\\") {
		return ""
	}
	cleaned := path.Clean(unescaped)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	if strings.HasPrefix(cleaned, "//") {
		return ""
	}

	base := custommw.NormalizeBase(basePath)
	if base != "/" && !hasSafePrefix(cleaned, base) {
		return ""
	}

	target := cleaned
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	return target
}

func hasSafePrefix(pathValue, base string) bool {
	if !strings.HasPrefix(pathValue, base) {
		return false
	}
	return len(pathValue) == len(base) || pathValue[len(base)] == '/'
}
