package middleware

import (
	"context"
	"net/http"
	"strings"
)

type requestInfoKeyType int

const requestInfoKey requestInfoKeyType = iota

// RequestInfo holds lightweight request metadata exposed to templates.
type RequestInfo struct {
	Path     string
	BasePath string
}

// RequestInfoMiddleware annotates the context with the current request path and base path.
func RequestInfoMiddleware(basePath string) func(http.Handler) http.Handler {
	base := NormalizeBase(basePath)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := &RequestInfo{Path: r.URL.Path, BasePath: base}
			ctx := context.WithValue(r.Context(), requestInfoKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BasePathFromContext returns the resolved admin base path or "/" when unavailable.
func BasePathFromContext(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey).(*RequestInfo); ok && info != nil && info.BasePath != "" {
		return info.BasePath
	}
	return "/"
}

// NormalizeBase returns base with a leading slash and no trailing slash.
func NormalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if base != "/" {
		base = strings.TrimRight(base, "/")
		if base == "" {
			return "/"
		}
	}
	return base
}

// Join appends path segments to base.
func Join(base string, parts ...string) string {
	out := strings.TrimRight(NormalizeBase(base), "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		out += "/" + p
	}
	if out == "" {
		return "/"
	}
	return out
}
