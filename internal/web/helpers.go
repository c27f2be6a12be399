package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/akira3175/fashionshop/internal/cart"
	"github.com/akira3175/fashionshop/internal/platform/observability"
)

// CountEvent is the htmx event raised after the cart count changes.
const CountEvent = "cart:count"

func countTrigger(count int) string {
	b, _ := json.Marshal(map[string]int{CountEvent: count})
	return string(b)
}

func loggerFrom(r *http.Request, fallback *zap.Logger) *zap.Logger {
	logger := observability.FromContext(r.Context())
	if logger.Core().Enabled(zap.FatalLevel) {
		return logger
	}
	return fallback
}

func intParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		return 0, false
	}
	return v, true
}

func lineKey(r *http.Request) (int, string, bool) {
	productID, ok := intParam(r, "productID")
	if !ok {
		return 0, "", false
	}
	sizeID := cart.NormalizeSizeID(chi.URLParam(r, "sizeID"))
	if sizeID == "" {
		return 0, "", false
	}
	return productID, sizeID, true
}

func setHTML(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}
