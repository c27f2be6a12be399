package ui

import (
	"net/http"

	custommw "github.com/akira3175/fashionshop/internal/admin/httpserver/middleware"
	adminorders "github.com/akira3175/fashionshop/internal/admin/orders"
	"github.com/akira3175/fashionshop/internal/admin/templates/layout"
)

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	OrdersService adminorders.Service
	Environment   string
}

// Handlers exposes HTTP handlers for admin UI pages and fragments.
type Handlers struct {
	orders      adminorders.Service
	environment string
}

// NewHandlers wires the UI handler set. A missing order service falls back to
// the in-memory one.
func NewHandlers(deps Dependencies) *Handlers {
	service := deps.OrdersService
	if service == nil {
		service = adminorders.NewStaticService()
	}
	return &Handlers{orders: service, environment: deps.Environment}
}

func (h *Handlers) chrome(r *http.Request, title string) layout.Chrome {
	ctx := r.Context()
	base := custommw.BasePathFromContext(ctx)
	chrome := layout.Chrome{
		Title:       title,
		BasePath:    base,
		CSRFToken:   custommw.CSRFTokenFromContext(ctx),
		Environment: h.environment,
		LogoutURL:   custommw.Join(base, "logout"),
	}
	if user, ok := custommw.UserFromContext(ctx); ok {
		chrome.StaffEmail = user.Email
	}
	return chrome
}

func requireUser(w http.ResponseWriter, r *http.Request) (*custommw.User, bool) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}
