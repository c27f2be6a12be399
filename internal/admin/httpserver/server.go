package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	custommw "github.com/akira3175/fashionshop/internal/admin/httpserver/middleware"
	"github.com/akira3175/fashionshop/internal/admin/httpserver/ui"
	adminorders "github.com/akira3175/fashionshop/internal/admin/orders"
	webmw "github.com/akira3175/fashionshop/internal/web/middleware"
)

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address          string
	BasePath         string
	LoginPath        string
	Authenticator    custommw.Authenticator
	Orders           adminorders.Service
	Logger           *zap.Logger
	Environment      string
	CSRFCookieName   string
	CSRFCookieSecure bool
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
}

// New constructs the HTTP server with its middleware stack.
func New(cfg Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      NewHandler(cfg),
		ReadTimeout:  durationOr(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 60*time.Second),
	}
}

// NewHandler builds the admin router.
func NewHandler(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(webmw.Logger(logger))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	basePath := custommw.NormalizeBase(cfg.BasePath)
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)

	authenticator := cfg.Authenticator
	if authenticator == nil {
		logger.Warn("admin: no authenticator configured; accepting any token")
		authenticator = custommw.DevAuthenticator()
	}

	mountAdminRoutes(router, basePath, routeOptions{
		Authenticator: authenticator,
		LoginPath:     loginPath,
		CSRF: custommw.CSRFConfig{
			CookieName: cfg.CSRFCookieName,
			CookiePath: basePath,
			Secure:     cfg.CSRFCookieSecure,
		},
		UI: ui.NewHandlers(ui.Dependencies{
			OrdersService: cfg.Orders,
			Environment:   cfg.Environment,
		}),
	})
	return router
}

type routeOptions struct {
	Authenticator custommw.Authenticator
	LoginPath     string
	CSRF          custommw.CSRFConfig
	UI            *ui.Handlers
}

func mountAdminRoutes(router chi.Router, base string, opts routeOptions) {
	authHandlers := newAuthHandlers(opts.Authenticator, base, opts.LoginPath)
	ordersPath := custommw.Join(base, "orders")

	router.Group(func(r chi.Router) {
		r.Use(custommw.RequestInfoMiddleware(base))
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.CSRF(opts.CSRF))

		r.Get(opts.LoginPath, authHandlers.LoginForm)
		r.Post(opts.LoginPath, authHandlers.LoginSubmit)
		r.Post(custommw.Join(base, "logout"), authHandlers.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommw.Auth(opts.Authenticator, opts.LoginPath))

			r.Get(base, func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, ordersPath, http.StatusFound)
			})
			if base != "/" {
				r.Get(base+"/", func(w http.ResponseWriter, r *http.Request) {
					http.Redirect(w, r, ordersPath, http.StatusFound)
				})
			}

			r.Get(ordersPath, opts.UI.OrdersPage)
			RegisterFragment(r, custommw.Join(ordersPath, "table"), opts.UI.OrdersTable)
			RegisterFragment(r, custommw.Join(ordersPath, "stats"), opts.UI.OrdersStats)

			r.Post(custommw.Join(ordersPath, "{orderID}", "accept"), opts.UI.OrderAccept)
			r.Post(custommw.Join(ordersPath, "{orderID}", "cancel"), opts.UI.OrderCancel)
			r.Post(custommw.Join(ordersPath, "{orderID}", "status"), opts.UI.OrderStatus)
		})
	})
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return custommw.Join(base, "login")
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}
