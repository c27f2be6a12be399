package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/akira3175/fashionshop/internal/cart"
	"github.com/akira3175/fashionshop/internal/cartview"
	"github.com/akira3175/fashionshop/internal/catalog"
	"github.com/akira3175/fashionshop/internal/checkout"
	"github.com/akira3175/fashionshop/internal/storage"
	mw "github.com/akira3175/fashionshop/internal/web/middleware"
	"github.com/akira3175/fashionshop/internal/web/session"
)

// CheckoutClient places orders with the backend.
type CheckoutClient interface {
	ProcessCheckout(ctx context.Context, req checkout.Request) (checkout.Result, error)
}

// Config wires the storefront dependencies.
type Config struct {
	Catalog    catalog.Service
	Storage    storage.Storage
	StorageKey string
	Renderer   *cartview.Renderer
	Checkout   CheckoutClient
	Sessions   *session.Manager
	Logger     *zap.Logger
	StaticDir  string
	Timeout    time.Duration
}

type server struct {
	catalog    catalog.Service
	storage    storage.Storage
	storageKey string
	renderer   *cartview.Renderer
	checkout   CheckoutClient
	logger     *zap.Logger
}

// New builds the storefront router.
func New(cfg Config) (http.Handler, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("web: catalog is required")
	}
	if cfg.Storage == nil {
		return nil, errors.New("web: storage is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("web: session manager is required")
	}
	if cfg.Renderer == nil {
		r, err := cartview.NewRenderer()
		if err != nil {
			return nil, err
		}
		cfg.Renderer = r
	}
	if cfg.Checkout == nil {
		cfg.Checkout = checkout.NewClient("")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	s := &server{
		catalog:    cfg.Catalog,
		storage:    cfg.Storage,
		storageKey: cfg.StorageKey,
		renderer:   cfg.Renderer,
		checkout:   cfg.Checkout,
		logger:     cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.Timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if dir := strings.TrimSpace(cfg.StaticDir); dir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Session(cfg.Sessions))
		r.Use(mw.CSRF)

		r.Get("/", s.handleProducts)
		r.Get("/category/{categoryID}/", s.handleCategory)
		r.Get("/products/modal/close", s.handleModalClose)
		r.Get("/products/{productID}/quick-view", s.handleQuickView)
		r.Post("/products/{productID}/quick-view", s.handleQuickViewUpdate)

		r.Post("/cart/items", s.handleAddItem)
		r.Post("/cart/items/{productID}/{sizeID}/quantity", s.handleSetQuantity)
		r.Post("/cart/items/{productID}/{sizeID}/change", s.handleChangeQuantity)
		r.Delete("/cart/items/{productID}/{sizeID}", s.handleRemoveItem)
		r.Post("/cart/clear", s.handleClearCart)
		r.Get("/cart/count", s.handleCartCount)

		r.Get("/orders/cart/", s.handleCartPage)
		r.Get("/orders/cart/items", s.handleCartItems)
		r.Get("/orders/checkout/", s.handleCheckoutPage)
		r.Post("/orders/process-checkout/", s.handleProcessCheckout)
	})

	return r, nil
}

// cartFor builds the cart manager of the request's browser profile. Count changes
// are announced to htmx through the HX-Trigger header.
func (s *server) cartFor(w http.ResponseWriter, r *http.Request) *cart.Manager {
	sess, _ := mw.SessionFromContext(r.Context())
	profile := ""
	if sess != nil {
		profile = sess.ProfileID()
	}
	store := cart.NewStore(storage.Scope(s.storage, profile), s.storageKey)
	return cart.NewManager(store,
		cart.WithLogger(s.requestLogger(r)),
		cart.WithCountListener(func(_ context.Context, count int) {
			w.Header().Set("HX-Trigger", countTrigger(count))
		}),
	)
}

func (s *server) requestLogger(r *http.Request) *zap.Logger {
	return loggerFrom(r, s.logger)
}

// layout collects the data every full page needs.
func (s *server) layout(r *http.Request, manager *cart.Manager, title string) cartview.Layout {
	l := cartview.Layout{Title: title, CartCount: manager.TotalItems(r.Context())}
	if sess, ok := mw.SessionFromContext(r.Context()); ok {
		l.CSRFToken = sess.CSRFToken()
		l.Notice, l.NoticeTone = sess.TakeFlash()
	}
	if cats, err := s.catalog.Categories(r.Context()); err == nil {
		l.Categories = cats
	} else {
		s.requestLogger(r).Warn("load categories", zap.Error(err))
	}
	return l
}

func (s *server) flash(r *http.Request, message, tone string) {
	if sess, ok := mw.SessionFromContext(r.Context()); ok {
		sess.Flash(message, tone)
	}
}

func (s *server) csrfToken(r *http.Request) string {
	if sess, ok := mw.SessionFromContext(r.Context()); ok {
		return sess.CSRFToken()
	}
	return ""
}

// redirect sends htmx clients an HX-Redirect and browsers a 303.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	s.requestLogger(r).Error("render failed", zap.Error(err))
	mw.WriteError(w, r, http.StatusInternalServerError, "render_failed", "Đã có lỗi xảy ra, vui lòng thử lại.")
}
