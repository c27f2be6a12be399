package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	custommw "github.com/akira3175/fashionshop/internal/admin/httpserver/middleware"
	adminorders "github.com/akira3175/fashionshop/internal/admin/orders"
	orderstpl "github.com/akira3175/fashionshop/internal/admin/templates/orders"
	"github.com/akira3175/fashionshop/internal/platform/observability"
)

const ordersTitle = "Đơn hàng"

type actionKind int

const (
	actionAccept actionKind = iota
	actionCancel
	actionStatus
)

func (k actionKind) String() string {
	switch k {
	case actionAccept:
		return "accept"
	case actionCancel:
		return "cancel"
	default:
		return "update_status"
	}
}

func (k actionKind) fallback() string {
	switch k {
	case actionAccept:
		return adminorders.AcceptFailedNotice
	case actionCancel:
		return adminorders.CancelFailedNotice
	default:
		return adminorders.StatusFailedNotice
	}
}

// OrdersPage renders the orders index page with SSR.
func (h *Handlers) OrdersPage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	query := searchQueryFrom(r.URL.Query())
	page := h.buildPage(r, user, query, orderstpl.Notice{})
	templ.Handler(orderstpl.Index(h.chrome(r, ordersTitle), page)).ServeHTTP(w, r)
}

// OrdersTable renders the orders table fragment for htmx search requests.
func (h *Handlers) OrdersTable(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	base := custommw.BasePathFromContext(ctx)
	query := searchQueryFrom(r.URL.Query())

	var notice orderstpl.Notice
	orders, err := h.orders.Search(ctx, user.Token, query)
	table := orderstpl.BuildTable(base, orders, "")
	switch {
	case err != nil:
		observability.FromContext(ctx).Warn("orders: search failed", zap.Error(err))
		notice = orderstpl.Notice{Message: prefixed(err, adminorders.SearchFailedNotice), Tone: "danger"}
		table = orderstpl.BuildTable(base, nil, notice.Message)
	case len(orders) == 0:
		notice = orderstpl.Notice{Message: adminorders.NoResultsNotice, Tone: "warning"}
	}

	canonical := custommw.Join(base, "orders") + "?" + orderstpl.SearchValues(orderstpl.BuildSearch(query)).Encode()
	w.Header().Set("HX-Push-Url", canonical)
	templ.Handler(orderstpl.Fragment(orderstpl.Table(table), orderstpl.NoticeBox(notice, true))).ServeHTTP(w, r)
}

// OrdersStats renders the statistics panel for the selected window.
func (h *Handlers) OrdersStats(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	days := adminorders.ParseDateRange(r.URL.Query().Get("date_range"))

	stats, err := h.orders.Statistics(ctx, user.Token, days)
	if err != nil {
		observability.FromContext(ctx).Warn("orders: statistics failed", zap.Int("date_range", days), zap.Error(err))
		message := adminorders.StatsFailedNotice
		var apiErr *adminorders.APIError
		if errors.As(err, &apiErr) {
			message = "Không thể tải thống kê: " + apiErr.Message
		}
		templ.Handler(orderstpl.NoticeBox(orderstpl.Notice{Message: message, Tone: "danger"}, true)).ServeHTTP(w, r)
		return
	}
	templ.Handler(orderstpl.Stats(orderstpl.BuildStats(stats))).ServeHTTP(w, r)
}

// OrderAccept accepts a pending order.
func (h *Handlers) OrderAccept(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, actionAccept)
}

// OrderCancel cancels an order. The reason comes from the htmx prompt header or
// the reason form field.
func (h *Handlers) OrderCancel(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, actionCancel)
}

// OrderStatus forces an order to the submitted status.
func (h *Handlers) OrderStatus(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, actionStatus)
}

func (h *Handlers) orderAction(w http.ResponseWriter, r *http.Request, kind actionKind) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Không thể đọc dữ liệu gửi lên.", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	logger := observability.FromContext(ctx).With(zap.String("action", kind.String()))

	// Approval is given by the browser confirm dialog; the flag proves it ran.
	actions := adminorders.NewActions(h.orders, adminorders.Approved(r.PostFormValue("confirm") == "yes"))

	var result adminorders.ActionResult
	id, err := adminorders.ParseOrderID(chi.URLParam(r, "orderID"))
	if err == nil {
		logger = logger.With(zap.Int64("order_id", id))
		switch kind {
		case actionAccept:
			result, err = actions.Accept(ctx, user.Token, id)
		case actionCancel:
			reason := custommw.HTMXInfoFromContext(ctx).Prompt
			if strings.TrimSpace(reason) == "" {
				reason = r.PostFormValue("reason")
			}
			result, err = actions.Cancel(ctx, user.Token, id, reason)
		case actionStatus:
			result, err = actions.UpdateStatus(ctx, user.Token, id, adminorders.Status(strings.TrimSpace(r.PostFormValue("status"))))
		}
	}

	notice := orderstpl.Notice{Message: result.Message, Tone: "success"}
	status := http.StatusOK
	if err != nil {
		logger.Warn("orders: action failed", zap.Error(err))
		notice = orderstpl.Notice{Message: prefixed(err, kind.fallback()), Tone: "danger"}
		status = statusFor(err)
	} else {
		logger.Info("orders: action applied", zap.String("new_status", string(result.NewStatus)))
	}

	query := searchQueryFrom(r.Form)
	if custommw.IsHTMXRequest(ctx) {
		base := custommw.BasePathFromContext(ctx)
		orders, searchErr := h.orders.Search(ctx, user.Token, query)
		errMsg := ""
		if searchErr != nil {
			logger.Warn("orders: refresh after action failed", zap.Error(searchErr))
			errMsg = prefixed(searchErr, adminorders.SearchFailedNotice)
		}
		table := orderstpl.BuildTable(base, orders, errMsg)
		templ.Handler(orderstpl.Fragment(orderstpl.Table(table), orderstpl.NoticeBox(notice, true))).ServeHTTP(w, r)
		return
	}

	page := h.buildPage(r, user, query, notice)
	templ.Handler(orderstpl.Index(h.chrome(r, ordersTitle), page), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *Handlers) buildPage(r *http.Request, user *custommw.User, query adminorders.SearchQuery, notice orderstpl.Notice) orderstpl.PageData {
	ctx := r.Context()
	base := custommw.BasePathFromContext(ctx)

	orders, err := h.orders.Search(ctx, user.Token, query)
	errMsg := ""
	if err != nil {
		observability.FromContext(ctx).Warn("orders: search failed", zap.Error(err))
		errMsg = prefixed(err, adminorders.SearchFailedNotice)
	}

	return orderstpl.PageData{
		Search:        orderstpl.BuildSearch(query),
		Table:         orderstpl.BuildTable(base, orders, errMsg),
		Notice:        notice,
		TableEndpoint: custommw.Join(base, "orders", "table"),
		StatsEndpoint: custommw.Join(base, "orders", "stats"),
	}
}

func searchQueryFrom(values url.Values) adminorders.SearchQuery {
	return adminorders.SearchQuery{
		OrderID:   strings.TrimSpace(values.Get("order_id")),
		Date:      strings.TrimSpace(values.Get("date")),
		DateRange: adminorders.ParseDateRange(values.Get("date_range")),
	}
}

// prefixed renders server messages as "Lỗi: <message>" and everything else with
// its fixed notice.
func prefixed(err error, fallback string) string {
	var apiErr *adminorders.APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return "Lỗi: " + apiErr.Message
	}
	return adminorders.Message(err, fallback)
}

func statusFor(err error) int {
	var apiErr *adminorders.APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Status >= http.StatusBadRequest {
			return apiErr.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, adminorders.ErrInvalidOrderID):
		return http.StatusNotFound
	case errors.Is(err, adminorders.ErrReasonRequired), errors.Is(err, adminorders.ErrDeclined):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
