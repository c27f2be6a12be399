package httpserver_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/akira3175/fashionshop/internal/admin/httpserver"
	"github.com/akira3175/fashionshop/internal/admin/httpserver/middleware"
	adminorders "github.com/akira3175/fashionshop/internal/admin/orders"
	"github.com/akira3175/fashionshop/internal/format"
	"github.com/akira3175/fashionshop/internal/testutil"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type tokenAuthenticator struct {
	Token string
}

func (t *tokenAuthenticator) Authenticate(_ *http.Request, token string) (*middleware.User, error) {
	if token != t.Token {
		return nil, middleware.NewAuthError(middleware.ReasonTokenInvalid, middleware.ErrUnauthorized)
	}
	return &middleware.User{
		UID:   "tester",
		Email: "tester@example.com",
		Token: token,
		Roles: []string{"admin"},
	}, nil
}

type harness struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	orders *adminorders.StaticService
	csrf   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		t:      t,
		orders: adminorders.NewStaticService(adminorders.WithClock(func() time.Time { return fixedNow })),
	}
	h.srv = httptest.NewServer(httpserver.NewHandler(httpserver.Config{
		BasePath:      "/admin",
		Authenticator: &tokenAuthenticator{Token: "test-token"},
		Orders:        h.orders,
		Environment:   "test",
	}))
	t.Cleanup(h.srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	h.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	res, body := h.do(http.MethodGet, "/admin/login", nil, false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := testutil.ParseHTML(t, body)
	token, ok := doc.Find(`input[name="csrf_token"]`).Attr("value")
	require.True(t, ok)
	require.NotEmpty(t, token)
	h.csrf = token
	return h
}

func (h *harness) login() {
	h.t.Helper()
	res, _ := h.do(http.MethodPost, "/admin/login", url.Values{
		"csrf_token": {h.csrf},
		"id_token":   {"test-token"},
	}, false)
	require.Equal(h.t, http.StatusSeeOther, res.StatusCode)
	require.Equal(h.t, "/admin/orders", res.Header.Get("Location"))
}

func (h *harness) do(method, path string, form url.Values, htmx bool, headers ...string) (*http.Response, []byte) {
	h.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, h.srv.URL+path, body)
	require.NoError(h.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
		req.Header.Set("X-CSRF-Token", h.csrf)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	res, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer res.Body.Close()
	payload, err := io.ReadAll(res.Body)
	require.NoError(h.t, err)
	return res, payload
}

func TestOrdersRedirectsWithoutAuth(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, _ := h.do(http.MethodGet, "/admin/orders", nil, false)
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.Equal(t, "/admin/login?next=%2Fadmin%2Forders", res.Header.Get("Location"))

	res, _ = h.do(http.MethodGet, "/admin/orders/table", nil, true)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, "/admin/login", res.Header.Get("HX-Redirect"))
}

func TestLoginRejectsUnknownToken(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.do(http.MethodPost, "/admin/login", url.Values{
		"csrf_token": {h.csrf},
		"id_token":   {"nope"},
		"next":       {"https://evil.example/admin"},
	}, false)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	doc := testutil.ParseHTML(t, body)
	require.NotEmpty(t, testutil.Text(doc, ".login-error"))
	next, _ := doc.Find(`input[name="next"]`).Attr("value")
	require.Empty(t, next)

	res, _ = h.do(http.MethodPost, "/admin/login", url.Values{"id_token": {"test-token"}}, false)
	require.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestLoginHonoursNext(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, _ := h.do(http.MethodPost, "/admin/login", url.Values{
		"csrf_token": {h.csrf},
		"id_token":   {"test-token"},
		"next":       {"/admin/orders?date_range=30"},
	}, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/admin/orders?date_range=30", res.Header.Get("Location"))

	res, _ = h.do(http.MethodGet, "/admin", nil, false)
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.Equal(t, "/admin/orders", res.Header.Get("Location"))
}

func TestOrdersPageRendersDefaultWindow(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login()

	res, body := h.do(http.MethodGet, "/admin/orders", nil, false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "no-store", res.Header.Get("Cache-Control"))

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Đơn hàng | Fashion Shop Admin", doc.Find("title").Text())
	require.Equal(t, "tester@example.com", testutil.Text(doc, ".staff"))

	raw, ok := doc.Find("body").Attr("hx-headers")
	require.True(t, ok)
	var headers map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &headers))
	require.Equal(t, h.csrf, headers["X-CSRF-Token"])

	var ids []string
	doc.Find("tr.order-row").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-order-id")
		ids = append(ids, id)
	})
	require.Equal(t, []string{"1052", "1051", "1050", "1049"}, ids)

	pending := doc.Find(`tr[data-order-id="1052"]`)
	require.Equal(t, 1, pending.Find(".btn-accept").Length())
	require.Equal(t, 1, pending.Find(".btn-interrupt").Length())
	confirm, _ := pending.Find(".btn-accept").Attr("hx-confirm")
	require.Equal(t, adminorders.AcceptConfirm, confirm)
	post, _ := pending.Find(".btn-accept").Attr("hx-post")
	require.Equal(t, "/admin/orders/1052/accept", post)

	confirmed := doc.Find(`tr[data-order-id="1051"]`)
	require.Equal(t, 0, confirmed.Find(".btn-accept").Length())
	require.Equal(t, 1, confirmed.Find(".btn-interrupt").Length())
	require.Equal(t, 1, confirmed.Find("select.status-select").Length())

	completed := doc.Find(`tr[data-order-id="1049"]`)
	require.Equal(t, 0, completed.Find("button").Length())
	require.Equal(t, "Hoàn thành", strings.TrimSpace(completed.Find(".order-status span").Text()))

	selected, _ := doc.Find(`#date-around option[selected]`).Attr("value")
	require.Equal(t, "7", selected)
}

func TestOrdersTableFragment(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login()

	res, _ := h.do(http.MethodGet, "/admin/orders/table?order_id=1051", nil, false)
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body := h.do(http.MethodGet, "/admin/orders/table?order_id=1051", nil, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "/admin/orders?date_range=7&order_id=1051", res.Header.Get("HX-Push-Url"))

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, 1, doc.Find("#orders-table").Length())
	require.Equal(t, 1, doc.Find("tr.order-row").Length())
	require.Equal(t, format.Price(588000), testutil.Text(doc, ".order-total"))
	oob, _ := doc.Find("#admin-notice").Attr("hx-swap-oob")
	require.Equal(t, "true", oob)
	require.Empty(t, testutil.Text(doc, "#admin-notice"))

	res, body = h.do(http.MethodGet, "/admin/orders/table?order_id=1048", nil, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, 0, doc.Find("tr.order-row").Length())
	require.Equal(t, adminorders.EmptyTableMessage, testutil.Text(doc, ".empty-row"))
	require.Equal(t, adminorders.NoResultsNotice, testutil.Text(doc, "#admin-notice"))

	res, body = h.do(http.MethodGet, "/admin/orders/table?order_id=abc", nil, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, "Lỗi: Mã đơn hàng không hợp lệ!", testutil.Text(doc, ".error-row"))
	require.Equal(t, 1, doc.Find("#admin-notice .notice-danger").Length())
}

func TestOrdersStatsFragment(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login()

	res, body := h.do(http.MethodGet, "/admin/orders/stats?date_range=30", nil, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, format.Price(1515000), testutil.Text(doc, ".total-statis-price"))
	require.Contains(t, testutil.Text(doc, ".total-statis"), "30 ngày qua")

	res, body = h.do(http.MethodGet, "/admin/orders/stats?date_range=abc", nil, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, format.Price(597000), testutil.Text(doc, ".total-statis-price"))
}

func TestAcceptOrder(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login()

	res, _ := h.do(http.MethodPost, "/admin/orders/1052/accept", url.Values{"confirm": {"yes"}}, false)
	require.Equal(t, http.StatusForbidden, res.StatusCode, "csrf token required")

	res, body := h.do(http.MethodPost, "/admin/orders/1052/accept", url.Values{"date_range": {"7"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, adminorders.DeclinedNotice, testutil.Text(doc, "#admin-notice"))
	order, _ := h.orders.Order(1052)
	require.Equal(t, adminorders.StatusPending, order.Status)

	res, body = h.do(http.MethodPost, "/admin/orders/1052/accept", url.Values{"confirm": {"yes"}, "date_range": {"7"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, "Đã chấp nhận đơn hàng!", testutil.Text(doc, "#admin-notice .notice-success"))
	status, _ := doc.Find(`tr[data-order-id="1052"]`).Attr("data-status")
	require.Equal(t, "confirmed", status)

	res, body = h.do(http.MethodPost, "/admin/orders/1052/accept", url.Values{"confirm": {"yes"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, "Lỗi: Chỉ có thể chấp nhận đơn hàng đang chờ xác nhận!", testutil.Text(doc, "#admin-notice"))
}

func TestAcceptWithoutHTMXRendersPage(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login()

	res, body := h.do(http.MethodPost, "/admin/orders/1049/accept", url.Values{
		"csrf_token": {h.csrf},
		"confirm":    {"yes"},
	}, false)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, 1, doc.Find("form#orders-search").Length())
	require.Equal(t, "Lỗi: Chỉ có thể chấp nhận đơn hàng đang chờ xác nhận!", testutil.Text(doc, "#admin-notice"))

	res, _ = h.do(http.MethodPost, "/admin/orders/9999/accept", url.Values{
		"csrf_token": {h.csrf},
		"confirm":    {"yes"},
	}, false)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login()

	res, body := h.do(http.MethodPost, "/admin/orders/1051/cancel", url.Values{"confirm": {"yes"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, adminorders.ReasonRequiredNotice, testutil.Text(doc, "#admin-notice"))

	res, body = h.do(http.MethodPost, "/admin/orders/1051/cancel", url.Values{"confirm": {"yes"}}, true, "HX-Prompt", "  Het hang <b>size M</b> ")
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, "Đã hủy đơn hàng!", testutil.Text(doc, "#admin-notice"))
	row := doc.Find(`tr[data-order-id="1051"]`)
	status, _ := row.Attr("data-status")
	require.Equal(t, "cancelled", status)
	require.Equal(t, "[HỦY ĐƠN] Lý do: Het hang size M", strings.TrimSpace(row.Find(".order-note").Text()))
	require.Equal(t, 0, row.Find("button").Length())

	res, body = h.do(http.MethodPost, "/admin/orders/1050/cancel", url.Values{"confirm": {"yes"}, "reason": {"Khach doi y"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, "Lỗi: Không thể hủy đơn hàng ở trạng thái này!", testutil.Text(doc, "#admin-notice"))
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login()

	res, body := h.do(http.MethodPost, "/admin/orders/1050/status", url.Values{"confirm": {"yes"}, "status": {"completed"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Đã cập nhật trạng thái!", testutil.Text(doc, "#admin-notice"))
	order, _ := h.orders.Order(1050)
	require.Equal(t, adminorders.StatusCompleted, order.Status)

	res, body = h.do(http.MethodPost, "/admin/orders/1050/status", url.Values{"confirm": {"yes"}, "status": {"lost"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, "Lỗi: Trạng thái không hợp lệ!", testutil.Text(doc, "#admin-notice"))
}

func TestLogoutClearsToken(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login()

	res, _ := h.do(http.MethodPost, "/admin/logout", url.Values{"csrf_token": {h.csrf}}, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/admin/login?status=logged_out", res.Header.Get("Location"))

	res, _ = h.do(http.MethodGet, "/admin/orders", nil, false)
	require.Equal(t, http.StatusFound, res.StatusCode)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.do(http.MethodGet, "/healthz", nil, false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "ok", string(body))
}
