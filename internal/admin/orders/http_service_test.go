package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPServiceSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/shop/orders/api/search/", r.URL.Path)
		require.Equal(t, "1052", r.URL.Query().Get("order_id"))
		require.Equal(t, "2026-10-19", r.URL.Query().Get("date"))
		require.Equal(t, "7", r.URL.Query().Get("date_range"))
		require.Equal(t, "Bearer staff-token", r.Header.Get("Authorization"))
		require.Empty(t, r.Header.Get(CSRFHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"count":1,"orders":[{"id":1052,"receiver":"An","phone":"09","address":"HCM","total_amount":398000,"status":"pending","created_at":"19/10/2026 10:00","items":[{"name":"Áo","size":"M","quantity":2,"price":199000}]}]}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL+"/shop", srv.Client(), WithCSRFSource(StaticCSRF("csrf-1")))
	require.NoError(t, err)

	orders, err := svc.Search(context.Background(), "staff-token", SearchQuery{OrderID: " 1052 ", Date: "2026-10-19"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, int64(1052), orders[0].ID)
	require.Equal(t, "Chờ xác nhận", orders[0].StatusDisplay)
	require.Equal(t, []OrderItem{{Name: "Áo", Size: "M", Quantity: 2, Price: 199000}}, orders[0].Items)
}

func TestHTTPServiceSearchEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "30", r.URL.Query().Get("date_range"))
		_, _ = io.WriteString(w, `{"success":true,"orders":[],"count":0}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL, srv.Client())
	require.NoError(t, err)

	orders, err := svc.Search(context.Background(), "", SearchQuery{DateRange: 30})
	require.NoError(t, err)
	require.NotNil(t, orders)
	require.Empty(t, orders)
}

func TestHTTPServiceStatistics(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/api/statistics/", r.URL.Path)
		require.Equal(t, "365", r.URL.Query().Get("date_range"))
		_, _ = io.WriteString(w, `{"success":true,"stats":{"total_orders":3,"pending_orders":1,"completed_orders":2,"total_revenue":1500000,"date_range_days":365}}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL, srv.Client())
	require.NoError(t, err)

	stats, err := svc.Statistics(context.Background(), "", 365)
	require.NoError(t, err)
	require.Equal(t, Stats{TotalOrders: 3, PendingOrders: 1, CompletedOrders: 2, TotalRevenue: 1500000, DateRangeDays: 365}, stats)
}

func TestHTTPServiceAcceptSendsCSRFFromCookieJar(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders/api/1052/accept/", r.URL.Path)
		require.Equal(t, "jar-token", r.Header.Get(CSRFHeader))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"success":true,"message":"Đã chấp nhận đơn hàng!","new_status":"confirmed","status_display":"Đã xác nhận"}`)
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	jar.SetCookies(base, []*http.Cookie{{Name: CSRFCookieName, Value: "jar-token", Path: "/"}})

	client := srv.Client()
	client.Jar = jar
	svc, err := NewHTTPService(srv.URL, client)
	require.NoError(t, err)

	result, err := svc.Accept(context.Background(), "", 1052)
	require.NoError(t, err)
	require.Equal(t, ActionResult{Message: "Đã chấp nhận đơn hàng!", NewStatus: StatusConfirmed, StatusDisplay: "Đã xác nhận"}, result)
}

func TestHTTPServiceCancel(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/orders/api/7/cancel/", r.URL.Path)
		require.Equal(t, "csrf-1", r.Header.Get(CSRFHeader))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]string{"reason": "Hết hàng"}, body)
		_, _ = io.WriteString(w, `{"success":true,"message":"Đã hủy đơn hàng!","new_status":"cancelled"}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL, srv.Client(), WithCSRFSource(StaticCSRF("csrf-1")))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Cancel(ctx, "", 7, "  ")
	require.ErrorIs(t, err, ErrReasonRequired)
	require.Zero(t, calls.Load(), "no request without a reason")

	result, err := svc.Cancel(ctx, "", 7, " <em>Hết hàng</em> ")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, result.NewStatus)
	require.Equal(t, "Đã hủy", result.StatusDisplay)
	require.EqualValues(t, 1, calls.Load())
}

func TestHTTPServiceUpdateStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/api/3/update-status/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "shipping", body["status"])
		_, _ = io.WriteString(w, `{"success":true,"message":"Đã cập nhật trạng thái!","new_status":"shipping","status_display":"Đang giao hàng"}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL, srv.Client())
	require.NoError(t, err)

	result, err := svc.UpdateStatus(context.Background(), "", 3, StatusShipping)
	require.NoError(t, err)
	require.Equal(t, "Đang giao hàng", result.StatusDisplay)
}

func TestHTTPServiceSurfacesServerMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"message":"Chỉ có thể chấp nhận đơn hàng đang chờ xác nhận!"}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), "", 5)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Chỉ có thể chấp nhận đơn hàng đang chờ xác nhận!", Message(err, AcceptFailedNotice))
}

func TestHTTPServiceSuccessFalseWithOK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"invalid literal"}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = svc.Statistics(context.Background(), "", 7)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusOK, apiErr.Status)
	require.Equal(t, "invalid literal", apiErr.Message)
}

func TestHTTPServiceGenericFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>upstream down</html>")
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), "", SearchQuery{})
	require.Error(t, err)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
	require.Contains(t, err.Error(), "502")
	require.Equal(t, SearchFailedNotice, Message(err, SearchFailedNotice))

	_, err = svc.Accept(context.Background(), "", 0)
	require.ErrorIs(t, err, ErrInvalidOrderID)
}

func TestNewHTTPServiceRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPService(" ", nil)
	require.Error(t, err)
}
