package orders

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestStatic(t *testing.T) *StaticService {
	t.Helper()
	return NewStaticService(WithClock(func() time.Time { return fixedNow }))
}

func orderIDs(orders []Order) []int64 {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestStaticServiceSearch(t *testing.T) {
	t.Parallel()

	svc := newTestStatic(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		query SearchQuery
		want  []int64
	}{
		{name: "default window", query: SearchQuery{}, want: []int64{1052, 1051, 1050, 1049}},
		{name: "thirty days", query: SearchQuery{DateRange: 30}, want: []int64{1052, 1051, 1050, 1049, 1048}},
		{name: "year", query: SearchQuery{DateRange: 365}, want: []int64{1052, 1051, 1050, 1049, 1048, 1047}},
		{name: "exact date", query: SearchQuery{Date: "2026-10-14"}, want: []int64{1049}},
		{name: "unparsable date disables date filter", query: SearchQuery{Date: "14/10/2026"}, want: []int64{1052, 1051, 1050, 1049, 1048, 1047}},
		{name: "id inside window", query: SearchQuery{OrderID: " 1051 "}, want: []int64{1051}},
		{name: "id outside window", query: SearchQuery{OrderID: "1048"}, want: []int64{}},
		{name: "id with wider window", query: SearchQuery{OrderID: "1048", DateRange: 30}, want: []int64{1048}},
	}
	for _, tc := range cases {
		got, err := svc.Search(ctx, "", tc.query)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, orderIDs(got), tc.name)
	}

	orders, err := svc.Search(ctx, "", SearchQuery{OrderID: "1051"})
	require.NoError(t, err)
	require.Equal(t, "Đã xác nhận", orders[0].StatusDisplay)
	require.Equal(t, float64(588000), orders[0].TotalAmount)
	require.Equal(t, "18/10/2026 16:00", orders[0].CreatedAt)
	require.Len(t, orders[0].Items, 2)
}

func TestStaticServiceSearchRejectsMalformedID(t *testing.T) {
	t.Parallel()

	_, err := newTestStatic(t).Search(context.Background(), "", SearchQuery{OrderID: "abc"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestStaticServiceStatistics(t *testing.T) {
	t.Parallel()

	svc := newTestStatic(t)
	ctx := context.Background()

	stats, err := svc.Statistics(ctx, "", 0)
	require.NoError(t, err)
	require.Equal(t, Stats{
		TotalOrders:     4,
		PendingOrders:   1,
		ConfirmedOrders: 1,
		ShippingOrders:  1,
		CompletedOrders: 1,
		TotalRevenue:    597000,
		DateRangeDays:   7,
	}, stats)

	stats, err = svc.Statistics(ctx, "", 30)
	require.NoError(t, err)
	require.Equal(t, 5, stats.TotalOrders)
	require.Equal(t, 2, stats.CompletedOrders)
	require.Equal(t, float64(1515000), stats.TotalRevenue)
	require.Equal(t, 30, stats.DateRangeDays)
}

func TestStaticServiceAccept(t *testing.T) {
	t.Parallel()

	svc := newTestStatic(t)
	ctx := context.Background()

	result, err := svc.Accept(ctx, "", 1052)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, result.NewStatus)
	require.Equal(t, "Đã xác nhận", result.StatusDisplay)
	require.Equal(t, "Đã chấp nhận đơn hàng!", result.Message)

	_, err = svc.Accept(ctx, "", 1052)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Chỉ có thể chấp nhận đơn hàng đang chờ xác nhận!", apiErr.Message)

	_, err = svc.Accept(ctx, "", 9999)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, NotFoundNotice, Message(err, "fallback"))
}

func TestStaticServiceCancel(t *testing.T) {
	t.Parallel()

	svc := newTestStatic(t)
	ctx := context.Background()

	_, err := svc.Cancel(ctx, "", 1051, "   ")
	require.ErrorIs(t, err, ErrReasonRequired)
	order, ok := svc.Order(1051)
	require.True(t, ok)
	require.Equal(t, StatusConfirmed, order.Status)

	result, err := svc.Cancel(ctx, "", 1051, " <b>Hết hàng</b> ")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, result.NewStatus)
	order, _ = svc.Order(1051)
	require.Equal(t, "[HỦY ĐƠN] Lý do: Hết hàng", order.Note)

	_, err = svc.Cancel(ctx, "", 1050, "Khách đổi ý")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Không thể hủy đơn hàng ở trạng thái này!", apiErr.Message)

	svc.Add(Order{ID: 2000, Note: "Giao giờ hành chính", Items: []OrderItem{{Name: "Áo", Size: "M", Quantity: 1, Price: 10}}}, fixedNow)
	_, err = svc.Cancel(ctx, "", 2000, "Trùng đơn & sai địa chỉ")
	require.NoError(t, err)
	order, _ = svc.Order(2000)
	require.Equal(t, "Giao giờ hành chính\n[HỦY ĐƠN] Lý do: Trùng đơn & sai địa chỉ", order.Note)
}

func TestStaticServiceUpdateStatus(t *testing.T) {
	t.Parallel()

	svc := newTestStatic(t)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, "", 1050, Status("lost"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Trạng thái không hợp lệ!", apiErr.Message)

	result, err := svc.UpdateStatus(ctx, "", 1050, StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, "Hoàn thành", result.StatusDisplay)

	stats, err := svc.Statistics(ctx, "", 7)
	require.NoError(t, err)
	require.Equal(t, 2, stats.CompletedOrders)
	require.Equal(t, float64(597000+249000), stats.TotalRevenue)
}

func TestStaticServiceWithoutSeed(t *testing.T) {
	t.Parallel()

	svc := NewStaticService(WithoutSeed())
	orders, err := svc.Search(context.Background(), "", SearchQuery{DateRange: 365})
	require.NoError(t, err)
	require.Empty(t, orders)
	require.NotNil(t, orders)
}

func TestNormalizeReason(t *testing.T) {
	t.Parallel()

	_, err := NormalizeReason("")
	require.ErrorIs(t, err, ErrReasonRequired)
	_, err = NormalizeReason("<script>alert(1)</script>")
	require.ErrorIs(t, err, ErrReasonRequired)

	got, err := NormalizeReason("  Sai <i>size</i> ")
	require.NoError(t, err)
	require.Equal(t, "Sai size", got)
}

func TestParseHelpers(t *testing.T) {
	t.Parallel()

	id, err := ParseOrderID(" 42 ")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	for _, raw := range []string{"", "0", "-1", "4x"} {
		_, err := ParseOrderID(raw)
		require.ErrorIs(t, err, ErrInvalidOrderID, raw)
	}

	require.Equal(t, 30, ParseDateRange("30"))
	require.Equal(t, DefaultDateRange, ParseDateRange(""))
	require.Equal(t, DefaultDateRange, ParseDateRange("-5"))
	require.Equal(t, DefaultDateRange, ParseDateRange("week"))
}
