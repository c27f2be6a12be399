package orders

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/akira3175/fashionshop/internal/format"
)

// StaticService keeps orders in memory and applies the same rules as the order
// API. It backs local development and tests.
type StaticService struct {
	mu     sync.Mutex
	now    func() time.Time
	seed   bool
	orders []record
}

type record struct {
	order   Order
	created time.Time
}

// StaticOption customises a StaticService.
type StaticOption func(*StaticService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) StaticOption {
	return func(s *StaticService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithoutSeed starts the service with no orders.
func WithoutSeed() StaticOption {
	return func(s *StaticService) {
		s.seed = false
	}
}

// NewStaticService returns a StaticService populated with representative orders.
func NewStaticService(opts ...StaticOption) *StaticService {
	s := &StaticService{now: time.Now, seed: true}
	for _, opt := range opts {
		opt(s)
	}
	if !s.seed {
		return s
	}

	now := s.now()
	seed := []struct {
		ago   time.Duration
		order Order
	}{
		{2 * time.Hour, Order{ID: 1052, Receiver: "Nguyễn Văn An", Phone: "0901234567", Address: "12 Lê Lợi, Quận 1, TP.HCM", Status: StatusPending,
			Items: []OrderItem{{Name: "Áo thun basic trắng", Size: "M", Quantity: 2, Price: 199000}}}},
		{20 * time.Hour, Order{ID: 1051, Receiver: "Trần Thị Bình", Phone: "0912345678", Address: "45 Trần Phú, Hà Đông, Hà Nội", Status: StatusConfirmed,
			Items: []OrderItem{{Name: "Quần jean slim xanh", Size: "30", Quantity: 1, Price: 459000}, {Name: "Nón lưỡi trai", Size: "Free", Quantity: 1, Price: 129000}}}},
		{3 * 24 * time.Hour, Order{ID: 1050, Receiver: "Lê Minh Châu", Phone: "0987654321", Address: "8 Nguyễn Huệ, Huế", Status: StatusShipping,
			Items: []OrderItem{{Name: "Áo thun oversize đen", Size: "L", Quantity: 1, Price: 249000}}}},
		{5 * 24 * time.Hour, Order{ID: 1049, Receiver: "Phạm Quốc Dũng", Phone: "0934567890", Address: "101 Bạch Đằng, Đà Nẵng", Status: StatusCompleted,
			Items: []OrderItem{{Name: "Áo thun basic trắng", Size: "S", Quantity: 3, Price: 199000}}}},
		{12 * 24 * time.Hour, Order{ID: 1048, Receiver: "Hoàng Thu Hà", Phone: "0976543210", Address: "22 Hai Bà Trưng, Cần Thơ", Status: StatusCompleted,
			Items: []OrderItem{{Name: "Quần jean slim xanh", Size: "29", Quantity: 2, Price: 459000}}}},
		{40 * 24 * time.Hour, Order{ID: 1047, Receiver: "Võ Thanh Em", Phone: "0945678901", Address: "5 Lý Thường Kiệt, Vũng Tàu", Status: StatusCancelled, Note: "[HỦY ĐƠN] Lý do: Khách đổi ý",
			Items: []OrderItem{{Name: "Nón lưỡi trai", Size: "Free", Quantity: 1, Price: 129000}}}},
	}
	for _, entry := range seed {
		s.Add(entry.order, now.Add(-entry.ago))
	}
	return s
}

// Add stores order as created at createdAt. Totals and display fields are derived
// from the order items when omitted.
func (s *StaticService) Add(order Order, createdAt time.Time) {
	if order.TotalAmount == 0 {
		for _, item := range order.Items {
			order.TotalAmount += item.Price * float64(item.Quantity)
		}
	}
	if order.Status == "" {
		order.Status = StatusPending
	}
	order.StatusDisplay = order.Status.Display()
	order.CreatedAt = format.OrderTime(createdAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, record{order: order, created: createdAt})
}

// Order returns a copy of the stored order.
func (s *StaticService) Order(id int64) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(id); idx >= 0 {
		return cloneOrder(s.orders[idx].order), true
	}
	return Order{}, false
}

// Search implements Service.
func (s *StaticService) Search(_ context.Context, _ string, query SearchQuery) ([]Order, error) {
	var (
		filterID bool
		id       int64
	)
	if raw := strings.TrimSpace(query.OrderID); raw != "" {
		parsed, err := ParseOrderID(raw)
		if err != nil {
			return nil, &APIError{Status: http.StatusBadRequest, Message: "Mã đơn hàng không hợp lệ!"}
		}
		filterID, id = true, parsed
	}

	now := s.now()
	var match func(time.Time) bool
	if raw := strings.TrimSpace(query.Date); raw != "" {
		// An unparsable date disables date filtering entirely.
		if day, err := time.ParseInLocation("2006-01-02", raw, now.Location()); err == nil {
			match = func(created time.Time) bool {
				y1, m1, d1 := created.In(now.Location()).Date()
				y2, m2, d2 := day.Date()
				return y1 == y2 && m1 == m2 && d1 == d2
			}
		}
	} else {
		start := windowStart(now, query.DateRange)
		match = func(created time.Time) bool { return !created.Before(start) }
	}

	s.mu.Lock()
	matched := make([]record, 0, len(s.orders))
	for _, rec := range s.orders {
		if filterID && rec.order.ID != id {
			continue
		}
		if match != nil && !match(rec.created) {
			continue
		}
		matched = append(matched, record{order: cloneOrder(rec.order), created: rec.created})
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].created.After(matched[j].created) })
	out := make([]Order, 0, len(matched))
	for _, rec := range matched {
		out = append(out, rec.order)
	}
	return out, nil
}

// Statistics implements Service. Revenue only counts completed orders.
func (s *StaticService) Statistics(_ context.Context, _ string, dateRange int) (Stats, error) {
	days := normalizeDateRange(dateRange)
	start := windowStart(s.now(), days)
	stats := Stats{DateRangeDays: days}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.orders {
		if rec.created.Before(start) {
			continue
		}
		stats.TotalOrders++
		switch rec.order.Status {
		case StatusPending:
			stats.PendingOrders++
		case StatusConfirmed:
			stats.ConfirmedOrders++
		case StatusShipping:
			stats.ShippingOrders++
		case StatusCompleted:
			stats.CompletedOrders++
			stats.TotalRevenue += rec.order.TotalAmount
		case StatusCancelled:
			stats.CancelledOrders++
		}
	}
	return stats, nil
}

// Accept implements Service.
func (s *StaticService) Accept(_ context.Context, _ string, orderID int64) (ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(orderID)
	if idx < 0 {
		return ActionResult{}, &APIError{Status: http.StatusNotFound, Message: NotFoundNotice}
	}
	order := &s.orders[idx].order
	if !order.Status.CanAccept() {
		return ActionResult{}, &APIError{Status: http.StatusBadRequest, Message: "Chỉ có thể chấp nhận đơn hàng đang chờ xác nhận!"}
	}
	setStatus(order, StatusConfirmed)
	return ActionResult{Message: "Đã chấp nhận đơn hàng!", NewStatus: order.Status, StatusDisplay: order.StatusDisplay}, nil
}

// Cancel implements Service.
func (s *StaticService) Cancel(_ context.Context, _ string, orderID int64, reason string) (ActionResult, error) {
	cleaned, err := NormalizeReason(reason)
	if err != nil {
		return ActionResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(orderID)
	if idx < 0 {
		return ActionResult{}, &APIError{Status: http.StatusNotFound, Message: NotFoundNotice}
	}
	order := &s.orders[idx].order
	if !order.Status.CanCancel() {
		return ActionResult{}, &APIError{Status: http.StatusBadRequest, Message: "Không thể hủy đơn hàng ở trạng thái này!"}
	}
	line := "[HỦY ĐƠN] Lý do: " + cleaned
	if order.Note != "" {
		order.Note += "\n" + line
	} else {
		order.Note = line
	}
	setStatus(order, StatusCancelled)
	return ActionResult{Message: "Đã hủy đơn hàng!", NewStatus: order.Status, StatusDisplay: order.StatusDisplay}, nil
}

// UpdateStatus implements Service.
func (s *StaticService) UpdateStatus(_ context.Context, _ string, orderID int64, status Status) (ActionResult, error) {
	if !status.Valid() {
		return ActionResult{}, &APIError{Status: http.StatusBadRequest, Message: "Trạng thái không hợp lệ!"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(orderID)
	if idx < 0 {
		return ActionResult{}, &APIError{Status: http.StatusNotFound, Message: NotFoundNotice}
	}
	order := &s.orders[idx].order
	setStatus(order, status)
	return ActionResult{Message: "Đã cập nhật trạng thái!", NewStatus: order.Status, StatusDisplay: order.StatusDisplay}, nil
}

func (s *StaticService) indexOf(id int64) int {
	for i, rec := range s.orders {
		if rec.order.ID == id {
			return i
		}
	}
	return -1
}

func setStatus(order *Order, status Status) {
	order.Status = status
	order.StatusDisplay = status.Display()
}

func windowStart(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(normalizeDateRange(days)) * 24 * time.Hour)
}

func cloneOrder(order Order) Order {
	order.Items = append([]OrderItem(nil), order.Items...)
	return order
}
