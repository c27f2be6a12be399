package orders

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultDateRange is the look-back window, in days, used when a query omits one.
const DefaultDateRange = 7

// DateRanges lists the windows offered by the admin UI.
var DateRanges = []int{7, 30, 365}

// Service exposes the order operations available to staff.
type Service interface {
	// Search returns orders matching the query, newest first.
	Search(ctx context.Context, token string, query SearchQuery) ([]Order, error)

	// Statistics aggregates orders created within the last dateRange days.
	Statistics(ctx context.Context, token string, dateRange int) (Stats, error)

	// Accept moves a pending order to confirmed.
	Accept(ctx context.Context, token string, orderID int64) (ActionResult, error)

	// Cancel cancels a pending or confirmed order, recording reason on the order note.
	Cancel(ctx context.Context, token string, orderID int64, reason string) (ActionResult, error)

	// UpdateStatus forces an order to the provided status.
	UpdateStatus(ctx context.Context, token string, orderID int64, status Status) (ActionResult, error)
}

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipping  Status = "shipping"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusShipping, StatusCompleted, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Display returns the label shown to staff.
func (s Status) Display() string {
	switch s {
	case StatusPending:
		return "Chờ xác nhận"
	case StatusConfirmed:
		return "Đã xác nhận"
	case StatusShipping:
		return "Đang giao hàng"
	case StatusCompleted:
		return "Hoàn thành"
	case StatusCancelled:
		return "Đã hủy"
	default:
		return string(s)
	}
}

// CanAccept reports whether an order in status s may be accepted.
func (s Status) CanAccept() bool { return s == StatusPending }

// CanCancel reports whether an order in status s may be cancelled.
func (s Status) CanCancel() bool { return s == StatusPending || s == StatusConfirmed }

// Order is the admin projection of a placed order.
type Order struct {
	ID            int64       `json:"id"`
	Receiver      string      `json:"receiver"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address"`
	Note          string      `json:"note,omitempty"`
	TotalAmount   float64     `json:"total_amount"`
	Status        Status      `json:"status"`
	StatusDisplay string      `json:"status_display"`
	CreatedAt     string      `json:"created_at"`
	Items         []OrderItem `json:"items"`
}

// OrderItem is one purchased line of an order.
type OrderItem struct {
	Name     string  `json:"name"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Stats summarises orders created within a window.
type Stats struct {
	TotalOrders     int     `json:"total_orders"`
	PendingOrders   int     `json:"pending_orders"`
	ConfirmedOrders int     `json:"confirmed_orders"`
	ShippingOrders  int     `json:"shipping_orders"`
	CompletedOrders int     `json:"completed_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	DateRangeDays   int     `json:"date_range_days"`
}

// SearchQuery filters the order search. Date takes precedence over DateRange.
type SearchQuery struct {
	OrderID   string
	Date      string // YYYY-MM-DD
	DateRange int
}

// ActionResult is the acknowledgement returned by state-changing operations.
type ActionResult struct {
	Message       string `json:"message"`
	NewStatus     Status `json:"new_status"`
	StatusDisplay string `json:"status_display"`
}

var (
	// ErrReasonRequired is returned when a cancellation has no reason.
	ErrReasonRequired = errors.New("orders: cancel reason is required")
	// ErrDeclined is returned when the operator does not confirm an action.
	ErrDeclined = errors.New("orders: action not confirmed")
	// ErrInvalidOrderID is returned for order ids that are not positive integers.
	ErrInvalidOrderID = errors.New("orders: invalid order id")
)

// APIError carries a non-success response from the order API. Message is the
// server text and is safe to show to staff verbatim.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return "orders: api error"
	}
	return fmt.Sprintf("orders: api error (%d): %s", e.Status, e.Message)
}

// Message extracts the staff-facing text of err. API errors surface the server
// message, validation errors their fixed notice, everything else fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "":
		return apiErr.Message
	case errors.Is(err, ErrReasonRequired):
		return ReasonRequiredNotice
	case errors.Is(err, ErrInvalidOrderID):
		return NotFoundNotice
	case errors.Is(err, ErrDeclined):
		return DeclinedNotice
	default:
		return fallback
	}
}

// Staff-facing notices shared by the service implementations and the UI.
const (
	ReasonRequiredNotice = "Bạn phải nhập lý do để hủy đơn hàng!"
	NotFoundNotice       = "Không tìm thấy đơn hàng!"
	NoResultsNotice      = "Không tìm thấy đơn hàng phù hợp!"
	EmptyTableMessage    = "Không có đơn hàng nào."
	AcceptConfirm        = "Bạn có chắc chắn muốn chấp nhận đơn hàng này?"
	CancelConfirm        = "Bạn có chắc chắn muốn hủy đơn hàng này?"
	CancelReasonPrompt   = "Vui lòng nhập lý do hủy đơn hàng:"
	StatusConfirm        = "Bạn có chắc chắn muốn cập nhật trạng thái đơn hàng này?"
	DeclinedNotice       = "Thao tác chưa được xác nhận."
	SearchFailedNotice   = "Có lỗi xảy ra khi tra cứu đơn hàng!"
	StatsFailedNotice    = "Có lỗi xảy ra khi tải thống kê!"
	AcceptFailedNotice   = "Có lỗi xảy ra khi chấp nhận đơn hàng!"
	CancelFailedNotice   = "Có lỗi xảy ra khi hủy đơn hàng!"
	StatusFailedNotice   = "Có lỗi xảy ra khi cập nhật trạng thái!"
)

var reasonPolicy = bluemonday.StrictPolicy()

// NormalizeReason strips markup and surrounding space from a cancel reason.
// Entities escaped by the sanitizer are decoded again; output escaping happens at render time.
func NormalizeReason(reason string) (string, error) {
	cleaned := strings.TrimSpace(html.UnescapeString(reasonPolicy.Sanitize(reason)))
	if cleaned == "" {
		return "", ErrReasonRequired
	}
	return cleaned, nil
}

// ParseOrderID parses a positive integer order id.
func ParseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidOrderID
	}
	return id, nil
}

// ParseDateRange parses a day window; empty or invalid input yields DefaultDateRange.
func ParseDateRange(raw string) int {
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || days <= 0 {
		return DefaultDateRange
	}
	return days
}

func normalizeDateRange(days int) int {
	if days <= 0 {
		return DefaultDateRange
	}
	return days
}
