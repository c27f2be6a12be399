package orders

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	custommw "github.com/akira3175/fashionshop/internal/admin/httpserver/middleware"
	adminorders "github.com/akira3175/fashionshop/internal/admin/orders"
	"github.com/akira3175/fashionshop/internal/format"
)

// PageData represents the payload for the orders index page.
type PageData struct {
	Search        SearchState
	Table         TableData
	Stats         *StatsData
	Notice        Notice
	TableEndpoint string
	StatsEndpoint string
}

// SearchState captures the current search form values.
type SearchState struct {
	OrderID      string
	Date         string
	DateRange    int
	RangeOptions []RangeOption
}

// RangeOption is one choice of the look-back window select.
type RangeOption struct {
	Value    int
	Label    string
	Selected bool
}

// Notice is a transient message shown above the table.
type Notice struct {
	Message string
	Tone    string
}

// TableData is the orders table fragment payload.
type TableData struct {
	Rows         []Row
	EmptyMessage string
	Error        string
}

// Row is one order line in the table.
type Row struct {
	ID            int64
	Receiver      string
	Phone         string
	Address       string
	Items         []string
	Total         string
	CreatedAt     string
	Status        string
	StatusDisplay string
	StatusTone    string
	Note          string
	CanAccept     bool
	CanCancel     bool
	CanUpdate     bool
	AcceptURL     string
	CancelURL     string
	StatusURL     string
	StatusOptions []StatusOption
}

// StatusOption is one choice of the status update select.
type StatusOption struct {
	Value    string
	Label    string
	Selected bool
}

// StatsData is the formatted statistics panel.
type StatsData struct {
	Lines   []StatLine
	Revenue string
	Days    int
}

// StatLine is a labelled counter.
type StatLine struct {
	Label string
	Value string
}

// BuildSearch converts a query into form state.
func BuildSearch(query adminorders.SearchQuery) SearchState {
	days := query.DateRange
	if days <= 0 {
		days = adminorders.DefaultDateRange
	}
	state := SearchState{OrderID: query.OrderID, Date: query.Date, DateRange: days}
	for _, value := range adminorders.DateRanges {
		state.RangeOptions = append(state.RangeOptions, RangeOption{
			Value:    value,
			Label:    rangeLabel(value),
			Selected: value == days,
		})
	}
	return state
}

// BuildTable projects orders into table rows with the actions their status allows.
func BuildTable(basePath string, orders []adminorders.Order, errMsg string) TableData {
	table := TableData{Error: errMsg, EmptyMessage: adminorders.EmptyTableMessage}
	for _, o := range orders {
		id := strconv.FormatInt(o.ID, 10)
		display := o.StatusDisplay
		if display == "" {
			display = o.Status.Display()
		}
		row := Row{
			ID:            o.ID,
			Receiver:      o.Receiver,
			Phone:         o.Phone,
			Address:       o.Address,
			Total:         format.Price(o.TotalAmount),
			CreatedAt:     o.CreatedAt,
			Status:        string(o.Status),
			StatusDisplay: display,
			StatusTone:    StatusTone(o.Status),
			Note:          o.Note,
			CanAccept:     o.Status.CanAccept(),
			CanCancel:     o.Status.CanCancel(),
			AcceptURL:     custommw.Join(basePath, "orders", id, "accept"),
			CancelURL:     custommw.Join(basePath, "orders", id, "cancel"),
			StatusURL:     custommw.Join(basePath, "orders", id, "status"),
		}
		// Confirmed and shipping orders move forward through the status select.
		if o.Status == adminorders.StatusConfirmed || o.Status == adminorders.StatusShipping {
			row.CanUpdate = true
			for _, st := range []adminorders.Status{adminorders.StatusConfirmed, adminorders.StatusShipping, adminorders.StatusCompleted} {
				row.StatusOptions = append(row.StatusOptions, StatusOption{Value: string(st), Label: st.Display(), Selected: st == o.Status})
			}
		}
		for _, item := range o.Items {
			row.Items = append(row.Items, fmt.Sprintf("%s %s x %d", item.Name, item.Size, item.Quantity))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// BuildStats formats statistics for display.
func BuildStats(stats adminorders.Stats) StatsData {
	return StatsData{
		Days:    stats.DateRangeDays,
		Revenue: format.Price(stats.TotalRevenue),
		Lines: []StatLine{
			{Label: "Tổng đơn hàng", Value: format.Number(stats.TotalOrders)},
			{Label: "Chờ xác nhận", Value: format.Number(stats.PendingOrders)},
			{Label: "Đã xác nhận", Value: format.Number(stats.ConfirmedOrders)},
			{Label: "Đang giao", Value: format.Number(stats.ShippingOrders)},
			{Label: "Hoàn thành", Value: format.Number(stats.CompletedOrders)},
			{Label: "Đã hủy", Value: format.Number(stats.CancelledOrders)},
		},
	}
}

// StatusTone maps order statuses to badge tones.
func StatusTone(status adminorders.Status) string {
	switch status {
	case adminorders.StatusPending:
		return "warning"
	case adminorders.StatusConfirmed, adminorders.StatusShipping:
		return "info"
	case adminorders.StatusCompleted:
		return "success"
	case adminorders.StatusCancelled:
		return "danger"
	default:
		return "muted"
	}
}

// SearchValues encodes the search state as form values so follow-up requests
// keep the current filter.
func SearchValues(state SearchState) url.Values {
	values := url.Values{}
	if v := strings.TrimSpace(state.OrderID); v != "" {
		values.Set("order_id", v)
	}
	if v := strings.TrimSpace(state.Date); v != "" {
		values.Set("date", v)
	}
	values.Set("date_range", strconv.Itoa(state.DateRange))
	return values
}

func rangeLabel(days int) string {
	switch days {
	case 7:
		return "7 ngày qua"
	case 30:
		return "30 ngày qua"
	case 365:
		return "1 năm qua"
	default:
		return fmt.Sprintf("%d ngày qua", days)
	}
}
