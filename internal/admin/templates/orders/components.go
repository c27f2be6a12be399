package orders

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/akira3175/fashionshop/internal/admin/templates/helpers"
	"github.com/akira3175/fashionshop/internal/admin/templates/layout"
)

const (
	tableID  = "orders-table"
	statsID  = "orders-stats"
	noticeID = "admin-notice"
	searchID = "orders-search"
)

// Index renders the full orders page.
func Index(chrome layout.Chrome, page PageData) templ.Component {
	return layout.Page(chrome, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := helpers.NewWriter(w)
		hw.Raw(`<section class="orders-page"><h1>Quản lý đơn hàng</h1>`)
		hw.Component(ctx, NoticeBox(page.Notice, false))

		hw.Raw(`<form class="search-order" method="get"`)
		hw.Attr("id", searchID)
		hw.Attr("hx-get", page.TableEndpoint)
		hw.Attr("hx-target", "#"+tableID)
		hw.Raw(` hx-swap="outerHTML">`)
		hw.Raw(`<input type="text" id="id-order" name="order_id" placeholder="Mã đơn hàng"`)
		hw.Attr("value", page.Search.OrderID)
		hw.Raw(`><input type="date" id="date-order" name="date"`)
		hw.Attr("value", page.Search.Date)
		hw.Raw(`><select id="date-around" name="date_range">`)
		for _, opt := range page.Search.RangeOptions {
			hw.Raw(`<option`)
			hw.Attr("value", strconv.Itoa(opt.Value))
			if opt.Selected {
				hw.Raw(` selected`)
			}
			hw.Raw(`>`)
			hw.Text(opt.Label)
			hw.Raw(`</option>`)
		}
		hw.Raw(`</select><button type="submit">Tra cứu</button>`)
		hw.Raw(`<button type="button"`)
		hw.Attr("hx-get", page.StatsEndpoint)
		hw.Attr("hx-include", "#"+searchID)
		hw.Attr("hx-target", "#"+statsID)
		hw.Raw(` hx-swap="innerHTML">Thống kê</button></form>`)

		hw.Raw(`<div class="statistics"`)
		hw.Attr("id", statsID)
		hw.Raw(`>`)
		if page.Stats != nil {
			hw.Component(ctx, Stats(*page.Stats))
		}
		hw.Raw(`</div>`)

		hw.Component(ctx, Table(page.Table))
		hw.Raw(`</section>`)
		return hw.Err()
	}))
}

// NoticeBox renders the notice region. With oob set it is emitted as an htmx
// out-of-band swap alongside a fragment response.
func NoticeBox(notice Notice, oob bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := helpers.NewWriter(w)
		hw.Raw(`<div class="admin-notice" role="status"`)
		hw.Attr("id", noticeID)
		if oob {
			hw.Raw(` hx-swap-oob="true"`)
		}
		hw.Raw(`>`)
		if notice.Message != "" {
			hw.Raw(`<p`)
			hw.Attr("class", "notice notice-"+toneOrDefault(notice.Tone))
			hw.Raw(`>`)
			hw.Text(notice.Message)
			hw.Raw(`</p>`)
		}
		hw.Raw(`</div>`)
		return hw.Err()
	})
}

// Fragment renders components back to back.
func Fragment(parts ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, part := range parts {
			if err := part.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func toneOrDefault(tone string) string {
	if tone == "" {
		return "info"
	}
	return tone
}
