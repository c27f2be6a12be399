package cartview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akira3175/fashionshop/internal/cart"
	"github.com/akira3175/fashionshop/internal/catalog"
	"github.com/akira3175/fashionshop/internal/modal"
	"github.com/akira3175/fashionshop/internal/testutil"
)

func sampleItems() []cart.Item {
	return []cart.Item{
		{ProductID: 1, SizeID: "M", ProductName: "Áo thun", SizeName: "M", Price: 199000, Quantity: 2, Image: "/a.jpg"},
		{ProductID: 3, SizeID: "30", ProductName: "Quần jean", SizeName: "30", Price: 459000, Quantity: 1},
	}
}

func TestBuildPage(t *testing.T) {
	t.Parallel()

	p := BuildPage(sampleItems())
	require.False(t, p.Empty)
	require.True(t, p.CheckoutEnabled)
	require.Len(t, p.Rows, 2)
	require.Equal(t, float64(398000), p.Rows[0].LineTotal)
	require.Equal(t, "398.000đ", p.Rows[0].LineTotalText)
	require.Equal(t, "/cart/items/3/30", p.Rows[1].Path)
	require.Equal(t, "Q", p.Rows[1].Initial)
	require.Equal(t, float64(857000), p.Total)
	require.Equal(t, "857.000đ", p.TotalText)
	require.Equal(t, 3, p.ItemCount)

	empty := BuildPage(nil)
	require.True(t, empty.Empty)
	require.False(t, empty.CheckoutEnabled)
	require.Equal(t, EmptyMessage, empty.EmptyMessage)
	require.Equal(t, "0đ", empty.TotalText)
	require.Equal(t, "0đ", empty.SubtotalText)
}

func TestRenderCartItems(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderCartItems(&buf, BuildPage(sampleItems())))
	doc := testutil.ParseHTML(t, buf.Bytes())

	rows := doc.Find("#cart-items tr.cart-row")
	require.Equal(t, 2, rows.Length())
	require.Equal(t, "857.000đ", testutil.Text(doc, ".cart-summary .total"))
	require.Equal(t, "398.000đ", testutil.Text(doc, "tr.cart-row .line-total"))

	remove := rows.First().Find("button.remove")
	del, _ := remove.Attr("hx-delete")
	require.Equal(t, "/cart/items/1/M", del)
	confirm, _ := remove.Attr("hx-confirm")
	require.Equal(t, RemoveConfirm, confirm)

	qty, _ := rows.First().Find("input[name=quantity]").Attr("value")
	require.Equal(t, "2", qty)
	require.Equal(t, 1, doc.Find("a.checkout-btn").Length())
	require.Equal(t, 1, rows.Eq(1).Find(".placeholder").Length())
}

func TestRenderEmptyCart(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderCart(&buf, CartPage{Layout: Layout{Title: "Giỏ hàng"}, Cart: BuildPage(nil)}))
	doc := testutil.ParseHTML(t, buf.Bytes())

	require.Equal(t, EmptyMessage, testutil.Text(doc, ".cart-empty"))
	require.Zero(t, doc.Find("tr.cart-row").Length())
	_, disabled := doc.Find("button.checkout-btn").Attr("disabled")
	require.True(t, disabled)
	require.Equal(t, "0đ", testutil.Text(doc, ".cart-summary .total"))
	_, hidden := doc.Find("#cart-count").Attr("hidden")
	require.True(t, hidden)
}

func TestRenderCount(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderCount(&buf, 4, true))
	doc := testutil.ParseHTML(t, buf.Bytes())

	badge := doc.Find("#cart-count")
	require.Equal(t, "4", badge.Text())
	require.True(t, badge.HasClass("visible"))
	oob, _ := badge.Attr("hx-swap-oob")
	require.Equal(t, "true", oob)
}

func TestRenderModal(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	require.NoError(t, err)

	c := modal.NewController(catalog.SizeCatalog{1: {{ID: "2", Name: "M"}}}, nil)
	c.Open(modal.Tile{ProductID: 1, Name: "Áo thun", PriceText: "199.000đ"})
	c.SelectSize("2")

	var buf bytes.Buffer
	require.NoError(t, r.RenderModal(&buf, ModalPage{View: c.View(), Description: catalog.RenderDescription("**Mềm**")}))
	doc := testutil.ParseHTML(t, buf.Bytes())

	require.True(t, doc.Find("#product-modal").HasClass("open"))
	require.Equal(t, "Áo thun", testutil.Text(doc, ".modal-name"))
	selected, _ := doc.Find("select[name=size_id] option[selected]").Attr("value")
	require.Equal(t, "2", selected)
	require.Equal(t, "Mềm", testutil.Text(doc, ".modal-description strong"))

	c.Open(modal.Tile{ProductID: 9, Name: "Nón"})
	buf.Reset()
	require.NoError(t, r.RenderModal(&buf, ModalPage{View: c.View()}))
	doc = testutil.ParseHTML(t, buf.Bytes())
	option := doc.Find("select[name=size_id] option")
	require.Equal(t, 1, option.Length())
	require.Equal(t, modal.NoSizesLabel, option.Text())
	_, disabled := option.Attr("disabled")
	require.True(t, disabled)
}

func TestRenderProducts(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	require.NoError(t, err)

	products := []catalog.Product{{ID: 1, Name: "Áo", Price: 199000}}

	var buf bytes.Buffer
	require.NoError(t, r.RenderProducts(&buf, ProductsPage{
		Layout:    Layout{CartCount: 2, Categories: []catalog.Category{{ID: 1, Name: "Áo thun"}}, ActiveCategory: 1},
		Tiles:     BuildTiles(products),
		Page:      catalog.Page{Products: products, Number: 1, TotalPages: 1, Total: 1},
		SizesJSON: "[]",
	}))
	doc := testutil.ParseHTML(t, buf.Bytes())

	require.Equal(t, 1, doc.Find(".product-tile").Length())
	require.Equal(t, "199.000đ", testutil.Text(doc, ".product-price"))
	require.Equal(t, "2", testutil.Text(doc, "#cart-count"))
	require.True(t, doc.Find(".categories a[href='/category/1/']").HasClass("active"))
	require.Equal(t, "[]", testutil.Text(doc, "#sizes-data"))
}

func TestRenderCheckoutErrors(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderCheckout(&buf, CheckoutPage{
		Cart:   BuildPage(sampleItems()),
		Form:   CheckoutForm{Receiver: "An"},
		Errors: map[string]string{"phone": "Vui lòng nhập số điện thoại"},
	}))
	doc := testutil.ParseHTML(t, buf.Bytes())

	require.Equal(t, "Vui lòng nhập số điện thoại", testutil.Text(doc, "p.error[data-field=phone]"))
	v, _ := doc.Find("input[name=receiver]").Attr("value")
	require.Equal(t, "An", v)
	require.Equal(t, 2, doc.Find(".checkout-lines li").Length())
}
