package cartview

import (
	"html/template"
	"net/url"
	"strconv"

	"github.com/akira3175/fashionshop/internal/cart"
	"github.com/akira3175/fashionshop/internal/catalog"
	"github.com/akira3175/fashionshop/internal/format"
	"github.com/akira3175/fashionshop/internal/modal"
)

// EmptyMessage is shown in place of the rows of an empty cart.
const EmptyMessage = "Giỏ hàng của bạn trống"

// RemoveConfirm is the prompt shown before a row is removed.
const RemoveConfirm = "Bạn có chắc muốn xóa sản phẩm này?"

// Layout carries data shared by every full page.
type Layout struct {
	Title          string
	CartCount      int
	Notice         string
	NoticeTone     string
	CSRFToken      string
	Categories     []catalog.Category
	ActiveCategory int
	Search         string
}

// Row is one rendered cart line.
type Row struct {
	ProductID     int
	SizeID        string
	Name          string
	SizeName      string
	Image         string
	Initial       string
	Price         float64
	PriceText     string
	Quantity      int
	LineTotal     float64
	LineTotalText string
	Path          string
}

// Page is the cart page view model, derived entirely from the stored items.
type Page struct {
	Rows            []Row
	Empty           bool
	EmptyMessage    string
	ItemCount       int
	Subtotal        float64
	SubtotalText    string
	Total           float64
	TotalText       string
	CheckoutEnabled bool
}

// CartPage is the full cart page.
type CartPage struct {
	Layout
	Cart Page
}

// ProductTile is one product of the listing.
type ProductTile struct {
	ID        int
	Name      string
	PriceText string
	Image     string
	Initial   string
}

// ProductsPage is the storefront listing.
type ProductsPage struct {
	Layout
	Tiles     []ProductTile
	Page      catalog.Page
	SizesJSON template.JS
	PrevURL   string
	NextURL   string
}

// ModalPage is the quick-view fragment.
type ModalPage struct {
	modal.View
	Description template.HTML
	CSRFToken   string
	Notice      string
	NoticeTone  string
}

// CheckoutForm holds submitted receiver details.
type CheckoutForm struct {
	Receiver string
	Phone    string
	Address  string
	Note     string
}

// CheckoutPage is the checkout form page.
type CheckoutPage struct {
	Layout
	Cart   Page
	Form   CheckoutForm
	Errors map[string]string
}

// BuildPage derives the cart view model from items.
func BuildPage(items []cart.Item) Page {
	p := Page{Rows: make([]Row, 0, len(items))}
	for _, it := range items {
		line := it.LineTotal()
		p.Rows = append(p.Rows, Row{
			ProductID:     it.ProductID,
			SizeID:        it.SizeID,
			Name:          it.ProductName,
			SizeName:      it.SizeName,
			Image:         it.Image,
			Initial:       format.Initial(it.ProductName),
			Price:         it.Price,
			PriceText:     format.Price(it.Price),
			Quantity:      it.Quantity,
			LineTotal:     line,
			LineTotalText: format.Price(line),
			Path:          ItemPath(it.ProductID, it.SizeID),
		})
		p.Subtotal += line
		p.ItemCount += it.Quantity
	}
	p.Total = p.Subtotal
	p.SubtotalText = format.Price(p.Subtotal)
	p.TotalText = format.Price(p.Total)
	p.Empty = len(p.Rows) == 0
	p.CheckoutEnabled = !p.Empty
	if p.Empty {
		p.EmptyMessage = EmptyMessage
	}
	return p
}

// BuildTiles converts catalog products to listing tiles.
func BuildTiles(products []catalog.Product) []ProductTile {
	out := make([]ProductTile, 0, len(products))
	for _, p := range products {
		out = append(out, ProductTile{
			ID:        p.ID,
			Name:      p.Name,
			PriceText: format.Price(p.Price),
			Image:     p.Image,
			Initial:   format.Initial(p.Name),
		})
	}
	return out
}

// ItemPath is the resource path of a cart line.
func ItemPath(productID int, sizeID string) string {
	return "/cart/items/" + strconv.Itoa(productID) + "/" + url.PathEscape(sizeID)
}
