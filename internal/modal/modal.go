package modal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akira3175/fashionshop/internal/cart"
	"github.com/akira3175/fashionshop/internal/catalog"
	"github.com/akira3175/fashionshop/internal/format"
)

var (
	ErrNoSize       = errors.New("modal: no size selected")
	ErrInvalidPrice = errors.New("modal: invalid price")
	ErrAddFailed    = errors.New("modal: add to cart failed")
	ErrClosed       = errors.New("modal: not open")
)

// AddedNotice is shown after a successful add.
const AddedNotice = "Đã thêm vào giỏ hàng!"

// Notice maps an AddToCart result to the message shown to the shopper.
func Notice(err error) string {
	switch {
	case err == nil:
		return AddedNotice
	case errors.Is(err, ErrNoSize):
		return "Vui lòng chọn size!"
	case errors.Is(err, ErrInvalidPrice):
		return "Giá sản phẩm không hợp lệ!"
	default:
		return "Có lỗi khi thêm vào giỏ hàng!"
	}
}

// NoSizesLabel labels the disabled placeholder option of a product without sizes.
const NoSizesLabel = "No sizes available"

// State is the modal lifecycle state.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Tile is what a product tile exposes to the modal.
type Tile struct {
	ProductID int
	Name      string
	PriceText string
	Image     string
}

// Option is one entry of the size selector.
type Option struct {
	ID       string
	Name     string
	Disabled bool
	Selected bool
}

// View is a render snapshot of the modal.
type View struct {
	State     State
	ProductID int
	Name      string
	PriceText string
	Image     string
	Options   []Option
	Quantity  int
	HasSizes  bool
}

// Controller drives the quick-view modal of one page session.
type Controller struct {
	sizes    catalog.SizeCatalog
	manager  *cart.Manager
	state    State
	tile     Tile
	options  []catalog.SizeOption
	selected string
	quantity int
}

// NewController returns a closed modal bound to the size catalog and cart manager.
func NewController(sizes catalog.SizeCatalog, manager *cart.Manager) *Controller {
	return &Controller{sizes: sizes, manager: manager, quantity: 1}
}

// Open shows the modal for tile, replacing any previous selection.
func (c *Controller) Open(tile Tile) {
	tile.Name = strings.TrimSpace(tile.Name)
	tile.PriceText = strings.TrimSpace(tile.PriceText)
	tile.Image = strings.TrimSpace(tile.Image)
	c.state = Open
	c.tile = tile
	c.options = c.sizes.Lookup(tile.ProductID)
	c.selected = ""
	c.quantity = 1
}

// Close hides the modal. The selection is kept until the next Open.
func (c *Controller) Close() {
	c.state = Closed
}

// ClickBackdrop closes the modal when the click landed outside its content.
func (c *Controller) ClickBackdrop(insideContent bool) {
	if !insideContent {
		c.Close()
	}
}

// State reports the current state.
func (c *Controller) State() State { return c.state }

// Quantity reports the selected quantity.
func (c *Controller) Quantity() int { return c.quantity }

// Increment raises the quantity by one.
func (c *Controller) Increment() { c.quantity++ }

// Decrement lowers the quantity by one, stopping at 1.
func (c *Controller) Decrement() {
	if c.quantity > 1 {
		c.quantity--
	}
}

// SetQuantityInput applies raw input from the quantity field.
func (c *Controller) SetQuantityInput(raw string) {
	c.quantity = cart.ParseQuantity(raw)
}

// SelectSize selects a size id. Unknown ids clear the selection.
func (c *Controller) SelectSize(id string) {
	id = cart.NormalizeSizeID(id)
	c.selected = ""
	for _, opt := range c.options {
		if opt.ID == id {
			c.selected = id
			return
		}
	}
}

// AddToCart validates the selection and hands the item to the cart manager. On
// success the modal closes and the quantity resets; on failure it stays open.
func (c *Controller) AddToCart(ctx context.Context) error {
	if c.state != Open {
		return ErrClosed
	}
	opt, ok := c.selectedOption()
	if !ok {
		return ErrNoSize
	}
	price, ok := format.ParsePriceText(c.tile.PriceText)
	if !ok || price <= 0 {
		return ErrInvalidPrice
	}
	err := c.manager.AddItem(ctx, cart.Item{
		ProductID:   c.tile.ProductID,
		SizeID:      opt.ID,
		ProductName: c.tile.Name,
		SizeName:    opt.Name,
		Price:       price,
		Quantity:    c.quantity,
		Image:       c.tile.Image,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAddFailed, err)
	}
	c.Close()
	c.quantity = 1
	return nil
}

// View returns a snapshot for rendering.
func (c *Controller) View() View {
	v := View{
		State:     c.state,
		ProductID: c.tile.ProductID,
		Name:      c.tile.Name,
		PriceText: c.tile.PriceText,
		Image:     c.tile.Image,
		Quantity:  c.quantity,
		HasSizes:  len(c.options) > 0,
	}
	if !v.HasSizes {
		v.Options = []Option{{Name: NoSizesLabel, Disabled: true}}
		return v
	}
	v.Options = make([]Option, 0, len(c.options))
	for _, opt := range c.options {
		v.Options = append(v.Options, Option{ID: opt.ID, Name: opt.Name, Selected: opt.ID == c.selected})
	}
	return v
}

func (c *Controller) selectedOption() (catalog.SizeOption, bool) {
	if c.selected == "" {
		return catalog.SizeOption{}, false
	}
	for _, opt := range c.options {
		if opt.ID == c.selected {
			return opt, true
		}
	}
	return catalog.SizeOption{}, false
}
