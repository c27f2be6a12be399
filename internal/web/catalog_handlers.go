package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/akira3175/fashionshop/internal/cart"
	"github.com/akira3175/fashionshop/internal/cartview"
	"github.com/akira3175/fashionshop/internal/catalog"
	"github.com/akira3175/fashionshop/internal/format"
	"github.com/akira3175/fashionshop/internal/modal"
	mw "github.com/akira3175/fashionshop/internal/web/middleware"
)

func (s *server) handleProducts(w http.ResponseWriter, r *http.Request) {
	s.renderProducts(w, r, 0)
}

func (s *server) handleCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "categoryID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, err := s.catalog.Category(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.renderError(w, r, err)
		return
	}
	s.renderProducts(w, r, id)
}

func (s *server) renderProducts(w http.ResponseWriter, r *http.Request, categoryID int) {
	ctx := r.Context()
	q := r.URL.Query()
	if categoryID == 0 {
		categoryID, _ = strconv.Atoi(q.Get("category"))
	}
	page, _ := strconv.Atoi(q.Get("page"))
	search := strings.TrimSpace(q.Get("search"))

	result, err := s.catalog.Products(ctx, catalog.Query{Search: search, CategoryID: categoryID, Page: page})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	sizes, err := s.catalog.Sizes(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	sizesJSON, err := json.Marshal(sizes)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	manager := s.cartFor(w, r)
	layout := s.layout(r, manager, "Sản phẩm")
	layout.ActiveCategory = categoryID
	layout.Search = search

	data := cartview.ProductsPage{
		Layout:    layout,
		Tiles:     cartview.BuildTiles(result.Products),
		Page:      result,
		SizesJSON: template.JS(sizesJSON),
	}
	if result.HasPrev {
		data.PrevURL = pageURL(r.URL, result.Number-1)
	}
	if result.HasNext {
		data.NextURL = pageURL(r.URL, result.Number+1)
	}

	setHTML(w)
	if err := s.renderer.RenderProducts(w, data); err != nil {
		s.renderError(w, r, err)
	}
}

func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode()
}

// modalFor opens a modal controller on the product in the URL.
func (s *server) modalFor(w http.ResponseWriter, r *http.Request, productID int) (*modal.Controller, catalog.Product, error) {
	product, err := s.catalog.Product(r.Context(), productID)
	if err != nil {
		return nil, catalog.Product{}, err
	}
	sizes, err := s.catalog.Sizes(r.Context())
	if err != nil {
		return nil, catalog.Product{}, err
	}
	c := modal.NewController(sizes, s.cartFor(w, r))
	c.Open(modal.Tile{
		ProductID: product.ID,
		Name:      product.Name,
		PriceText: format.Price(product.Price),
		Image:     product.Image,
	})
	return c, product, nil
}

func (s *server) handleQuickView(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "productID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	c, product, err := s.modalFor(w, r, id)
	if err != nil {
		s.productError(w, r, err)
		return
	}
	s.writeModal(w, r, c, product, "", "")
}

// handleQuickViewUpdate re-renders the modal after a quantity or size change.
func (s *server) handleQuickViewUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "productID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	c, product, err := s.modalFor(w, r, id)
	if err != nil {
		s.productError(w, r, err)
		return
	}
	applyModalForm(c, r)
	switch r.PostFormValue("op") {
	case "inc":
		c.Increment()
	case "dec":
		c.Decrement()
	}
	s.writeModal(w, r, c, product, "", "")
}

func (s *server) handleModalClose(w http.ResponseWriter, r *http.Request) {
	setHTML(w)
	if err := s.renderer.RenderModal(w, cartview.ModalPage{}); err != nil {
		s.renderError(w, r, err)
	}
}

// handleAddItem submits the modal form to the cart.
func (s *server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := cart.ParseInt(r.PostFormValue("product_id"))
	if !ok {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid_product", "Sản phẩm không hợp lệ!")
		return
	}
	c, product, err := s.modalFor(w, r, id)
	if err != nil {
		s.productError(w, r, err)
		return
	}
	applyModalForm(c, r)

	err = c.AddToCart(r.Context())
	notice := modal.Notice(err)
	if err != nil {
		if errors.Is(err, modal.ErrAddFailed) {
			s.requestLogger(r).Warn("add to cart failed", zap.Int("product_id", id), zap.Error(err))
		}
		if !mw.IsHTMX(r.Context()) {
			s.flash(r, notice, "error")
			redirect(w, r, "/")
			return
		}
		s.writeModal(w, r, c, product, notice, "error")
		return
	}

	if !mw.IsHTMX(r.Context()) {
		s.flash(r, notice, "success")
		redirect(w, r, "/orders/cart/")
		return
	}
	s.writeModal(w, r, c, product, notice, "success")
	manager := s.cartFor(w, r)
	if err := s.renderer.RenderCount(w, manager.TotalItems(r.Context()), true); err != nil {
		s.requestLogger(r).Warn("render count", zap.Error(err))
	}
}

func applyModalForm(c *modal.Controller, r *http.Request) {
	if size := r.PostFormValue("size_id"); size != "" {
		c.SelectSize(size)
	}
	if _, ok := r.PostForm["quantity"]; ok {
		c.SetQuantityInput(r.PostFormValue("quantity"))
	}
}

func (s *server) writeModal(w http.ResponseWriter, r *http.Request, c *modal.Controller, product catalog.Product, notice, tone string) {
	data := cartview.ModalPage{
		View:       c.View(),
		CSRFToken:  s.csrfToken(r),
		Notice:     notice,
		NoticeTone: tone,
	}
	if data.State == modal.Open {
		data.Description = catalog.RenderDescription(product.Description)
	}
	setHTML(w)
	if err := s.renderer.RenderModal(w, data); err != nil {
		s.renderError(w, r, err)
	}
}

func (s *server) productError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		mw.WriteError(w, r, http.StatusNotFound, "product_not_found", "Sản phẩm không tồn tại!")
		return
	}
	s.renderError(w, r, err)
}
