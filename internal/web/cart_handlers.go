package web

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/akira3175/fashionshop/internal/cart"
	"github.com/akira3175/fashionshop/internal/cartview"
	mw "github.com/akira3175/fashionshop/internal/web/middleware"
)

// SaveFailedMessage is shown when the cart could not be written.
const SaveFailedMessage = "Có lỗi khi cập nhật giỏ hàng!"

func (s *server) handleCartPage(w http.ResponseWriter, r *http.Request) {
	manager := s.cartFor(w, r)
	data := cartview.CartPage{
		Layout: s.layout(r, manager, "Giỏ hàng"),
		Cart:   cartview.BuildPage(manager.GetCart(r.Context())),
	}
	setHTML(w)
	if err := s.renderer.RenderCart(w, data); err != nil {
		s.renderError(w, r, err)
	}
}

func (s *server) handleCartItems(w http.ResponseWriter, r *http.Request) {
	s.writeCartItems(w, r, s.cartFor(w, r))
}

func (s *server) handleCartCount(w http.ResponseWriter, r *http.Request) {
	manager := s.cartFor(w, r)
	setHTML(w)
	if err := s.renderer.RenderCount(w, manager.TotalItems(r.Context()), false); err != nil {
		s.renderError(w, r, err)
	}
}

func (s *server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	productID, sizeID, ok := lineKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	manager := s.cartFor(w, r)
	err := manager.UpdateQuantityInput(r.Context(), productID, sizeID, r.PostFormValue("quantity"))
	s.afterMutation(w, r, manager, err)
}

func (s *server) handleChangeQuantity(w http.ResponseWriter, r *http.Request) {
	productID, sizeID, ok := lineKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	delta, ok := cart.ParseInt(r.PostFormValue("delta"))
	if !ok {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid_delta", "invalid quantity change")
		return
	}
	manager := s.cartFor(w, r)
	err := manager.ChangeQuantity(r.Context(), productID, sizeID, delta)
	s.afterMutation(w, r, manager, err)
}

func (s *server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, sizeID, ok := lineKey(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	manager := s.cartFor(w, r)
	err := manager.RemoveItem(r.Context(), productID, sizeID)
	s.afterMutation(w, r, manager, err)
}

func (s *server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	manager := s.cartFor(w, r)
	err := manager.ClearCart(r.Context())
	s.afterMutation(w, r, manager, err)
}

// afterMutation re-renders the whole cart from storage after any change.
func (s *server) afterMutation(w http.ResponseWriter, r *http.Request, manager *cart.Manager, err error) {
	if err != nil {
		s.requestLogger(r).Warn("cart mutation failed", zap.Error(err))
		if errors.Is(err, cart.ErrSaveFailed) {
			mw.WriteError(w, r, http.StatusInsufficientStorage, "cart_save_failed", SaveFailedMessage)
			return
		}
		mw.WriteError(w, r, http.StatusInternalServerError, "cart_error", SaveFailedMessage)
		return
	}
	if !mw.IsHTMX(r.Context()) {
		redirect(w, r, "/orders/cart/")
		return
	}
	s.writeCartItems(w, r, manager)
	if err := s.renderer.RenderCount(w, manager.TotalItems(r.Context()), true); err != nil {
		s.requestLogger(r).Warn("render count", zap.Error(err))
	}
}

func (s *server) writeCartItems(w http.ResponseWriter, r *http.Request, manager *cart.Manager) {
	setHTML(w)
	if err := s.renderer.RenderCartItems(w, cartview.BuildPage(manager.GetCart(r.Context()))); err != nil {
		s.renderError(w, r, err)
	}
}

func trimForm(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}
