package web

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/akira3175/fashionshop/internal/cartview"
	"github.com/akira3175/fashionshop/internal/checkout"
	mw "github.com/akira3175/fashionshop/internal/web/middleware"
)

// Notices of the checkout flow.
const (
	EmptyCartNotice      = "Giỏ hàng trống!"
	MissingFieldsNotice  = "Vui lòng điền đầy đủ thông tin!"
	CheckoutFailedNotice = "Đặt hàng thất bại, vui lòng thử lại!"
)

func (s *server) handleCheckoutPage(w http.ResponseWriter, r *http.Request) {
	manager := s.cartFor(w, r)
	items := manager.GetCart(r.Context())
	if len(items) == 0 {
		s.flash(r, EmptyCartNotice, "error")
		redirect(w, r, "/orders/cart/")
		return
	}
	s.writeCheckout(w, r, cartview.CheckoutPage{
		Layout: s.layout(r, manager, "Thanh toán"),
		Cart:   cartview.BuildPage(items),
	}, http.StatusOK)
}

func (s *server) handleProcessCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	manager := s.cartFor(w, r)
	items := manager.GetCart(ctx)
	form := cartview.CheckoutForm{
		Receiver: trimForm(r, "receiver"),
		Phone:    trimForm(r, "phone"),
		Address:  trimForm(r, "address"),
		Note:     trimForm(r, "note"),
	}

	if len(items) == 0 {
		s.flash(r, EmptyCartNotice, "error")
		redirect(w, r, "/orders/cart/")
		return
	}

	page := cartview.CheckoutPage{Cart: cartview.BuildPage(items), Form: form}
	if errs := validateCheckoutForm(form); len(errs) > 0 {
		page.Layout = s.layout(r, manager, "Thanh toán")
		page.Errors = errs
		s.writeCheckout(w, r, page, http.StatusUnprocessableEntity)
		return
	}

	result, err := s.checkout.ProcessCheckout(ctx, checkout.Request{
		Receiver:    form.Receiver,
		Phone:       form.Phone,
		Address:     form.Address,
		Note:        form.Note,
		Items:       manager.PrepareCheckoutData(ctx),
		TotalAmount: manager.TotalPrice(ctx),
	})
	if err != nil {
		message := CheckoutFailedNotice
		var rejected *checkout.Error
		switch {
		case errors.As(err, &rejected) && rejected.Message != "":
			message = rejected.Message
		case errors.Is(err, checkout.ErrMissingFields):
			message = MissingFieldsNotice
		case errors.Is(err, checkout.ErrEmptyCart):
			message = EmptyCartNotice
		}
		s.requestLogger(r).Warn("checkout failed", zap.Error(err))
		page.Layout = s.layout(r, manager, "Thanh toán")
		page.Errors = map[string]string{"form": message}
		s.writeCheckout(w, r, page, http.StatusBadGateway)
		return
	}

	if err := manager.ClearCart(ctx); err != nil {
		s.requestLogger(r).Warn("clear cart after checkout", zap.String("order_id", result.OrderID), zap.Error(err))
	}
	s.requestLogger(r).Info("order placed", zap.String("order_id", result.OrderID))
	message := result.Message
	if message == "" {
		message = checkout.SuccessMessage
	}
	s.flash(r, message, "success")
	redirect(w, r, "/")
}

func validateCheckoutForm(form cartview.CheckoutForm) map[string]string {
	errs := map[string]string{}
	if form.Receiver == "" {
		errs["receiver"] = "Vui lòng nhập tên người nhận"
	}
	if form.Phone == "" {
		errs["phone"] = "Vui lòng nhập số điện thoại"
	}
	if form.Address == "" {
		errs["address"] = "Vui lòng nhập địa chỉ"
	}
	if len(errs) > 0 {
		errs["form"] = MissingFieldsNotice
	}
	return errs
}

func (s *server) writeCheckout(w http.ResponseWriter, r *http.Request, page cartview.CheckoutPage, status int) {
	setHTML(w)
	if mw.IsHTMX(r.Context()) && status != http.StatusOK {
		// htmx skips swaps of error statuses by default.
		w.Header().Set("HX-Reswap", "outerHTML")
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if err := s.renderer.RenderCheckout(w, page); err != nil {
		s.requestLogger(r).Error("render checkout", zap.Error(err))
	}
}
