package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akira3175/fashionshop/internal/cart"
)

func validRequest() Request {
	return Request{
		Receiver:    " Nguyễn An ",
		Phone:       "0900000000",
		Address:     "1 Lê Lợi, Q1",
		Items:       []cart.CheckoutLine{{ProductID: 1, SizeID: "2", Quantity: 3}},
		TotalAmount: 597000,
	}
}

func TestProcessCheckoutPostsOrder(t *testing.T) {
	t.Parallel()

	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders/process-checkout/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"success","message":"Đặt hàng thành công!","order_id":42}`))
	}))
	t.Cleanup(srv.Close)

	res, err := NewClient(srv.URL+"/").ProcessCheckout(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "42", res.OrderID)
	require.Equal(t, "Đặt hàng thành công!", res.Message)

	require.Equal(t, "Nguyễn An", got.Receiver)
	require.Equal(t, []cart.CheckoutLine{{ProductID: 1, SizeID: "2", Quantity: 3}}, got.Items)
	require.Equal(t, float64(597000), got.TotalAmount)
}

func TestProcessCheckoutRejection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","message":"Sản phẩm Áo (Size M) không đủ số lượng! Còn 1 sản phẩm."}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL).ProcessCheckout(context.Background(), validRequest())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "không đủ số lượng")
}

func TestProcessCheckoutValidation(t *testing.T) {
	t.Parallel()

	c := NewClient("")
	req := validRequest()
	req.Phone = "  "
	_, err := c.ProcessCheckout(context.Background(), req)
	require.ErrorIs(t, err, ErrMissingFields)

	req = validRequest()
	req.Items = nil
	_, err = c.ProcessCheckout(context.Background(), req)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestProcessCheckoutWithoutBackend(t *testing.T) {
	t.Parallel()

	res, err := NewClient("").ProcessCheckout(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotEmpty(t, res.OrderID)
	require.Equal(t, SuccessMessage, res.Message)
}
