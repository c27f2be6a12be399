package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akira3175/fashionshop/internal/cart"
)

const defaultTimeout = 8 * time.Second

var (
	// ErrEmptyCart is returned when an order is submitted without lines.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrMissingFields is returned when receiver details are incomplete.
	ErrMissingFields = errors.New("checkout: missing receiver details")
)

// Request is the order handed to the backend.
type Request struct {
	Receiver    string              `json:"receiver"`
	Phone       string              `json:"phone"`
	Address     string              `json:"address"`
	Note        string              `json:"note"`
	Items       []cart.CheckoutLine `json:"items"`
	TotalAmount float64             `json:"total_amount"`
}

// Result is the backend acknowledgement of a placed order.
type Result struct {
	OrderID string
	Message string
}

// Error carries a backend rejection. Message is shown to the shopper verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("checkout: rejected (%d): %s", e.StatusCode, e.Message)
}

// Client submits orders to the backend. With an empty base URL it accepts orders locally.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// NewClient constructs a checkout client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		now:     time.Now,
	}
}

// WithHTTPClient overrides the HTTP client; used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

// Validate checks the request the same way the backend does before it is sent.
func Validate(req Request) error {
	if strings.TrimSpace(req.Receiver) == "" || strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.Address) == "" {
		return ErrMissingFields
	}
	if len(req.Items) == 0 {
		return ErrEmptyCart
	}
	return nil
}

// ProcessCheckout posts the order to /orders/process-checkout/.
func (c *Client) ProcessCheckout(ctx context.Context, req Request) (Result, error) {
	req.Receiver = strings.TrimSpace(req.Receiver)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	req.Note = strings.TrimSpace(req.Note)
	if err := Validate(req); err != nil {
		return Result{}, err
	}
	if c == nil || c.baseURL == "" {
		return fakeResult(c.clock()), nil
	}

	endpoint, err := url.JoinPath(c.baseURL, "orders", "process-checkout/")
	if err != nil {
		return Result{}, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("checkout: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("checkout: read response: %w", err)
	}
	var out responsePayload
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode >= 400 {
			return Result{}, &Error{StatusCode: resp.StatusCode, Message: drainError(body)}
		}
		return Result{}, fmt.Errorf("checkout: decode response: %w", err)
	}
	if resp.StatusCode >= 400 || !strings.EqualFold(out.Status, "success") {
		return Result{}, &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(out.Message)}
	}
	return Result{OrderID: strings.Trim(strings.TrimSpace(string(out.OrderID)), `"`), Message: strings.TrimSpace(out.Message)}, nil
}

func (c *Client) clock() time.Time {
	if c == nil || c.now == nil {
		return time.Now()
	}
	return c.now()
}

type responsePayload struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	OrderID json.RawMessage `json:"order_id"`
}

func drainError(b []byte) string {
	if len(b) > 256 {
		b = b[:256]
	}
	return strings.TrimSpace(string(b))
}
