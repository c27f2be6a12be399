package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// CSRFHeader is the request header the order API checks on unsafe methods.
const CSRFHeader = "X-CSRFToken"

// CSRFCookieName is the cookie holding the API's CSRF token.
const CSRFCookieName = "csrftoken"

const maxResponseBytes = 1 << 20

// HTTPClient abstracts http.Client for easier testing.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// CSRFSource supplies the token sent with unsafe requests.
type CSRFSource interface {
	CSRFToken(target *url.URL) string
}

// StaticCSRF always returns the same token.
type StaticCSRF string

// CSRFToken implements CSRFSource.
func (s StaticCSRF) CSRFToken(*url.URL) string { return string(s) }

// CookieCSRF reads the token from a cookie jar, the way a browser session would.
type CookieCSRF struct {
	Jar  http.CookieJar
	Name string
}

// CSRFToken implements CSRFSource.
func (c CookieCSRF) CSRFToken(target *url.URL) string {
	if c.Jar == nil || target == nil {
		return ""
	}
	name := c.Name
	if name == "" {
		name = CSRFCookieName
	}
	for _, cookie := range c.Jar.Cookies(target) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

// HTTPOption customises an HTTPService.
type HTTPOption func(*HTTPService)

// WithCSRFSource sets the CSRF token source for unsafe requests.
func WithCSRFSource(src CSRFSource) HTTPOption {
	return func(s *HTTPService) {
		if src != nil {
			s.csrf = src
		}
	}
}

// HTTPService implements Service by calling the order API over HTTP.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
	csrf   CSRFSource
}

// NewHTTPService constructs an HTTPService. A client carrying a cookie jar also
// becomes the CSRF source unless one is configured explicitly.
func NewHTTPService(baseURL string, client HTTPClient, opts ...HTTPOption) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("orders: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("orders: parse base URL: %w", err)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	svc := &HTTPService{base: parsed, client: client, csrf: StaticCSRF("")}
	if hc, ok := client.(*http.Client); ok && hc.Jar != nil {
		svc.csrf = CookieCSRF{Jar: hc.Jar}
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type envelope struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	Orders        []Order `json:"orders"`
	Stats         *Stats  `json:"stats"`
	NewStatus     Status  `json:"new_status"`
	StatusDisplay string  `json:"status_display"`
}

// Search implements Service.
func (s *HTTPService) Search(ctx context.Context, token string, query SearchQuery) ([]Order, error) {
	params := url.Values{}
	if id := strings.TrimSpace(query.OrderID); id != "" {
		params.Set("order_id", id)
	}
	if date := strings.TrimSpace(query.Date); date != "" {
		params.Set("date", date)
	}
	params.Set("date_range", strconv.Itoa(normalizeDateRange(query.DateRange)))

	req, err := s.newRequest(ctx, http.MethodGet, "orders/api/search/?"+params.Encode(), nil, token)
	if err != nil {
		return nil, err
	}
	env, err := s.do(req)
	if err != nil {
		return nil, fmt.Errorf("orders: search: %w", err)
	}
	orders := env.Orders
	if orders == nil {
		orders = []Order{}
	}
	for i := range orders {
		if orders[i].StatusDisplay == "" {
			orders[i].StatusDisplay = orders[i].Status.Display()
		}
	}
	return orders, nil
}

// Statistics implements Service.
func (s *HTTPService) Statistics(ctx context.Context, token string, dateRange int) (Stats, error) {
	days := normalizeDateRange(dateRange)
	req, err := s.newRequest(ctx, http.MethodGet, "orders/api/statistics/?date_range="+strconv.Itoa(days), nil, token)
	if err != nil {
		return Stats{}, err
	}
	env, err := s.do(req)
	if err != nil {
		return Stats{}, fmt.Errorf("orders: statistics: %w", err)
	}
	if env.Stats == nil {
		return Stats{}, errors.New("orders: statistics: response has no stats")
	}
	stats := *env.Stats
	if stats.DateRangeDays == 0 {
		stats.DateRangeDays = days
	}
	return stats, nil
}

// Accept implements Service.
func (s *HTTPService) Accept(ctx context.Context, token string, orderID int64) (ActionResult, error) {
	return s.action(ctx, token, orderID, "accept", nil)
}

// Cancel implements Service. The reason is validated before any request is sent.
func (s *HTTPService) Cancel(ctx context.Context, token string, orderID int64, reason string) (ActionResult, error) {
	cleaned, err := NormalizeReason(reason)
	if err != nil {
		return ActionResult{}, err
	}
	return s.action(ctx, token, orderID, "cancel", map[string]string{"reason": cleaned})
}

// UpdateStatus implements Service.
func (s *HTTPService) UpdateStatus(ctx context.Context, token string, orderID int64, status Status) (ActionResult, error) {
	return s.action(ctx, token, orderID, "update-status", map[string]string{"status": string(status)})
}

func (s *HTTPService) action(ctx context.Context, token string, orderID int64, name string, payload any) (ActionResult, error) {
	if orderID <= 0 {
		return ActionResult{}, ErrInvalidOrderID
	}
	endpoint := fmt.Sprintf("orders/api/%d/%s/", orderID, name)
	req, err := s.newJSONRequest(ctx, http.MethodPost, endpoint, payload, token)
	if err != nil {
		return ActionResult{}, err
	}
	env, err := s.do(req)
	if err != nil {
		return ActionResult{}, fmt.Errorf("orders: %s order %d: %w", name, orderID, err)
	}
	result := ActionResult{Message: env.Message, NewStatus: env.NewStatus, StatusDisplay: env.StatusDisplay}
	if result.StatusDisplay == "" && result.NewStatus != "" {
		result.StatusDisplay = result.NewStatus.Display()
	}
	return result, nil
}

func (s *HTTPService) do(req *http.Request) (envelope, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return envelope{}, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 300 {
			return envelope{}, s.errorFromBody(resp.StatusCode, body)
		}
		return envelope{}, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			return envelope{}, s.errorFromBody(resp.StatusCode, body)
		}
		return envelope{}, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return env, nil
}

func (s *HTTPService) errorFromBody(status int, body []byte) error {
	text := strings.TrimSpace(string(body))
	if text == "" || len(text) > 512 {
		text = http.StatusText(status)
	}
	return fmt.Errorf("backend error (%d): %s", status, text)
}

func (s *HTTPService) newRequest(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Request, error) {
	target := s.resolve(endpoint)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("orders: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method != http.MethodGet && method != http.MethodHead {
		if csrf := s.csrf.CSRFToken(target); csrf != "" {
			req.Header.Set(CSRFHeader, csrf)
		}
	}
	return req, nil
}

func (s *HTTPService) newJSONRequest(ctx context.Context, method, endpoint string, payload any, token string) (*http.Request, error) {
	var buf bytes.Buffer
	if payload != nil {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("orders: encode payload: %w", err)
		}
	}
	req, err := s.newRequest(ctx, method, endpoint, &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *HTTPService) resolve(endpoint string) *url.URL {
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return s.base
	}
	return s.base.ResolveReference(ref)
}
