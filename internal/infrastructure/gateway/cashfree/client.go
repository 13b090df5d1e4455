// Package cashfree is a REST client for the Cashfree Payment Gateway API.
// Responses are decoded into loose objects with numbers kept as json.Number.
package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	APIVersion      = "2023-08-01"
	ProductionURL   = "https://api.cashfree.com/pg"
	SandboxURL      = "https://sandbox.cashfree.com/pg"
	maxErrorSnippet = 512
)

// Object is a decoded JSON object.
type Object = map[string]any

type Config struct {
	ClientID     string
	ClientSecret string
	// Production selects the live API root. BaseURL overrides both.
	Production bool
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	clientID     string
	clientSecret string
	baseURL      *url.URL
	httpClient   *http.Client
}

func New(cfg Config) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = SandboxURL
		if cfg.Production {
			raw = ProductionURL
		}
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", raw)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      base,
		httpClient:   httpClient,
	}, nil
}

// APIError is a non-2xx answer from Cashfree.
type APIError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("cashfree: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("cashfree: %s (http %d)", e.Message, e.StatusCode)
}

func (e *APIError) HTTPStatus() int { return e.StatusCode }

func (e *APIError) ErrorCode() string { return e.Code }

func (e *APIError) ErrorDetails() any {
	return map[string]any{"code": e.Code, "type": e.Type, "message": e.Message}
}

func (c *Client) CreateOrder(ctx context.Context, body Object) (Object, error) {
	var out Object
	err := c.do(ctx, http.MethodPost, "/orders", nil, body, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (Object, error) {
	var out Object
	err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, nil, &out)
	return out, err
}

// ListOrders returns the first page of orders matching query.
func (c *Client) ListOrders(ctx context.Context, query url.Values) ([]Object, error) {
	var out struct {
		Data []Object `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreateRefund(ctx context.Context, orderID string, body Object) (Object, error) {
	var out Object
	err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/refunds", nil, body, &out)
	return out, err
}

func (c *Client) GetRefund(ctx context.Context, refundID string) (Object, error) {
	var out Object
	err := c.do(ctx, http.MethodGet, "/refunds/"+url.PathEscape(refundID), nil, nil, &out)
	return out, err
}

func (c *Client) GetSettlement(ctx context.Context, settlementID string) (Object, error) {
	var out Object
	err := c.do(ctx, http.MethodGet, "/settlements/"+url.PathEscape(settlementID), nil, nil, &out)
	return out, err
}

func (c *Client) GetVirtualAccount(ctx context.Context, accountID string) (Object, error) {
	var out Object
	err := c.do(ctx, http.MethodGet, "/virtual-accounts/"+url.PathEscape(accountID), nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	// path arrives escaped; ids may contain reserved characters.
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return fmt.Errorf("cashfree build path: %w", err)
	}
	u.Path = unescaped
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cashfree encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("cashfree build request: %w", err)
	}
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-client-secret", c.clientSecret)
	req.Header.Set("x-api-version", APIVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cashfree %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cashfree read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("cashfree decode response: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status}

	var body struct {
		Code    string `json:"code"`
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		apiErr.Code = body.Code
		apiErr.Type = body.Type
		apiErr.Message = body.Message
		return apiErr
	}

	snippet := strings.TrimSpace(string(raw))
	if len(snippet) > maxErrorSnippet {
		snippet = snippet[:maxErrorSnippet]
	}
	if snippet == "" {
		snippet = http.StatusText(status)
	}
	apiErr.Message = snippet
	return apiErr
}
