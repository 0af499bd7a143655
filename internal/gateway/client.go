// Package gateway is the typed HTTP client for the backend of record.
// It holds no entity state; every call is a request and a decoded response.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/georgemunganga/tablepos/internal/domain"
)

const apiPrefix = "/api/v1"

// ErrUnavailable is returned by CheckHealth when the backend cannot be reached or is unhealthy.
var ErrUnavailable = errors.New("backend unavailable")

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	Menu         *Resource[domain.MenuItem]
	Categories   *Resource[domain.Category]
	Staff        *Resource[domain.Staff]
	Transactions *Resource[domain.Transaction]
	Expenses     *Resource[domain.Expense]
	Orders       *OrdersAPI
	Bills        *BillsAPI
	Customers    *CustomersAPI
	WaiterCalls  *WaiterCallsAPI
	Settings     *SettingsAPI
}

// New returns a client for baseURL. A zero timeout means 10 seconds.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
	c.Menu = newResource[domain.MenuItem](c, "/menu")
	c.Categories = newResource[domain.Category](c, "/categories")
	c.Staff = newResource[domain.Staff](c, "/staff")
	c.Transactions = newResource[domain.Transaction](c, "/transactions")
	c.Expenses = newResource[domain.Expense](c, "/expenses")
	c.Orders = &OrdersAPI{Resource: newResource[domain.Order](c, "/orders")}
	c.Bills = &BillsAPI{Resource: newResource[domain.Bill](c, "/bills")}
	c.Customers = &CustomersAPI{Resource: newResource[domain.Customer](c, "/customers")}
	c.WaiterCalls = &WaiterCallsAPI{Resource: newResource[domain.WaiterCall](c, "/waiter-calls")}
	c.Settings = &SettingsAPI{c: c}
	return c
}

// SetToken replaces the bearer token, e.g. after a login.
func (c *Client) SetToken(token string) { c.token = token }

// CheckHealth probes GET /health.
func (c *Client) CheckHealth(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &body); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnavailable, body.Status)
	}
	return nil
}

// Login exchanges staff credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	req := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return "", err
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
