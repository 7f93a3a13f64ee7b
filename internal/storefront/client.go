package storefront

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
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultPageSize = 50
	// maxPages bounds a listing walk when the backend misreports totalPages.
	maxPages      = 40
	pageFanout    = 4
	maxBodyBytes  = 1 << 20
	requestFailed = "request failed"
)

// Client talks to the storefront REST API.
type Client struct {
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	pageSize int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds calls whose context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithPageSize sets the page size used by AllShopAccessories.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient returns a client for the API rooted at baseURL, e.g.
// "https://shop.example.com/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		http:     http.DefaultClient,
		timeout:  defaultTimeout,
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success    *bool           `json:"success"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// GetDress fetches one dress.
func (c *Client) GetDress(ctx context.Context, token, id string) (Dress, error) {
	var d Dress
	err := c.do(ctx, http.MethodGet, "/dresses/"+url.PathEscape(id), token, nil, &d)
	return d, err
}

// ListShopAccessories fetches one page of a shop's accessories.
func (c *Client) ListShopAccessories(ctx context.Context, token, shopID string, page, limit int) (AccessoryPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	path := "/shops/" + url.PathEscape(shopID) + "/accessories?" + q.Encode()

	var p AccessoryPage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &p); err != nil {
		return AccessoryPage{}, err
	}
	if p.Page == 0 {
		p.Page = page
	}
	return p, nil
}

// AllShopAccessories walks every page of a shop's accessory listing. The
// first page tells how many remain; those are fetched concurrently and
// returned in page order.
func (c *Client) AllShopAccessories(ctx context.Context, token, shopID string) ([]Accessory, error) {
	first, err := c.ListShopAccessories(ctx, token, shopID, 1, c.pageSize)
	if err != nil {
		return nil, err
	}
	total := min(first.TotalPages, maxPages)
	if total <= 1 {
		return first.Items, nil
	}

	pages := make([][]Accessory, total)
	pages[0] = first.Items

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pageFanout)
	for n := 2; n <= total; n++ {
		g.Go(func() error {
			p, err := c.ListShopAccessories(gctx, token, shopID, n, c.pageSize)
			if err != nil {
				return fmt.Errorf("accessories page %d: %w", n, err)
			}
			pages[n-1] = p.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Accessory
	for _, items := range pages {
		out = append(out, items...)
	}
	return out, nil
}

// CreateOrder submits an order.
func (c *Client) CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (CreateOrderResult, error) {
	var res CreateOrderResult
	err := c.do(ctx, http.MethodPost, "/orders", token, req, &res)
	return res, err
}

// Deposit starts a wallet top-up and returns the payment page to open.
func (c *Client) Deposit(ctx context.Context, token string, amount decimal.Decimal) (DepositResult, error) {
	var res DepositResult
	err := c.do(ctx, http.MethodPost, "/wallet/deposit", token, DepositRequest{Amount: amount}, &res)
	return res, err
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transportError(ctx, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		msg := env.text()
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Kind: classify(resp.StatusCode, msg), Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return &APIError{Kind: KindUnknown, Status: resp.StatusCode, Message: "malformed response", Err: decodeErr}
	}
	if env.Success != nil && !*env.Success {
		status := env.StatusCode
		if status == 0 {
			status = resp.StatusCode
		}
		msg := env.text()
		if msg == "" {
			msg = requestFailed
		}
		return &APIError{Kind: classify(status, msg), Status: status, Message: msg}
	}

	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Kind: KindUnknown, Status: resp.StatusCode, Message: "malformed response data", Err: err}
	}
	return nil
}

func transportError(ctx context.Context, err error) error {
	msg := "storefront unreachable"
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		msg = "storefront request timed out"
	case errors.Is(ctx.Err(), context.Canceled):
		msg = "storefront request canceled"
	}
	return &APIError{Kind: KindTransport, Message: msg, Err: err}
}
