package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joss/storefront/internal/logging"
)

// HTTPClient interface for HTTP requests (enables testing)
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Verify http.Client implements HTTPClient
var _ HTTPClient = (*http.Client)(nil)

// maxErrorBody bounds how much of a failure response is kept in StatusError.
const maxErrorBody = 200

// Client issues one request per operation against the catalog API.
type Client struct {
	baseURL string
	http    HTTPClient
	token   func() string
	log     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout sets a per-request timeout on the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithTokenSource attaches "Authorization: Bearer" when fn returns non-empty.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) {
		c.token = fn
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     logging.New("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListProducts fetches the full product list.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, "list products", http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(ctx context.Context, id int) (Product, error) {
	var p Product
	err := c.do(ctx, "get product", http.MethodGet, productPath(id), nil, &p)
	if errors.Is(err, ErrEmptyBody) || IsStatus(err, http.StatusNotFound) {
		return Product{}, fmt.Errorf("get product %d: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// CreateProduct validates in and submits it.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	var p Product
	if err := c.do(ctx, "create product", http.MethodPost, "/products", in.Normalize(), &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// UpdateProduct validates in and replaces product id with it.
func (c *Client) UpdateProduct(ctx context.Context, id int, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	var p Product
	if err := c.do(ctx, "update product", http.MethodPut, productPath(id), in.Normalize(), &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// DeleteProduct deletes product id. The response body is ignored.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	return c.do(ctx, "delete product", http.MethodDelete, productPath(id), nil, nil)
}

// ListCategories fetches the category names.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, "list categories", http.MethodGet, "/products/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Authenticate exchanges credentials for a token.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, "authenticate", http.MethodPost, "/auth/login", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("authenticate: %w", ErrNoToken)
	}
	return resp.Token, nil
}

func productPath(id int) string {
	return "/products/" + strconv.Itoa(id)
}

// do performs a single request and decodes a success body into out.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	ctx, reqID := logging.EnsureRequestID(ctx)
	log := c.log.WithContext(ctx)
	start := time.Now()
	defer func() {
		log.TimedEvent(op, start, map[string]interface{}{"method": method, "path": path}, err)
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: msg}
	}

	if out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%s: %w", op, ErrEmptyBody)
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
