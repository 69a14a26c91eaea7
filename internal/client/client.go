package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/pkg/errors"
)

const serviceName = "storefront-api"

// AdminCookieName is the cookie set by the admin login route
const AdminCookieName = "admin_auth"

// Client calls the storefront server API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.RWMutex
	accessToken string
	adminCookie *http.Cookie
}

// New creates a storefront API client
func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// SetAccessToken sets the bearer token sent with admin requests
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// AdminCookie returns the admin session cookie value, empty if not logged in
func (c *Client) AdminCookie() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.adminCookie == nil {
		return ""
	}
	return c.adminCookie.Value
}

// SetAdminCookie restores a previously obtained admin session cookie
func (c *Client) SetAdminCookie(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == "" {
		c.adminCookie = nil
		return
	}
	c.adminCookie = &http.Cookie{Name: AdminCookieName, Value: value}
}

// Session is an issued access token and the identity it resolves to
type Session struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        domain.User `json:"user"`
}

// ProductInput is the admin product creation payload
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
}

// MediaInput is the admin media creation payload
type MediaInput struct {
	Title   string           `json:"title"`
	Type    domain.MediaType `json:"type"`
	Src     string           `json:"src"`
	Caption *string          `json:"caption,omitempty"`
	Poster  *string          `json:"poster,omitempty"`
}

type requestOptions struct {
	bearer         bool
	cookie         bool
	idempotencyKey string
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string, opts requestOptions) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("storefront client not configured: base URL required")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if opts.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", opts.idempotencyKey)
	}

	c.mu.RLock()
	token, cookie := c.accessToken, c.adminCookie
	c.mu.RUnlock()
	if opts.bearer {
		if token == "" {
			return nil, &errors.ErrUnauthorized{Message: "No session token"}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if opts.cookie && cookie != nil {
		req.AddCookie(cookie)
	}
	return req, nil
}

// do sends the request and decodes a 2xx JSON body into out.
// Error bodies of the form {"error": "..."} become typed errors carrying that message.
func (c *Client) do(req *http.Request, out interface{}) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Storefront API request failed", zap.Error(err), zap.String("path", req.URL.Path))
		return nil, &errors.ErrUpstream{Service: serviceName, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, &errors.ErrUpstream{Service: serviceName, Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, statusError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp, fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
		}
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}, opts requestOptions) (*http.Response, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	req, err := c.newRequest(ctx, method, path, body, contentType, opts)
	if err != nil {
		return nil, err
	}
	return c.do(req, out)
}

func statusError(status int, raw []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusBadRequest:
		return &errors.ErrValidation{Message: msg}
	case http.StatusUnauthorized:
		return &errors.ErrUnauthorized{Message: msg}
	case http.StatusForbidden:
		return &errors.ErrForbidden{Message: msg}
	case http.StatusNotFound:
		return &errors.ErrNotFound{Message: msg}
	case http.StatusConflict:
		return &errors.ErrConflict{Message: msg}
	default:
		return &errors.ErrUpstream{Service: serviceName, Status: status, Message: msg}
	}
}

// ListProducts fetches the full catalog
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out struct {
		Products []domain.Product `json:"products"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/products", nil, &out, requestOptions{}); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// PlaceOrder submits a pending order. Each call carries a fresh idempotency key.
func (c *Client) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var out struct {
		Order domain.Order `json:"order"`
	}
	opts := requestOptions{idempotencyKey: uuid.NewString()}
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/orders", order, &out, opts); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// SignIn exchanges credentials for an access token and keeps it for later calls
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	in := map[string]string{"email": email, "password": password}
	var out Session
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", in, &out, requestOptions{}); err != nil {
		return nil, err
	}
	c.SetAccessToken(out.AccessToken)
	return &out, nil
}

// SignOut revokes the current token. The local token is dropped even if the call fails.
func (c *Client) SignOut(ctx context.Context) error {
	if c.AccessToken() == "" {
		return nil
	}
	_, err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil, requestOptions{bearer: true})
	c.SetAccessToken("")
	return err
}

// AdminLogin performs the username/password login and keeps the session cookie
func (c *Client) AdminLogin(ctx context.Context, username, password string) error {
	in := map[string]string{"username": username, "password": password}
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/admin/login", in, nil, requestOptions{})
	if err != nil {
		return err
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == AdminCookieName {
			c.mu.Lock()
			c.adminCookie = &http.Cookie{Name: ck.Name, Value: ck.Value}
			c.mu.Unlock()
		}
	}
	return nil
}

// AdminCheck reports whether the admin session cookie is accepted
func (c *Client) AdminCheck(ctx context.Context) (bool, error) {
	_, err := c.doJSON(ctx, http.MethodGet, "/api/admin/check", nil, nil, requestOptions{cookie: true})
	if err != nil {
		if _, ok := err.(*errors.ErrUnauthorized); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	var out struct {
		Product domain.Product `json:"product"`
	}
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/admin/products", in, &out, requestOptions{bearer: true}); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// ListOrders fetches all orders, newest first
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var out struct {
		Orders []domain.Order `json:"orders"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/admin/orders", nil, &out, requestOptions{bearer: true}); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	var out struct {
		Order domain.Order `json:"order"`
	}
	in := map[string]string{"status": string(status)}
	path := fmt.Sprintf("/api/admin/orders/%d", id)
	if _, err := c.doJSON(ctx, http.MethodPatch, path, in, &out, requestOptions{bearer: true}); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

func (c *Client) CreateMedia(ctx context.Context, in MediaInput) (*domain.Media, error) {
	var out domain.Media
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/admin/media", in, &out, requestOptions{bearer: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMedia fetches all media, newest first
func (c *Client) ListMedia(ctx context.Context) ([]domain.Media, error) {
	var out []domain.Media
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/admin/media", nil, &out, requestOptions{bearer: true}); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload sends a file to object storage through the server and returns its public URL
func (c *Client) Upload(ctx context.Context, bucket, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	path := "/api/admin/uploads/" + url.PathEscape(bucket)
	req, err := c.newRequest(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), requestOptions{bearer: true})
	if err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if _, err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
