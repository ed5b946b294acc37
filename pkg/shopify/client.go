package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/refundlens/internal/collector"
	"github.com/angelmondragon/refundlens/internal/orders"
	"github.com/angelmondragon/refundlens/pkg/config"
	pkgerrors "github.com/angelmondragon/refundlens/pkg/errors"
	"github.com/angelmondragon/refundlens/pkg/logger"
	"github.com/angelmondragon/refundlens/pkg/pagination"
)

const (
	accessTokenHeader = "X-Shopify-Access-Token"
	defaultAPIVersion = "2024-01"
	maxErrorBody      = 512
)

var (
	errShopDomainRequired  = errors.New("shopify shop domain is required")
	errAccessTokenRequired = errors.New("shopify access token is required")
	errLoggerRequired      = errors.New("shopify logger is required")
)

// Client fetches order listing pages from the Admin REST API.
type Client struct {
	http        *http.Client
	baseURL     string
	accessToken string
	logger      *logger.Logger
}

// Option customizes the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBaseURL points the client at an explicit origin instead of https://{shop}.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(raw), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient validates the shop credentials and builds a Client.
func NewClient(ctx context.Context, cfg config.ShopifyConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	shop := normalizeShopDomain(cfg.ShopDomain)
	if shop == "" {
		return nil, errShopDomainRequired
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errAccessTokenRequired
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = defaultAPIVersion
	}

	c := &Client{
		http:        &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:     "https://" + shop,
		accessToken: token,
		logger:      logg,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = fmt.Sprintf("%s/admin/api/%s", c.baseURL, version)

	logg.Info(logg.WithFields(ctx, map[string]any{
		"shop":        shop,
		"api_version": version,
	}), "shopify client initialized")
	return c, nil
}

type ordersResponse struct {
	Orders []orders.RawOrder `json:"orders"`
}

// FetchPage requests one page of orders.json with exactly the given parameters.
func (c *Client) FetchPage(ctx context.Context, params url.Values) (collector.Page, error) {
	if c == nil {
		return collector.Page{}, errAccessTokenRequired
	}
	endpoint := c.baseURL + "/orders.json"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return collector.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order listing request")
	}
	req.Header.Set(accessTokenHeader, c.accessToken)
	req.Header.Set("Accept", "application/json")

	c.log(ctx, "request", "list_orders", map[string]any{
		"params":       params.Encode(),
		"access_token": c.accessToken,
	})

	resp, err := c.http.Do(req)
	if err != nil {
		c.log(ctx, "error", "list_orders", map[string]any{"error": err.Error()})
		return collector.Page{}, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "order listing request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log(ctx, "error", "list_orders", map[string]any{
			"status": resp.StatusCode,
			"error":  strings.TrimSpace(string(body)),
		})
		return collector.Page{}, pkgerrors.New(
			pkgerrors.CodeUpstream,
			fmt.Sprintf("order listing returned %d", resp.StatusCode),
		).WithDetails(map[string]any{
			"status": resp.StatusCode,
			"body":   strings.TrimSpace(string(body)),
		})
	}

	var payload ordersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log(ctx, "error", "list_orders", map[string]any{"error": err.Error()})
		return collector.Page{}, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "order listing returned malformed JSON")
	}

	next, _, err := pagination.NextParams(resp.Header.Get("Link"))
	if err != nil {
		c.log(ctx, "error", "list_orders", map[string]any{"error": err.Error()})
		return collector.Page{}, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "order listing returned a malformed Link header")
	}

	c.log(ctx, "response", "list_orders", map[string]any{
		"status":   resp.StatusCode,
		"orders":   len(payload.Orders),
		"has_next": len(next) > 0,
	})
	return collector.Page{Orders: payload.Orders, Next: next}, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("shopify %s", op), errors.New(fmt.Sprint(fields["error"])))
	case "request":
		c.logger.Debug(ctx, fmt.Sprintf("shopify %s", phase))
	default:
		c.logger.Info(ctx, fmt.Sprintf("shopify %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "password", "authorization"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func normalizeShopDomain(raw string) string {
	shop := strings.TrimSpace(raw)
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	return strings.TrimRight(shop, "/")
}
