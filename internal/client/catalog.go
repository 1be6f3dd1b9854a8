package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"storefront/catalog/internal/config"
	"storefront/catalog/internal/domain"
	"storefront/catalog/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

type CatalogClient interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListItems(ctx context.Context, filter domain.Filter) ([]domain.Item, error)
	Ping(ctx context.Context) error
}

// catalogClient makes a single attempt per call. Every failure comes back as
// *domain.ServiceError; a transport failure also moves later requests to the next proxy.
type catalogClient struct {
	rl            ratelimit.Limiter
	baseURL       string
	timeout       time.Duration
	proxySupplier proxy.Supplier

	mutex        sync.Mutex
	currentProxy string
	httpClients  map[string]*resty.Client // keyed by proxy URL, "" for direct
}

func NewCatalogClient(cfg config.CatalogConfig, proxySupplier proxy.Supplier) CatalogClient {
	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	c := &catalogClient{
		rl:            rl,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		timeout:       time.Duration(cfg.Timeout) * time.Second,
		proxySupplier: proxySupplier,
		httpClients:   make(map[string]*resty.Client),
	}

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			c.currentProxy = proxyURL
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	return c
}

func (c *catalogClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var body domain.CategoryList
	if err := c.getJSON(ctx, "list categories", "/categories", nil, &body); err != nil {
		return nil, err
	}

	log.Debugf("Fetched %d categories", len(body.Categories))
	return body.Categories, nil
}

func (c *catalogClient) ListItems(ctx context.Context, filter domain.Filter) ([]domain.Item, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}

	var body domain.ItemList
	if err := c.getJSON(ctx, "list items", "/items", query, &body); err != nil {
		return nil, err
	}

	log.Debugf("Fetched %d items for %+v", len(body.Items), filter)
	return body.Items, nil
}

func (c *catalogClient) Ping(ctx context.Context) error {
	var status domain.PingStatus
	if err := c.getJSON(ctx, "ping", "/ping", nil, &status); err != nil {
		return err
	}
	if !status.Connected {
		return &domain.ServiceError{Op: "ping", Err: fmt.Errorf("service reports disconnected: %s", status.Message)}
	}
	return nil
}

// errorBody is what the service sends with a non-success status
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *catalogClient) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	c.rl.Take()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var failure errorBody
	resp, err := c.httpClient().R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetForceResponseContentType("application/json").
		SetResult(out).
		SetError(&failure).
		Get(target)

	if err != nil {
		if ctx.Err() != nil {
			return &domain.ServiceError{Op: op, Err: fmt.Errorf("request cancelled: %w", ctx.Err())}
		}
		if resp != nil && resp.StatusCode() != 0 {
			// The service answered, but the body did not decode
			if resp.IsError() {
				return &domain.ServiceError{Op: op, StatusCode: resp.StatusCode(), Err: errors.New(resp.Status())}
			}
			return &domain.ServiceError{
				Op:         op,
				StatusCode: resp.StatusCode(),
				Err:        fmt.Errorf("failed to decode response: %w", err),
			}
		}
		c.rotateProxy()
		return &domain.ServiceError{Op: op, Err: fmt.Errorf("failed to fetch %s: %w", path, err)}
	}

	if resp.IsError() {
		return &domain.ServiceError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Err:        errors.New(failure.message(resp.Status())),
		}
	}

	return nil
}

func (c *catalogClient) httpClient() *resty.Client {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if client, ok := c.httpClients[c.currentProxy]; ok {
		return client
	}

	client := resty.New().
		SetTimeout(c.timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "storefront-catalog-browser/1.0")
	if c.currentProxy != "" {
		client.SetProxy(c.currentProxy)
	}

	c.httpClients[c.currentProxy] = client
	return client
}

// rotateProxy switches later requests to the next proxy in the pool. It never
// retries the failed request.
func (c *catalogClient) rotateProxy() {
	if c.proxySupplier == nil || c.proxySupplier.Len() < 2 {
		return
	}

	next := c.proxySupplier.Get()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if next != "" && next != c.currentProxy {
		log.Infof("🔄 Switching to proxy %s after a transport failure", next)
		c.currentProxy = next
	}
}

// message prefers the service's own explanation over the bare status line
func (e errorBody) message(status string) string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Message != "":
		return e.Message
	default:
		return status
	}
}
