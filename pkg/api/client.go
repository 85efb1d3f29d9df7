package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/dematerialized-catalog/pkg/query"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	CategoriesPath    = "/clothing_items/categories"
	SubcategoriesPath = "/clothing_items/subcategories"
	ColorsPath        = "/clothing_items/colors"
	ItemsPath         = "/clothing_items/clothing_items"

	defaultTimeout = 15 * time.Second
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_api_requests_total",
		Help: "The total number of requests sent to the catalog api",
	}, []string{"endpoint"})
	apiErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_api_errors_total",
		Help: "The total number of failed catalog api requests",
	}, []string{"endpoint"})
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Url        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog api returned %d for %s", e.StatusCode, e.Url)
}

// Client talks to the clothing catalog REST API.
type Client struct {
	BaseUrl    string
	HttpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHttpClient(client *http.Client) Option {
	return func(c *Client) {
		c.HttpClient = client
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClientCredentials authenticates every request with a machine to
// machine token from the configured token endpoint.
func WithClientCredentials(cfg *clientcredentials.Config) Option {
	return func(c *Client) {
		client := cfg.Client(context.Background())
		client.Timeout = defaultTimeout
		c.HttpClient = client
	}
}

func NewClient(baseUrl string, opts ...Option) *Client {
	c := &Client{
		BaseUrl:    strings.TrimRight(baseUrl, "/"),
		HttpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OptionsPath returns the endpoint listing the options of g.
func OptionsPath(g types.Group) (string, error) {
	switch g {
	case types.Category:
		return CategoriesPath, nil
	case types.Subcategory:
		return SubcategoriesPath, nil
	case types.Color:
		return ColorsPath, nil
	}
	return "", fmt.Errorf("unknown filter group %q", g)
}

// Options fetches every selectable value of a filter group.
func (c *Client) Options(ctx context.Context, g types.Group) ([]types.FacetOption, error) {
	path, err := OptionsPath(g)
	if err != nil {
		return nil, err
	}
	var options types.OptionList
	if err := c.get(ctx, path, nil, &options); err != nil {
		return nil, err
	}
	ret := make([]types.FacetOption, 0, len(options))
	for _, o := range options {
		if o.Label() != "" {
			ret = append(ret, o)
		}
	}
	return ret, nil
}

// List fetches one listing page.
func (c *Client) List(ctx context.Context, q url.Values) (*types.ListResponse, error) {
	var res types.ListResponse
	if err := c.get(ctx, ItemsPath, q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Count runs a probe request (page 1, limit 1) and returns the number of
// matching items.
func (c *Client) Count(ctx context.Context, q url.Values) (int, error) {
	probe := query.WithPaging(query.Clone(q), 1, 1)
	res, err := c.List(ctx, probe)
	if err != nil {
		return 0, err
	}
	return res.Count(), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.BaseUrl + path
	if len(q) > 0 {
		u += "?" + query.Encode(q)
	}
	apiRequests.WithLabelValues(path).Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		apiErrors.WithLabelValues(path).Inc()
		return fmt.Errorf("error sending request to catalog api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErrors.WithLabelValues(path).Inc()
		return &StatusError{StatusCode: resp.StatusCode, Url: u}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErrors.WithLabelValues(path).Inc()
		return fmt.Errorf("error reading catalog api response: %w", err)
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		apiErrors.WithLabelValues(path).Inc()
		return fmt.Errorf("error decoding catalog api response from %s: %w", path, err)
	}
	c.logger.Debug("catalog api request", zap.String("url", u), zap.Int("status", resp.StatusCode))
	return nil
}
