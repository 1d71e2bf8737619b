// Package marketplace provides a client for the GitHub Marketplace model
// listing endpoint.
package marketplace

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RawModel is one upstream listing entry prior to normalization. The
// upstream schema is loose, so entries are kept as untyped maps until the
// normalizer applies the canonical coercion rules.
type RawModel map[string]any

// ListingPage is one page of upstream results plus its continuation signal.
type ListingPage struct {
	Results     []RawModel
	NextPageURL string
	HasNextPage bool
}

// Client defines the marketplace listing operations.
type Client interface {
	// FetchPage retrieves one listing page. family optionally narrows the
	// listing upstream; page numbering starts at 1.
	FetchPage(ctx context.Context, page int, family string) (*ListingPage, error)
}

// PageCache is the response cache consulted before any network call.
// Satisfied by *cache.Cache.
type PageCache interface {
	Get(rawURL string, params url.Values) ([]byte, bool)
	Put(rawURL string, params url.Values, body []byte) error
}

// Option configures the marketplace client.
type Option func(*httpClient)

// WithBaseURL sets a custom listing base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithPageSize sets the expected page size used to infer a continuation
// when the upstream omits next_page_url.
func WithPageSize(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit paces real network calls at rps requests per second.
// Cache hits are not rate limited.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithCache attaches a response cache. Without one every FetchPage hits the
// network.
func WithCache(pc PageCache) Option {
	return func(c *httpClient) {
		c.cache = pc
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	pageSize  int
	http      *http.Client
	cache     PageCache
	limiter   *rate.Limiter
}

// DefaultBaseURL is the fixed upstream listing endpoint.
const DefaultBaseURL = "https://github.com/marketplace"

// defaultPageSize is how many entries the upstream returns per full page.
const defaultPageSize = 20

// NewClient creates a marketplace listing client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   DefaultBaseURL,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0",
		pageSize:  defaultPageSize,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listingResponse matches the upstream page document.
type listingResponse struct {
	Results     []RawModel `json:"results"`
	NextPageURL string     `json:"next_page_url"`
}

func (c *httpClient) params(page int, family string) url.Values {
	params := url.Values{}
	params.Set("type", "models")
	params.Set("page", strconv.Itoa(page))
	if family != "" {
		params.Set("model_family", family)
	}
	return params
}

func (c *httpClient) FetchPage(ctx context.Context, page int, family string) (*ListingPage, error) {
	params := c.params(page, family)

	if c.cache != nil {
		if body, ok := c.cache.Get(c.baseURL, params); ok {
			lp, err := c.decodePage(body)
			if err == nil {
				zap.L().Debug("marketplace: using cached page",
					zap.Int("page", page),
					zap.Int("results", len(lp.Results)),
				)
				return lp, nil
			}
			// An undecodable entry is treated as a miss and refetched.
			zap.L().Warn("marketplace: discarding corrupt cache entry",
				zap.Int("page", page),
				zap.Error(err),
			)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "marketplace: rate limiter wait")
		}
	}

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "marketplace: create request for page %d", page)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "marketplace: fetch page %d", page)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "marketplace: read page %d body", page)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("marketplace: page %d: unexpected status %d", page, resp.StatusCode)
	}

	lp, err := c.decodePage(body)
	if err != nil {
		return nil, eris.Wrapf(err, "marketplace: page %d", page)
	}

	if c.cache != nil {
		if err := c.cache.Put(c.baseURL, params, body); err != nil {
			zap.L().Warn("marketplace: failed to cache page",
				zap.Int("page", page),
				zap.Error(err),
			)
		}
	}

	return lp, nil
}

// decodePage parses a page body and derives the continuation signal: an
// explicit next_page_url, or a full page implying more results remain.
func (c *httpClient) decodePage(body []byte) (*ListingPage, error) {
	var doc listingResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, eris.Wrap(err, "unmarshal listing page")
	}
	return &ListingPage{
		Results:     doc.Results,
		NextPageURL: doc.NextPageURL,
		HasNextPage: doc.NextPageURL != "" || len(doc.Results) == c.pageSize,
	}, nil
}
