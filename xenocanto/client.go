package xenocanto

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/aviary-ml/aviary/pkg/errors"
)

const (
	// DefaultBaseURL is the xeno-canto query endpoint.
	DefaultBaseURL = "https://xeno-canto.org/api/2/recordings"

	// DefaultTimeout applies to requests whose context has no deadline.
	DefaultTimeout = 30 * time.Second

	defaultUserAgent = "aviary"

	defaultCacheTTL     = 15 * time.Minute
	defaultCacheCleanup = 30 * time.Minute
)

// Client queries the xeno-canto catalog. Thread-safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	userAgent      string
	defaultTimeout time.Duration

	pages *gocache.Cache
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the query endpoint, mainly for tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the default per-request timeout applied when the caller's
// context has no deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.defaultTimeout = d
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithCacheTTL sets how long fetched query pages stay cached.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.pages = gocache.New(ttl, 2*ttl)
	}
}

// NewClient creates a catalog client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:     &http.Client{},
		baseURL:        DefaultBaseURL,
		userAgent:      defaultUserAgent,
		defaultTimeout: DefaultTimeout,
		pages:          gocache.New(defaultCacheTTL, defaultCacheCleanup),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryPage fetches one page of results for query. Pages are cached; a hit
// skips the network entirely.
func (c *Client) QueryPage(ctx context.Context, query string, page int) (*QueryPage, error) {
	if query == "" {
		return nil, errors.NewValueError("QueryPage", "empty query")
	}
	if page < 1 {
		return nil, errors.NewValueError("QueryPage", "page numbers start at 1")
	}

	cacheKey := fmt.Sprintf("%s|%d", query, page)
	if cached, ok := c.pages.Get(cacheKey); ok {
		return cached.(*QueryPage), nil
	}

	reqURL := fmt.Sprintf("%s?query=%s&page=%d", c.baseURL, url.QueryEscape(query), page)
	resp, cancel, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, errors.Wrapf(err, "xenocanto: querying page %d", page)
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("xenocanto: query returned status %d", resp.StatusCode)
	}

	var raw queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "xenocanto: decoding query response")
	}

	total, err := strconv.Atoi(raw.NumRecordings)
	if err != nil {
		return nil, errors.Wrap(err, "xenocanto: parsing numRecordings")
	}

	result := &QueryPage{
		Page:          raw.Page,
		NumPages:      raw.NumPages,
		NumRecordings: total,
		Recordings:    raw.Recordings,
	}
	c.pages.Set(cacheKey, result, gocache.DefaultExpiration)
	return result, nil
}

// Query walks every page of a query and returns all recordings.
func (c *Client) Query(ctx context.Context, query string) ([]Recording, error) {
	first, err := c.QueryPage(ctx, query, 1)
	if err != nil {
		return nil, err
	}

	recordings := make([]Recording, 0, first.NumRecordings)
	recordings = append(recordings, first.Recordings...)

	for page := 2; page <= first.NumPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "xenocanto: query canceled")
		}
		p, err := c.QueryPage(ctx, query, page)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, p.Recordings...)
	}
	return recordings, nil
}

// Download fetches the audio at rawURL and streams it to w, returning the
// number of bytes written.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	resp, cancel, err := c.get(ctx, rawURL)
	if err != nil {
		return 0, errors.Wrapf(err, "xenocanto: downloading %s", rawURL)
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Newf("xenocanto: download of %s returned status %d", rawURL, resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errors.Wrapf(err, "xenocanto: reading body of %s", rawURL)
	}
	return n, nil
}

// get issues a GET with the default timeout applied when the context carries
// no deadline, and the client User-Agent injected. The returned cancel must
// be called after the response body has been consumed.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.defaultTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.defaultTimeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return resp, cancel, nil
}
