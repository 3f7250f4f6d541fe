package canvas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	apiPath         = "/api/v1"
	defaultPerPage  = 100
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 32 << 20
	defaultMaxPages = 500
)

// Recorder receives upstream call telemetry. Status is 0 for transport failures.
type Recorder interface {
	ObserveUpstream(operation string, status int, duration time.Duration)
	SetBreakerState(name string, state string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveUpstream(string, int, time.Duration) {}
func (nopRecorder) SetBreakerState(string, string)             {}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	PerPage    int
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Breaker    *gobreaker.CircuitBreaker[*page]
	Recorder   Recorder
	// MaxPages caps how many pages one list call follows.
	MaxPages int
}

// Client talks to one Canvas instance with one access token.
type Client struct {
	baseURL    string
	apiKey     string
	perPage    int
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*page]
	recorder   Recorder
	maxPages   int
}

var _ API = (*Client)(nil)

// page is one upstream response body plus the Link rel="next" target.
type page struct {
	body []byte
	next string
}

// NewClient validates the base URL and builds a client.
func NewClient(opts Options) (*Client, error) {
	base, err := NormalizeBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("canvas api key is required")
	}
	if opts.PerPage <= 0 {
		opts.PerPage = defaultPerPage
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	return &Client{
		baseURL:    base,
		apiKey:     opts.APIKey,
		perPage:    opts.PerPage,
		httpClient: opts.HTTPClient,
		limiter:    opts.Limiter,
		breaker:    opts.Breaker,
		recorder:   opts.Recorder,
		maxPages:   opts.MaxPages,
	}, nil
}

// NormalizeBaseURL strips trailing slashes and a trailing /api/v1 from raw.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("canvas base url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse canvas base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("canvas base url %q must be http or https", raw)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("canvas base url %q has no host", raw)
	}
	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, apiPath)
	return parsed.Scheme + "://" + parsed.Host + path, nil
}

// BaseURL returns the normalized instance URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + apiPath + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// getOne fetches a single object into dest.
func (c *Client) getOne(ctx context.Context, operation, path string, query url.Values, dest interface{}) error {
	p, err := c.fetch(ctx, operation, c.endpoint(path, query))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(p.body, dest); err != nil {
		return fmt.Errorf("decode canvas %s: %w", operation, err)
	}
	return nil
}

// getAll walks every page of a list endpoint, following Link rel="next". A
// next link pointing away from the instance, or more pages than the client
// allows, fails the whole call rather than returning a partial list.
func getAll[T any](ctx context.Context, c *Client, operation, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(c.perPage))

	items := make([]T, 0)
	next := c.endpoint(path, query)
	for pages := 0; next != ""; pages++ {
		if pages == c.maxPages {
			return nil, fmt.Errorf("canvas %s: %w after %d pages", operation, ErrPageLimit, c.maxPages)
		}
		p, err := c.fetch(ctx, operation, next)
		if err != nil {
			return nil, err
		}
		var batch []T
		if err := json.Unmarshal(p.body, &batch); err != nil {
			return nil, fmt.Errorf("decode canvas %s: %w", operation, err)
		}
		items = append(items, batch...)
		if p.next != "" && !c.sameOrigin(p.next) {
			return nil, fmt.Errorf("canvas %s: %w: %s", operation, ErrForeignNextLink, endpointPath(p.next))
		}
		next = p.next
	}
	return items, nil
}

func (c *Client) fetch(ctx context.Context, operation, rawURL string) (*page, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("canvas %s: rate limit wait: %w", operation, err)
		}
	}

	call := func() (*page, error) { return c.roundTrip(ctx, operation, rawURL) }
	if c.breaker == nil {
		return call()
	}

	p, err := c.breaker.Execute(call)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &APIError{Status: http.StatusServiceUnavailable, Endpoint: operation, Message: err.Error()}
	}
	return p, err
}

func (c *Client) roundTrip(ctx context.Context, operation, rawURL string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build canvas %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recorder.ObserveUpstream(operation, 0, time.Since(start))
		return nil, fmt.Errorf("canvas %s request failed: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	c.recorder.ObserveUpstream(operation, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read canvas %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Status:   resp.StatusCode,
			Endpoint: endpointPath(rawURL),
			Message:  errorMessage(resp.StatusCode, body),
		}
	}

	return &page{body: body, next: nextLink(resp.Header.Get("Link"))}, nil
}

// sameOrigin reports whether rawURL has the scheme and host of the instance.
func (c *Client) sameOrigin(rawURL string) bool {
	target, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(target.Scheme, base.Scheme) && strings.EqualFold(target.Host, base.Host)
}

func endpointPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.TrimPrefix(parsed.Path, apiPath)
}

// nextLink returns the rel="next" target of an RFC 8288 Link header.
func nextLink(header string) string {
	if header == "" {
		return ""
	}
	for _, link := range strings.Split(header, ",") {
		parts := strings.Split(link, ";")
		if len(parts) < 2 {
			continue
		}
		target := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range parts[1:] {
			param = strings.TrimSpace(param)
			if strings.EqualFold(param, `rel="next"`) || strings.EqualFold(param, "rel=next") {
				return strings.Trim(target, "<>")
			}
		}
	}
	return ""
}
