package canvas

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/canvas-gateway-api/pkg/cache"
)

// FactoryConfig tunes every client the factory builds.
type FactoryConfig struct {
	Timeout        time.Duration
	PerPage        int
	RateLimit      float64
	RateBurst      int
	BreakerEnabled bool
	CacheSize      int
	Recorder       Recorder
	Logger         *zap.Logger
	Transport      http.RoundTripper
}

// Factory hands out Canvas clients keyed by instance and token. Clients are
// kept in a bounded LRU so limiter and breaker state carry across requests.
type Factory struct {
	cfg     FactoryConfig
	mu      sync.Mutex
	clients *cache.LRU[string, *Client]
}

// NewFactory constructs a client factory.
func NewFactory(cfg FactoryConfig) *Factory {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	clients := cache.NewLRU[string, *Client](cfg.CacheSize, time.Now)
	clients.OnEvict(func(_ string, client *Client) {
		cfg.Logger.Debug("canvas client evicted", zap.String("base_url", client.BaseURL()))
	})
	return &Factory{cfg: cfg, clients: clients}
}

// Client returns the cached client for (baseURL, apiKey) or builds one.
func (f *Factory) Client(baseURL, apiKey string) (*Client, error) {
	base, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	key := base + "#" + TokenFingerprint(apiKey)

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients.Get(key); ok {
		return client, nil
	}

	opts := Options{
		BaseURL:    base,
		APIKey:     apiKey,
		PerPage:    f.cfg.PerPage,
		HTTPClient: &http.Client{Timeout: f.cfg.Timeout, Transport: f.cfg.Transport},
		Recorder:   f.cfg.Recorder,
	}
	if f.cfg.RateLimit > 0 {
		burst := f.cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		opts.Limiter = rate.NewLimiter(rate.Limit(f.cfg.RateLimit), burst)
	}
	if f.cfg.BreakerEnabled {
		opts.Breaker = newBreaker("canvas-"+TokenFingerprint(key), f.cfg.Recorder, f.cfg.Logger)
	}

	client, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	f.clients.Add(key, client, 0)
	f.cfg.Logger.Debug("canvas client created", zap.String("base_url", base), zap.Int("cached_clients", f.clients.Len()))
	return client, nil
}

// TokenFingerprint is a short non-reversible identifier for a secret.
func TokenFingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:8])
}

// API is Client typed as the API interface.
func (f *Factory) API(baseURL, apiKey string) (API, error) {
	client, err := f.Client(baseURL, apiKey)
	if err != nil {
		return nil, err
	}
	return client, nil
}
