package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/pkg/config"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
)

// Cache ids with their own TTL.
const (
	CacheCurrentUser   = "current_user"
	CacheCourses       = "courses"
	CacheAnnouncements = "announcements"
	CacheProfessors    = "professors"
	CacheAssignments   = "assignments"
	CacheCourseData    = "course_data"
)

const cacheKeyPrefix = "canvas"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	ttls       map[string]time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, ttls: map[string]time.Duration{}, logger: logger, enabled: enabled}
}

// WithTTLs sets the per cache id expiry from configuration.
func (s *CacheService) WithTTLs(cfg config.CacheTTLConfig) *CacheService {
	s.ttls = map[string]time.Duration{
		CacheCurrentUser:   cfg.CurrentUser,
		CacheCourses:       cfg.Courses,
		CacheAnnouncements: cfg.Announcements,
		CacheProfessors:    cfg.Professors,
		CacheAssignments:   cfg.Assignments,
		CacheCourseData:    cfg.CourseData,
	}
	return s
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// TTL returns the configured expiry for cacheID, falling back to the default.
func (s *CacheService) TTL(cacheID string) time.Duration {
	if s == nil {
		return 0
	}
	if ttl, ok := s.ttls[cacheID]; ok && ttl > 0 {
		return ttl
	}
	return s.defaultTTL
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, cacheID, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(cacheID, false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(cacheID, true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes every cached value belonging to scope.
func (s *CacheService) Invalidate(ctx context.Context, scope string) error {
	if !s.Enabled() {
		return nil
	}
	pattern := cacheKeyPrefix + ":" + scope + ":*"
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// CacheKey builds canvas:<scope>:<cacheID>:<hash>, hashing the canonical JSON of args.
func CacheKey(scope, cacheID string, args interface{}) string {
	payload, err := json.Marshal(args)
	if err != nil {
		payload = []byte(err.Error())
	}
	sum := sha256.Sum256(payload)
	return strings.Join([]string{cacheKeyPrefix, scope, cacheID, hex.EncodeToString(sum[:8])}, ":")
}

// Remember returns the live cached value for (scope, cacheID, args) or calls
// compute and stores its result. A failing compute stores nothing. A zero ttl
// uses the configured TTL for cacheID. The bool result reports a cache hit.
func Remember[T any](ctx context.Context, cache *CacheService, scope, cacheID string, args interface{}, ttl time.Duration, compute func(context.Context) (T, error)) (T, bool, error) {
	if !cache.Enabled() {
		value, err := compute(ctx)
		return value, false, err
	}

	key := CacheKey(scope, cacheID, args)
	var cached T
	if hit, err := cache.Get(ctx, cacheID, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	if ttl <= 0 {
		ttl = cache.TTL(cacheID)
	}
	_ = cache.Set(ctx, key, value, ttl)
	return value, false, nil
}
