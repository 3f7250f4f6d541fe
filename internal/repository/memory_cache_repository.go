package repository

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/goccy/go-json"

	"github.com/noah-isme/canvas-gateway-api/pkg/cache"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
)

// MemoryCacheRepository keeps cached payloads in a bounded in-process LRU.
// Values are stored encoded so callers never share mutable state with the cache.
type MemoryCacheRepository struct {
	entries *cache.LRU[string, []byte]
}

// NewMemoryCacheRepository builds an LRU-backed cache. now may be nil.
func NewMemoryCacheRepository(maxEntries int, now func() time.Time) *MemoryCacheRepository {
	return &MemoryCacheRepository{entries: cache.NewLRU[string, []byte](maxEntries, now)}
}

func (r *MemoryCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := r.entries.Get(key)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		r.entries.Remove(key)
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	r.entries.Add(key, payload, ttl)
	return nil
}

// DeleteByPattern removes every key matching a glob in path.Match syntax.
func (r *MemoryCacheRepository) DeleteByPattern(_ context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid cache pattern %s: %w", pattern, err)
	}
	r.entries.RemoveFunc(func(key string) bool {
		matched, _ := path.Match(pattern, key)
		return matched
	})
	return nil
}

// Len reports the number of stored entries, including expired ones not yet evicted.
func (r *MemoryCacheRepository) Len() int {
	return r.entries.Len()
}
