// Package cache provides the shared response cache.
//
// Two drivers are available: "redis" (default) and "memory". When Redis is
// unreachable at boot the memory driver is used instead, so the application
// never hard-depends on a running Redis.
//
// Read-through usage:
//
//	var products []models.Product
//	if cache.Get("products:v3:list:ab12", &products) {
//	    return products // hit
//	}
//	// ... query DB, then:
//	cache.Set("products:v3:list:ab12", products, time.Minute)
//
// Invalidation is coarse: writers bump a collection version counter with
// Increment, which orphans every key built on the old version.
package cache

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/myshop/config"
	"github.com/shashiranjanraj/myshop/pkg/metrics"
)

// Driver is the storage backend interface.
type Driver interface {
	// Get unmarshals the value under key into dest. Returns false on miss.
	Get(key string, dest interface{}) bool
	// Set stores value under key for ttl.
	Set(key string, value interface{}, ttl time.Duration) error
	// Del removes keys.
	Del(keys ...string) error
	// Increment atomically adds 1 to the integer counter under key and
	// returns the new value. Counters never expire.
	Increment(key string) (int64, error)
	// Name identifies the driver for metrics labels.
	Name() string
}

var driver Driver = newMemoryDriver()

// Connect selects and boots the cache driver per CACHE_DRIVER.
// Falls back to the memory driver when Redis cannot be reached.
func Connect() error {
	if config.CacheDriver() == "memory" {
		driver = newMemoryDriver()
		return nil
	}

	rd, err := newRedisDriver()
	if err != nil {
		driver = newMemoryDriver()
		return fmt.Errorf("cache: %w (falling back to memory driver)", err)
	}
	driver = rd
	return nil
}

// Use swaps the active driver. Intended for tests.
func Use(d Driver) {
	driver = d
}

// Get retrieves a cached value. Returns true on a hit.
func Get(key string, dest interface{}) bool {
	if driver.Get(key, dest) {
		metrics.CacheHits.WithLabelValues(driver.Name()).Inc()
		return true
	}
	metrics.CacheMisses.WithLabelValues(driver.Name()).Inc()
	return false
}

// Set stores value under key for the given TTL.
func Set(key string, value interface{}, ttl time.Duration) error {
	return driver.Set(key, value, ttl)
}

// Del removes one or more keys.
func Del(keys ...string) error {
	return driver.Del(keys...)
}

// Forget is an alias for Del.
func Forget(key string) error { return Del(key) }

// Increment bumps a version counter and returns the new value.
// Used for coarse collection-wide invalidation: keys embed the version, so a
// bump makes every key built on the previous version unreachable.
func Increment(key string) (int64, error) {
	return driver.Increment(key)
}

// Version returns the current value of a version counter (0 when unset).
func Version(key string) int64 {
	var v int64
	if driver.Get(key, &v) {
		return v
	}
	return 0
}
