// Package cache provides page caching with a Redis backend.
//
// The upstream people resource sends no usable cache headers, so entries
// carry a fixed TTL chosen by the caller instead of a server-driven
// expires time.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Create cache key from the page URL
//	key := cache.Key{URL: "https://swapi.dev/api/people/?page=2"}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from upstream
//	}
//
//	// Store a successful page body for 60 seconds
//	entry = cache.NewEntry(body, 60*time.Second)
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - swapi_cache_hits_total{layer="redis"} - Cache hits
//   - swapi_cache_misses_total - Cache misses
//   - swapi_cache_size_bytes{layer="redis"} - Cache size
//   - swapi_cache_errors_total{operation} - Cache operation errors
package cache
