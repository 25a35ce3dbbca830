// Package cache provides the Redis-backed caching layer in front of the
// book catalog and recommender.
//
// The service is fail-soft: when Redis is unreachable (at startup or during
// a request) reads report a miss, writes are discarded, and the caller
// serves the request computed directly. Requests never fail because of the
// cache.
//
// Keys follow a fixed hierarchical naming convention:
//
//	book:recommendations:{id}   recommendations payload for a book
//	book:list:all               books-list payload
//	book:detail:{id}            single book payload
//	stats:cache:hits            lookup hit counter
//	stats:cache:misses          lookup miss counter
//
// Hit and miss counters are held in Redis (INCR) so they survive restarts
// and aggregate across replicas; matching Prometheus counters are exported
// for scraping.
//
// # Basic Usage
//
//	svc, err := cache.NewService("redis://localhost:6379/0")
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	data, hit, err := svc.GetOrCompute(ctx, cache.RecommendationsKey(42), time.Hour,
//		func(ctx context.Context) ([]byte, error) {
//			return computeRecommendations(ctx, 42)
//		})
//
// An optional in-process memory tier (ristretto) can be layered in front of
// Redis with NewTiered; reads then check memory, Redis, loader in order.
package cache
