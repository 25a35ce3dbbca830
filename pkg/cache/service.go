package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const connectTimeout = 5 * time.Second

// Service is the Redis-backed cache service. It tolerates an unreachable
// backend at startup and during requests: data-path operations degrade to
// uncached behavior, and Reconnect restores the connection later.
type Service struct {
	mu        sync.RWMutex
	rdb       *redis.Client
	available bool

	url    string
	logger zerolog.Logger
}

// Stats summarizes lookup outcomes since the counters were last cleared.
type Stats struct {
	Status        string  `json:"status"`
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	TotalRequests int64   `json:"total_requests"`
	HitRate       float64 `json:"hit_rate"`
}

// Health reports the backend connection state and a summary of the Redis
// INFO output.
type Health struct {
	Status           string `json:"status"`
	Message          string `json:"message,omitempty"`
	Version          string `json:"version,omitempty"`
	ConnectedClients int64  `json:"connected_clients,omitempty"`
	UsedMemoryHuman  string `json:"used_memory_human,omitempty"`
	UptimeSeconds    int64  `json:"uptime_in_seconds,omitempty"`
}

// NewService creates a cache service from a redis:// or rediss:// URL.
// A connection failure is not fatal: the service starts unavailable and the
// caller serves uncached until Reconnect succeeds.
func NewService(url string) (*Service, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	s := &Service{
		rdb:    redis.NewClient(opts),
		url:    url,
		logger: log.With().Str("component", "cache").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := s.rdb.Ping(ctx).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("Redis connection failed, running without cache")
		s.setAvailable(false)
		return s, nil
	}

	s.logger.Info().Str("url", redactURL(url)).Msg("Redis connection established")
	s.setAvailable(true)
	return s, nil
}

// Available reports whether the backend is currently considered reachable.
func (s *Service) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

func (s *Service) setAvailable(v bool) {
	s.mu.Lock()
	s.available = v
	s.mu.Unlock()

	if v {
		CacheUnavailable.Set(0)
	} else {
		CacheUnavailable.Set(1)
	}
}

func (s *Service) client() *redis.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rdb
}

// Get retrieves a value by key. A hit increments the hit counter, a genuine
// miss the miss counter. An unreachable backend reports a miss and
// increments neither.
func (s *Service) Get(ctx context.Context, key string) ([]byte, bool) {
	if !s.Available() {
		return nil, false
	}

	rdb := s.client()
	data, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.recordMiss(ctx)
			s.logger.Debug().Str("key", key).Msg("cache miss")
			return nil, false
		}
		CacheErrors.WithLabelValues("get").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, false
	}

	s.recordHit(ctx, "redis")
	CacheEntryBytes.Observe(float64(len(data)))
	s.logger.Debug().Str("key", key).Msg("cache hit")
	return data, true
}

// Set stores a value under key with the given TTL. Write failures are
// logged and discarded.
func (s *Service) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if !s.Available() || ttl <= 0 {
		return
	}

	if err := s.client().Set(ctx, key, val, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return
	}

	CacheEntryBytes.Observe(float64(len(val)))
	s.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("cache set")
}

// Delete removes a single key.
func (s *Service) Delete(ctx context.Context, key string) error {
	if !s.Available() {
		return ErrUnavailable
	}

	if err := s.client().Del(ctx, key).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	s.logger.Debug().Str("key", key).Msg("cache delete")
	return nil
}

// Clear removes all keys in the configured database, including the stat
// counters.
func (s *Service) Clear(ctx context.Context) error {
	if !s.Available() {
		return ErrUnavailable
	}

	if err := s.client().FlushDB(ctx).Err(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("redis flushdb: %w", err)
	}

	s.logger.Info().Msg("cache cleared")
	return nil
}

// Keys lists all keys in the configured database. Returns an empty list
// when the backend is unreachable.
func (s *Service) Keys(ctx context.Context) ([]string, error) {
	if !s.Available() {
		return []string{}, nil
	}

	keys := []string{}
	iter := s.client().Scan(ctx, 0, "*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("keys").Inc()
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	return keys, nil
}

// GetOrCompute returns the cached value for key, or runs loader on a miss,
// stores the result, and returns it.
func (s *Service) GetOrCompute(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if data, ok := s.Get(ctx, key); ok {
		return data, true, nil
	}

	data, err := loader(ctx)
	if err != nil {
		return nil, false, err
	}

	s.Set(ctx, key, data, ttl)
	return data, false, nil
}

// Stats returns the lookup counters held in Redis.
func (s *Service) Stats(ctx context.Context) Stats {
	if !s.Available() {
		return Stats{Status: "unavailable"}
	}

	rdb := s.client()
	hits, err := counterValue(ctx, rdb, KeyStatsHits)
	if err != nil {
		CacheErrors.WithLabelValues("stats").Inc()
		s.logger.Warn().Err(err).Msg("reading cache stats failed")
		return Stats{Status: "error"}
	}
	misses, err := counterValue(ctx, rdb, KeyStatsMisses)
	if err != nil {
		CacheErrors.WithLabelValues("stats").Inc()
		s.logger.Warn().Err(err).Msg("reading cache stats failed")
		return Stats{Status: "error"}
	}

	total := hits + misses
	var rate float64
	if total > 0 {
		rate = math.Round(float64(hits)/float64(total)*10000) / 100
	}

	return Stats{
		Status:        "available",
		Hits:          hits,
		Misses:        misses,
		TotalRequests: total,
		HitRate:       rate,
	}
}

// HealthCheck pings the backend and summarizes its INFO output. A failed
// ping marks the service unavailable.
func (s *Service) HealthCheck(ctx context.Context) Health {
	if !s.Available() {
		return Health{Status: "unavailable", Message: "Redis is not connected"}
	}

	rdb := s.client()
	if err := rdb.Ping(ctx).Err(); err != nil {
		s.setAvailable(false)
		s.logger.Error().Err(err).Msg("Redis health check failed")
		return Health{Status: "unhealthy", Message: err.Error()}
	}

	h := Health{Status: "healthy"}
	info, err := rdb.Info(ctx).Result()
	if err != nil {
		// Ping succeeded; report healthy without the INFO summary.
		return h
	}

	h.Version = infoField(info, "redis_version")
	h.UsedMemoryHuman = infoField(info, "used_memory_human")
	h.ConnectedClients, _ = strconv.ParseInt(infoField(info, "connected_clients"), 10, 64)
	h.UptimeSeconds, _ = strconv.ParseInt(infoField(info, "uptime_in_seconds"), 10, 64)
	return h
}

// Reconnect rebuilds the client from the configured URL and pings it.
func (s *Service) Reconnect(ctx context.Context) error {
	opts, err := redis.ParseURL(s.url)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		s.setAvailable(false)
		s.logger.Error().Err(err).Msg("Redis reconnection failed")
		return fmt.Errorf("redis ping: %w", err)
	}

	s.mu.Lock()
	old := s.rdb
	s.rdb = rdb
	s.available = true
	s.mu.Unlock()
	CacheUnavailable.Set(0)

	if old != nil {
		old.Close()
	}

	s.logger.Info().Msg("Redis reconnected")
	return nil
}

// Close closes the underlying Redis client.
func (s *Service) Close() error {
	return s.client().Close()
}

func (s *Service) recordHit(ctx context.Context, layer string) {
	CacheHits.WithLabelValues(layer).Inc()
	if s.Available() {
		_ = s.client().Incr(ctx, KeyStatsHits).Err()
	}
}

func (s *Service) recordMiss(ctx context.Context) {
	CacheMisses.Inc()
	if s.Available() {
		_ = s.client().Incr(ctx, KeyStatsMisses).Err()
	}
}

func counterValue(ctx context.Context, rdb *redis.Client, key string) (int64, error) {
	n, err := rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// infoField extracts a single "field:value" line from Redis INFO output.
func infoField(info, field string) string {
	for _, line := range strings.Split(info, "\r\n") {
		if v, ok := strings.CutPrefix(line, field+":"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// redactURL strips credentials from a connection URL before logging.
func redactURL(url string) string {
	if at := strings.LastIndex(url, "@"); at != -1 {
		if scheme := strings.Index(url, "://"); scheme != -1 {
			return url[:scheme+3] + "***@" + url[at+1:]
		}
	}
	return url
}
