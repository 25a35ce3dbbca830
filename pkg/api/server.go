// Package api provides the HTTP surface: the public catalog and
// recommendation routes, health and metrics, and the cache admin routes.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/bookrec/bookrec/pkg/cache"
	"github.com/bookrec/bookrec/pkg/recommend"
	"github.com/bookrec/bookrec/pkg/store"
)

// Catalog is the book store surface the handlers need.
type Catalog interface {
	Books(ctx context.Context, limit, offset int) ([]store.Book, error)
	BookByID(ctx context.Context, id int64) (*store.Book, error)
}

// Recommender answers similarity queries.
type Recommender interface {
	Recommend(bookID int64, n int) ([]recommend.Recommendation, error)
}

// AdminCache is the management surface proxied by the /admin/cache routes.
// Both *cache.Service and *cache.Tiered satisfy it.
type AdminCache interface {
	Stats(ctx context.Context) cache.Stats
	HealthCheck(ctx context.Context) cache.Health
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error
	Reconnect(ctx context.Context) error
}

// Config wires the server's collaborators and policies.
type Config struct {
	Catalog     Catalog
	Recommender Recommender
	Cache       cache.Cache
	Admin       AdminCache

	RecommendationsTTL time.Duration
	BookListTTL        time.Duration
	BookDetailTTL      time.Duration

	// Token bucket on the public routes; non-positive RPS disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server routes HTTP requests to the catalog, recommender and cache.
type Server struct {
	catalog Catalog
	rec     Recommender
	cache   cache.Cache
	admin   AdminCache
	cfg     Config
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New creates the HTTP server.
func New(cfg Config) *Server {
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	return &Server{
		catalog: cfg.Catalog,
		rec:     cfg.Recommender,
		cache:   cfg.Cache,
		admin:   cfg.Admin,
		cfg:     cfg,
		limiter: limiter,
		logger:  log.With().Str("component", "api").Logger(),
	}
}

// Routes returns the fully wired handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Public routes go through the rate limiter.
	mux.Handle("GET /books", s.public("/books", s.handleBooks))
	mux.Handle("GET /books/{id}", s.public("/books/{id}", s.handleBookDetail))
	mux.Handle("GET /recommend/{id}", s.public("/recommend/{id}", s.handleRecommend))
	mux.Handle("GET /health", s.instrument("/health", s.handleHealth))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /admin/cache/stats", s.instrument("/admin/cache/stats", s.handleCacheStats))
	mux.Handle("POST /admin/cache/clear", s.instrument("/admin/cache/clear", s.handleCacheClear))
	mux.Handle("GET /admin/cache/keys", s.instrument("/admin/cache/keys", s.handleCacheKeys))
	mux.Handle("DELETE /admin/cache/book/{id}", s.instrument("/admin/cache/book/{id}", s.handleInvalidateBook))
	mux.Handle("POST /admin/cache/invalidate/books", s.instrument("/admin/cache/invalidate/books", s.handleInvalidateBooksList))
	mux.Handle("POST /admin/cache/reconnect", s.instrument("/admin/cache/reconnect", s.handleReconnect))

	return mux
}

// public wraps a handler with the rate limiter and instrumentation.
func (s *Server) public(route string, h http.HandlerFunc) http.Handler {
	return s.instrument(route, func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			rateLimitedTotal.Inc()
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		h(w, r)
	})
}

// instrument wraps a handler with request logging and metrics.
func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h(rec, r)

		duration := time.Since(start)
		requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(route).Observe(duration.Seconds())

		s.logger.Info().
			Str("route", route).
			Str("method", r.Method).
			Int("status", rec.status).
			Dur("duration", duration).
			Msg("request handled")
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
