// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all bookrec configuration.
type Config struct {
	Listen    string          `yaml:"listen"`
	DBPath    string          `yaml:"db_path"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Recommend RecommendConfig `yaml:"recommend"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Log       LogConfig       `yaml:"log"`
}

// RedisConfig holds the cache backend connection settings.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string `yaml:"url"`
}

// CacheConfig controls TTLs and the optional in-process memory tier.
type CacheConfig struct {
	TTL    TTLConfig    `yaml:"ttl"`
	Memory MemoryConfig `yaml:"memory"`
}

// TTLConfig holds per-resource cache lifetimes in seconds.
type TTLConfig struct {
	Recommendations int `yaml:"recommendations"`
	BookList        int `yaml:"book_list"`
	BookDetail      int `yaml:"book_detail"`
}

// MemoryConfig controls the optional ristretto layer in front of Redis.
// Disabled by default so an unreachable Redis means uncached compute.
type MemoryConfig struct {
	Enabled    bool  `yaml:"enabled"`
	MaxEntries int64 `yaml:"max_entries"`
}

// RecommendConfig controls the recommender.
type RecommendConfig struct {
	// Neighbors is the number of similar books returned per request.
	Neighbors int `yaml:"neighbors"`
}

// RateLimitConfig controls the public-route token bucket.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns a Config with sensible defaults. The TTLs mirror the
// documented per-resource lifetimes: recommendations 1h, list 5m, detail 30m.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "bookrec.db",
		Redis: RedisConfig{
			URL: "redis://localhost:6379/0",
		},
		Cache: CacheConfig{
			TTL: TTLConfig{
				Recommendations: 3600,
				BookList:        300,
				BookDetail:      1800,
			},
			Memory: MemoryConfig{
				Enabled:    false,
				MaxEntries: 10000,
			},
		},
		Recommend: RecommendConfig{
			Neighbors: 10,
		},
		RateLimit: RateLimitConfig{
			RPS:   50,
			Burst: 100,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file, expands environment variables in it, and
// applies environment overrides on top. An empty path yields defaults plus
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides config fields from environment variables. The variable
// names match the ones the service has always documented.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Listen = ":" + v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	setIntFromEnv("CACHE_TTL_RECOMMENDATIONS", &c.Cache.TTL.Recommendations)
	setIntFromEnv("CACHE_TTL_BOOKS", &c.Cache.TTL.BookList)
	setIntFromEnv("CACHE_TTL_BOOK_DETAIL", &c.Cache.TTL.BookDetail)
}

func setIntFromEnv(name string, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*dst = n
	}
}

func (c *Config) validate() error {
	if c.Redis.URL == "" {
		return fmt.Errorf("redis url is required")
	}
	if c.Cache.TTL.Recommendations <= 0 || c.Cache.TTL.BookList <= 0 || c.Cache.TTL.BookDetail <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.Recommend.Neighbors <= 0 {
		return fmt.Errorf("recommend neighbors must be positive (got %d)", c.Recommend.Neighbors)
	}
	return nil
}

// RecommendationsTTL returns the recommendations cache lifetime.
func (c *Config) RecommendationsTTL() time.Duration {
	return time.Duration(c.Cache.TTL.Recommendations) * time.Second
}

// BookListTTL returns the books-list cache lifetime.
func (c *Config) BookListTTL() time.Duration {
	return time.Duration(c.Cache.TTL.BookList) * time.Second
}

// BookDetailTTL returns the book-detail cache lifetime.
func (c *Config) BookDetailTTL() time.Duration {
	return time.Duration(c.Cache.TTL.BookDetail) * time.Second
}
