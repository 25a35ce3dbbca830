package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookrec/bookrec/pkg/api"
	"github.com/bookrec/bookrec/pkg/cache"
	"github.com/bookrec/bookrec/pkg/config"
	"github.com/bookrec/bookrec/pkg/logging"
	"github.com/bookrec/bookrec/pkg/recommend"
	"github.com/bookrec/bookrec/pkg/store"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the recommendation API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	return cmd
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})

	catalog, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer catalog.Close()

	books, err := catalog.Books(ctx, 0, 0)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		logger.Warn().Str("db_path", cfg.DBPath).Msg("catalog is empty, run 'bookrec seed' first")
	}

	recommender := recommend.New(books, cfg.Recommend.Neighbors)

	// An unreachable Redis is not fatal: the service starts degraded and
	// serves uncached until /admin/cache/reconnect succeeds.
	svc, err := cache.NewService(cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer svc.Close()

	var dataCache cache.Cache = svc
	var admin api.AdminCache = svc
	if cfg.Cache.Memory.Enabled {
		mem, err := cache.NewMemory(cfg.Cache.Memory.MaxEntries)
		if err != nil {
			return fmt.Errorf("init memory cache: %w", err)
		}
		defer mem.Close()

		tiered := cache.NewTiered(mem, svc)
		dataCache = tiered
		admin = tiered
		logger.Info().Int64("max_entries", cfg.Cache.Memory.MaxEntries).Msg("memory cache tier enabled")
	}

	server := api.New(api.Config{
		Catalog:            catalog,
		Recommender:        recommender,
		Cache:              dataCache,
		Admin:              admin,
		RecommendationsTTL: cfg.RecommendationsTTL(),
		BookListTTL:        cfg.BookListTTL(),
		BookDetailTTL:      cfg.BookDetailTTL(),
		RateLimitRPS:       cfg.RateLimit.RPS,
		RateLimitBurst:     cfg.RateLimit.Burst,
	})

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Listen).Int("books", len(books)).Msg("server starting")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}
