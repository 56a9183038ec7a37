package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/VanessaDre/masterblog-api/api"
	"github.com/VanessaDre/masterblog-api/config"
	"github.com/VanessaDre/masterblog-api/domain/post"
	"github.com/VanessaDre/masterblog-api/logging"
	"github.com/VanessaDre/masterblog-api/storage"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const name = "masterblog-api"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           name,
		Short:         "HTTP API for creating, editing, searching and sorting blog posts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	flags := serveCmd.Flags()
	flags.String("host", "", "address to bind (env SERVER_HOST)")
	flags.Int("port", 0, "port to listen on (env SERVER_PORT)")
	flags.String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	flags.String("redis-url", "", "enable the response cache, e.g. redis://localhost:6379/0 (env REDIS_URL)")
	for key, flag := range map[string]string{
		config.KeyServerHost: "host",
		config.KeyServerPort: "port",
		config.KeyLogLevel:   "log-level",
		config.KeyRedisURL:   "redis-url",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s)\n", name, version, commit, date)
		},
	}

	root.AddCommand(serveCmd, versionCmd)
	root.RunE = serveCmd.RunE
	root.Flags().AddFlagSet(flags)
	return root
}

func newStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, *storage.InMemoryStorage, func(), error) {
	im := storage.NewInMemoryStorage(post.Seed())
	if !cfg.CacheEnabled() {
		return im, im, func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, serving without cache until it recovers", "error", err)
	}
	// the collection lives in this process, so its cache entries must too
	prefix := name + ":" + uuid.NewString() + ":"
	cached := storage.NewCachedStorage(client, im, prefix, cfg.CacheTTL, logger)
	cleanup := func() {
		keys, err := client.Keys(context.Background(), prefix+"*").Result()
		if err == nil && len(keys) > 0 {
			_ = client.Del(context.Background(), keys...).Err()
		}
		_ = client.Close()
	}
	return cached, im, cleanup, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.SetDefaultStructuredLogger(name, version, cfg.LogLevel)

	contract, err := api.LoadContract(ctx)
	if err != nil {
		return err
	}

	store, im, cleanup, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := api.RegisterPostCount(prometheus.DefaultRegisterer, im.Len); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	handler := api.NewHTTPHandler(store, contract, rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst), logger)
	srv := api.MakeServer(cfg, handler)

	logger.Info("starting server",
		slog.String("address", srv.Addr),
		slog.String("commit", commit),
		slog.Bool("cache", cfg.CacheEnabled()),
		slog.Float64("rateLimit", cfg.RateLimit),
		slog.Int("rateLimitBurst", cfg.RateLimitBurst),
		slog.Duration("readTimeout", cfg.ReadTimeout),
		slog.Duration("writeTimeout", cfg.WriteTimeout),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		handler.SetReady(true)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		handler.SetReady(false)
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
