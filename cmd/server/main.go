package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog_api/internal/api"
	"blog_api/internal/api/handler"
	"blog_api/internal/app/service"
	"blog_api/internal/common/security"
	"blog_api/internal/domain/repository"
	"blog_api/internal/platform/cache"
	"blog_api/internal/platform/config"
	"blog_api/internal/platform/database"
	"blog_api/internal/platform/logging"
	"blog_api/internal/platform/metrics"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel).With("service", cfg.APIName)

	// 2. Initialize Database
	db, err := database.Connect(ctx, cfg.DBConnStr)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info(ctx, "database ready")

	// 3. Initialize the post cache
	healthChecks := map[string]handler.Pinger{"database": database.Pinger{DB: db}}
	var store cache.Store
	if cfg.RedisAddr != "" {
		rs, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rs.Close()
		store = rs
		healthChecks["cache"] = rs
		logger.Info(ctx, "redis connected", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemoryStore()
		logger.Info(ctx, "REDIS_ADDR not set, caching posts in memory")
	}
	postCache := cache.NewPostCache(store, cfg.PostCacheTTL)

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	postRepo := repository.NewPgPostRepository(db)

	// 5. Initialize Services
	authMetrics := metrics.New("blog_api")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	codec := security.NewTokenCodec(cfg.JWTKey)

	authService := service.NewAuthService(userRepo, hasher, codec, cfg.TokenTTL, logger.With("component", "auth"), authMetrics)
	userService := service.NewUserService(userRepo, hasher, logger.With("component", "users"))
	postService := service.NewPostService(postRepo, userRepo, postCache, logger.With("component", "posts"), authMetrics)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(api.Deps{
		APIName:      cfg.APIName,
		AuthService:  authService,
		UserService:  userService,
		PostService:  postService,
		HealthChecks: healthChecks,
		Metrics:      authMetrics,
		Logger:       logger,
		AccessLog:    true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Serve until a signal arrives, then shut down gracefully.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.APIPort, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info(context.Background(), "server stopped gracefully")
	return nil
}
