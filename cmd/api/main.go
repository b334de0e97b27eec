package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/api"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/config"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/database"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/generator"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/matcher"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/metrics"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/ratelimit"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/shopify"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/worker"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		log.Error("database connection failed", logger.Error(err))
		return err
	}
	defer database.Close(db) //nolint:errcheck
	log.Info("database connected", logger.String("host", cfg.Database.Host))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close() //nolint:errcheck

	m := metrics.New(prometheus.DefaultRegisterer)

	keywordRepo := database.NewKeywordRepository(db)
	blogRepo := database.NewBlogRepository(db)
	storeRepo := database.NewStoreRepository(db)
	tenantRepo := database.NewTenantRepository(db)
	productRepo := database.NewProductRepository(db)

	shopifyClient := shopify.NewClient(log)
	productMatcher := matcher.New(productRepo, log)
	gen := generator.New(generator.NewAnthropicCompleter(cfg.Anthropic), log)

	var images generator.ImageGenerator
	if cfg.ImageAPI.Enabled {
		images = generator.NewImageClient(cfg.ImageAPI)
	}

	blogWorker := worker.New(
		keywordRepo, blogRepo, storeRepo, tenantRepo,
		productMatcher, gen, images, shopifyClient,
		m, cfg.Generator, log,
	)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, "ratelimit")
	}

	router := api.NewRouter(api.RouterDeps{
		DB:        db,
		Redis:     redisClient,
		Enqueuer:  blogWorker,
		Publisher: shopifyClient,
		Limiter:   limiter,
		Metrics:   m,
		Config:    cfg,
		Logger:    log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := blogWorker.Start(ctx); err != nil {
		log.Error("worker start failed", logger.Error(err))
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("server failed", logger.Error(err))
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", logger.Error(err))
	}
	blogWorker.Stop()
	log.Info("shutdown complete")
	return nil
}
