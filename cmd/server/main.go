package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/app"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/cache"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/i18n"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/logger"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/media"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/metrics"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/notify"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/server"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/service/ads"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/service/categories"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/service/translations"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/telemetry"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// OTLP export is optional; a nil handler keeps logging local.
	otelHandler, shutdownLogs, err := telemetry.SetupLogs(ctx, cfg)
	if err != nil {
		logger.Warn("otel logs disabled", "err", err)
	}
	logger.InitFromConfig(cfg, otelHandler)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}
	defer redisCache.Close()

	appCtx := app.New(cfg, database, redisCache, log)
	appCtx.Metrics = metrics.New()

	store, err := media.NewMinioStore(cfg)
	if err != nil {
		log.Error("failed to init media store", "err", err)
		return
	}
	if store != nil {
		appCtx.Media = store
	}

	if cfg.RabbitMQ.URL != "" {
		publisher, err := notify.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Warn("notifications disabled", "err", err)
		} else {
			appCtx.Notifier = publisher
			defer publisher.Close()
		}
	}

	if err := db.SeedCategories(database); err != nil {
		log.Error("failed to seed categories", "err", err)
		return
	}
	if cfg.IsDevelopment() {
		if _, err := db.SeedDemoData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	loader := i18n.NewLoader(cfg.Translations.Dir, i18n.NewCache(cfg.Translations.TTL))
	router := server.NewRouter(appCtx,
		ads.NewRegistrar(appCtx),
		categories.NewRegistrar(appCtx),
		translations.NewRegistrar(appCtx, loader),
	)
	httpServer := server.NewHTTPServer(appCtx, router)

	healthSrv := health.NewServer()
	grpcServer := server.NewGRPCServer(log, server.NewHealthRegistrar(healthSrv))

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		if err := server.ServeGRPC(cfg, grpcServer); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server failed", "err", err)
	}

	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	grpcServer.GracefulStop()

	if err := shutdownLogs(shutdownCtx); err != nil {
		log.Warn("otel shutdown", "err", err)
	}
}
