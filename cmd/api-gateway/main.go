package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-fleet-api/api/swagger"
	"github.com/noah-isme/campus-fleet-api/internal/handler"
	"github.com/noah-isme/campus-fleet-api/internal/models"
	"github.com/noah-isme/campus-fleet-api/internal/repository"
	"github.com/noah-isme/campus-fleet-api/internal/router"
	"github.com/noah-isme/campus-fleet-api/internal/service"
	"github.com/noah-isme/campus-fleet-api/pkg/cache"
	"github.com/noah-isme/campus-fleet-api/pkg/config"
	"github.com/noah-isme/campus-fleet-api/pkg/database"
	"github.com/noah-isme/campus-fleet-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title Campus Fleet API
// @version 1.0.0
// @description Bus assignment, live tracking and occupancy for the college ERP
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, bus list cache disabled", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Fleet.CacheTTL, logr, cacheRepo.Enabled())

	busRepo := repository.NewBusRepository(db)
	driverRepo := repository.NewPersonnelRepository(db, models.PersonnelDriver)
	conductorRepo := repository.NewPersonnelRepository(db, models.PersonnelConductor)
	routeRepo := repository.NewRouteRepository(db)
	historyRepo := repository.NewLocationHistoryRepository(db)

	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiration,
	})

	historySvc := service.NewLocationHistoryService(historyRepo, busRepo, metrics, logr, service.LocationHistoryConfig{
		DefaultLimit: cfg.Fleet.HistoryDefaultLimit,
		MaxLimit:     cfg.Fleet.HistoryMaxLimit,
		ExportTitle:  cfg.Fleet.ExportTitle,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	retryQueue := startHistoryRetryQueue(cfg.Fleet.AuditRetry, historySvc, metrics, logr)

	busSvc := service.NewBusService(
		busRepo,
		[]service.BusReferenceClearer{driverRepo, conductorRepo},
		historyRepo,
		routeRepo,
		cacheSvc,
		db,
		validate,
		logr,
		cfg.Fleet.CacheTTL,
	)
	assignmentSvc := service.NewAssignmentService(busRepo, driverRepo, conductorRepo, routeRepo, cacheSvc, db, metrics, validate, logr)
	trackingSvc := service.NewTrackingService(busRepo, historySvc, cacheSvc, db, metrics, validate, logr)
	driverSvc := service.NewPersonnelService(driverRepo, busRepo, cacheSvc, db, validate, logr)
	conductorSvc := service.NewPersonnelService(conductorRepo, busRepo, cacheSvc, db, validate, logr)
	routeSvc := service.NewRouteService(routeRepo)

	probes := []handler.ReadinessProbe{{Name: "postgres", Check: db.PingContext}}
	if cacheRepo.Enabled() {
		probes = append(probes, handler.ReadinessProbe{Name: "redis", Check: cacheRepo.Ping})
	}

	engine := router.New(
		router.Dependencies{Config: cfg, Logger: logr, Metrics: metrics, Tokens: tokens},
		router.Handlers{
			Buses:      handler.NewBusHandler(busSvc, assignmentSvc),
			Tracking:   handler.NewTrackingHandler(trackingSvc, historySvc),
			Drivers:    handler.NewPersonnelHandler(driverSvc),
			Conductors: handler.NewPersonnelHandler(conductorSvc),
			Routes:     handler.NewRouteHandler(routeSvc),
			Metrics:    handler.NewMetricsHandler(metrics, probes...),
		},
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if retryQueue != nil {
		retryQueue.Stop()
	}
}
