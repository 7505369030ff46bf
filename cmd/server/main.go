package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"frontera/internal/audit"
	"frontera/internal/declaration"
	"frontera/internal/events"
	"frontera/internal/identity"
	"frontera/internal/minor"
	"frontera/internal/platform/config"
	"frontera/internal/platform/httpserver"
	"frontera/internal/platform/logger"
	"frontera/internal/platform/metrics"
	"frontera/internal/platform/middleware"
	"frontera/internal/platform/postgres"
	platformredis "frontera/internal/platform/redis"
	"frontera/internal/report"
	"frontera/internal/vehicle"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	bus := events.NewBus()

	// Stores: PostgreSQL when configured, in-memory otherwise.
	var (
		vehicleStore        vehicle.Store        = vehicle.NewInMemoryStore()
		touristVehicleStore vehicle.TouristStore = vehicle.NewInMemoryTouristStore()
		declarationStore    declaration.Store    = declaration.NewInMemoryStore()
		minorStore          minor.Store          = minor.NewInMemoryStore()
		touristMinorStore   minor.TouristStore   = minor.NewInMemoryTouristStore()
		auditStore          audit.Store          = audit.NewInMemoryStore()
	)
	if cfg.PostgresURL != "" {
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		vehicleStore = vehicle.NewPostgresStore(db)
		touristVehicleStore = vehicle.NewPostgresTouristStore(db)
		declarationStore = declaration.NewPostgresStore(db)
		minorStore = minor.NewPostgresStore(db)
		touristMinorStore = minor.NewPostgresTouristStore(db)
		auditStore = audit.NewPostgresStore(db)
		log.Info("using postgres storage")
	} else {
		log.Info("using in-memory storage")
	}

	// Token revocation: Redis when configured, in-memory otherwise.
	var revoked identity.RevocationStore = identity.NewInMemoryRevocationStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		revoked = identity.NewRedisRevocationStore(redisClient.Client)
		log.Info("using redis token revocation")
	}

	accounts := identity.NewInMemoryAccountStore()
	if err := identity.SeedDemoAccounts(ctx, accounts); err != nil {
		return err
	}

	publisher := audit.NewPublisher(256, log)
	worker := audit.NewWorker(auditStore, publisher.Events(), log)

	tokens := identity.NewTokenService(cfg.JWTSigningKey, cfg.TokenTTL, revoked)
	identityService := identity.New(accounts, tokens, revoked,
		identity.WithLogger(log),
		identity.WithMetrics(m),
		identity.WithAuditPublisher(publisher),
	)
	vehicleService := vehicle.New(vehicleStore, touristVehicleStore, bus,
		vehicle.WithLogger(log),
		vehicle.WithMetrics(m),
		vehicle.WithAuditPublisher(publisher),
	)
	declarationService := declaration.New(declarationStore, bus,
		declaration.WithLogger(log),
		declaration.WithMetrics(m),
		declaration.WithAuditPublisher(publisher),
	)
	minorService := minor.New(minorStore, touristMinorStore, bus,
		minor.WithLogger(log),
		minor.WithMetrics(m),
		minor.WithAuditPublisher(publisher),
	)
	reportService := report.New(vehicleStore, touristVehicleStore, declarationStore, minorStore, touristMinorStore, bus,
		report.WithLogger(log),
		report.WithMetrics(m),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.RequestTime)
	router.Use(middleware.Device)
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.LatencyMiddleware(m))

	identity.NewHandler(identityService, tokens, log).Register(router)
	vehicle.NewHandler(vehicleService, tokens, log).Register(router)
	declaration.NewHandler(declarationService, tokens, log).Register(router)
	minor.NewHandler(minorService, tokens, log).Register(router)
	report.NewHandler(reportService, tokens, log).Register(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting frontera", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		return reportService.Watch(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		publisher.Close()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
