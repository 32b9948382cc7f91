package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	_ "github.com/vetri-dj/ops-api/docs"
	"github.com/vetri-dj/ops-api/internal/api"
	"github.com/vetri-dj/ops-api/internal/api/session"
	"github.com/vetri-dj/ops-api/internal/core/access"
	"github.com/vetri-dj/ops-api/internal/core/service"
	"github.com/vetri-dj/ops-api/internal/infrastructure/db/mongo"
	"github.com/vetri-dj/ops-api/internal/infrastructure/db/redis"
	"github.com/vetri-dj/ops-api/internal/infrastructure/http/handlers"
	"github.com/vetri-dj/ops-api/internal/infrastructure/notify"
	"github.com/vetri-dj/ops-api/internal/infrastructure/postal"
	"github.com/vetri-dj/ops-api/internal/infrastructure/queue"
	"github.com/vetri-dj/ops-api/internal/pkg/config"
	"github.com/vetri-dj/ops-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title        Vetri DJ Ops API
// @version      1.0
// @description  Bookings, finance, inventory and team management for Vetri DJ, behind cookie sessions.
// @BasePath     /
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "vetri-ops-api",
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	audit := queue.NewAuditDispatcher(cfg.Audit.Workers, cfg.Audit.Buffer, mongo.NewAuditRepository(db), logger.For("audit"))
	audit.Start(ctx)

	identities := mongo.NewIdentityRepository(db)
	ledger := mongo.NewFinanceRepository(db)

	authService := service.NewAuthService(
		identities,
		redis.NewOTPStore(rdb),
		notify.NewLogSender(logger.For("otp")),
		audit,
		service.AuthOptions{
			OTPTTL:         cfg.OTP.TTL,
			OTPMaxAttempts: cfg.OTP.MaxAttempts,
			OTPDevEcho:     cfg.OTP.DevEcho,
		},
		logger.For("auth"),
	)

	if cfg.Seed.AdminPhone != "" {
		seeded, err := authService.BootstrapAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminPhone)
		if err != nil {
			return err
		}
		if seeded != nil {
			// Printed once; the account must rotate it on first login.
			log.Warn().
				Str("identity_id", seeded.Identity.ID).
				Str("temporary_password", seeded.TemporaryPassword).
				Msg("bootstrap admin created, sign in and change the password")
		}
	}

	postalLookup := redis.NewPostalCache(rdb, postal.NewClient(cfg.PincodeAPIURL, logger.For("postal")), logger.For("postal"))

	router := api.NewRouter(api.RouterParams{
		Log:         log,
		Development: cfg.IsDevelopment(),
		Sessions: session.NewCodec([]byte(cfg.Session.Secret), session.Options{
			Secure: cfg.Session.SecureCookie,
			Domain: cfg.Session.Domain,
		}),
		Policy:    access.DefaultPolicy(),
		Auth:      authService,
		Users:     service.NewUserService(identities, audit, logger.For("users")),
		Bookings:  service.NewBookingService(mongo.NewBookingRepository(db), ledger, audit, logger.For("bookings")),
		Finance:   service.NewFinanceService(ledger, audit, logger.For("finance")),
		Inventory: service.NewInventoryService(mongo.NewInventoryRepository(db), audit, logger.For("inventory")),
		Packages:  service.NewPackageService(mongo.NewPackageRepository(db), audit, logger.For("packages")),
		Settings:  service.NewSettingService(mongo.NewSettingRepository(db), audit, logger.For("settings")),
		Postal:    postalLookup,
		Probes: map[string]handlers.Probe{
			"mongodb": handlers.MongoProbe(db),
			"redis":   handlers.RedisProbe(rdb),
		},
		UIDir:              cfg.UIDir,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown")
		}
		// Requests have finished; flush whatever audit records are still queued.
		return audit.Close(sctx)
	})

	return g.Wait()
}
