package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"parcelhub.backend/internal/config"
	"parcelhub.backend/internal/infrastructure/datasources/postgres"
	"parcelhub.backend/internal/infrastructure/jobs"
	"parcelhub.backend/internal/infrastructure/mailer"
	"parcelhub.backend/internal/infrastructure/paystack"
	"parcelhub.backend/internal/infrastructure/repositories"
	"parcelhub.backend/internal/interfaces/http/handlers"
	"parcelhub.backend/internal/interfaces/http/middleware"
	"parcelhub.backend/internal/usecases"
	"parcelhub.backend/pkg/crypto"
	"parcelhub.backend/pkg/jwt"
	"parcelhub.backend/pkg/logger"
	"parcelhub.backend/pkg/redis"
)

const (
	serviceName    = "parcelhub-backend"
	serviceVersion = "1.0.0"

	shutdownTimeout   = 15 * time.Second
	limiterSweepEvery = 5 * time.Minute
)

var (
	loadDotenv    = godotenv.Load
	loadCfg       = config.Load
	initLog       = logger.Init
	initRedis     = redis.Init
	openDB        = postgres.NewConnection
	runMigrations = postgres.RunMigrations
	getStdDB      = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	runServer     = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Database.Migrate {
		if err := runMigrations(ctx, sqlDB); err != nil {
			return err
		}
		logger.Info(ctx, "Database migrations applied")
	}

	// Repositories
	accountRepo := repositories.NewAccountRepository(db)
	packageRepo := repositories.NewPackageRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Notifications
	var notifier usecases.Notifier
	if cfg.Email.Enabled() {
		notifier = mailer.NewSMTPMailer(cfg.Email, cfg.App.Name, cfg.Tokens)
	} else {
		logger.Warn(ctx, "EMAIL_HOST not set, account emails are logged instead of sent")
		notifier = mailer.NewLogMailer(logger.GetLogger())
	}

	// Usecases
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	authUsecase := usecases.NewAuthUsecase(
		accountRepo,
		crypto.NewBcryptHasher(crypto.DefaultCost),
		crypto.NewTokenGenerator(),
		jwtService,
		notifier,
		usecases.AuthConfig{
			AppURL:             cfg.App.URL,
			VerificationExpiry: cfg.Tokens.VerificationExpiry,
			ResetExpiry:        cfg.Tokens.ResetExpiry,
			DispatchTimeout:    cfg.Email.DispatchTimeout,
		},
	)
	authUsecase.SetEmailLimiter(redis.NewEmailRequestLimiter(
		redis.GetClient(), cfg.RateLimit.EmailRequestLimit, cfg.RateLimit.EmailRequestWindow,
	))
	packageUsecase := usecases.NewPackageUsecase(packageRepo, accountRepo, uow, cfg.Pricing)
	gateway := paystack.NewClient(cfg.Paystack.SecretKey, cfg.Paystack.BaseURL, nil)
	paymentUsecase := usecases.NewPaymentUsecase(packageRepo, accountRepo, gateway, cfg.Paystack.CallbackURL)
	adminUsecase := usecases.NewAdminUsecase(accountRepo, notifier, cfg.Email.DispatchTimeout)

	if err := handlers.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	// Background jobs
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sweeper := jobs.NewTokenSweeper(accountRepo, cfg.Tokens.SweepInterval, cfg.Tokens.Retention)
	go sweeper.Start(jobCtx)

	authLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)
	go sweepRateLimiter(jobCtx, authLimiter, limiterSweepEvery)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.TimeoutMiddleware(cfg.Server.RequestTimeout))

	applyCORSMiddleware(r, cfg.Paystack.ClientBaseURL)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:     handlers.NewAuthHandler(authUsecase),
		packageHandler:  handlers.NewPackageHandler(packageUsecase),
		paymentHandler:  handlers.NewPaymentHandler(paymentUsecase),
		adminHandler:    handlers.NewAdminHandler(adminUsecase),
		authMiddleware:  middleware.AuthMiddleware(authUsecase),
		rateLimit:       middleware.RateLimitMiddleware(authLimiter),
		idempotency:     middleware.IdempotencyMiddleware(),
		adminMiddleware: middleware.RequireAdmin(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-jobCtx.Done():
			return
		}
		logger.Info(context.Background(), "Shutting down server")
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(context.Background(), "Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "ParcelHub backend starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("routes", len(r.Routes())))

	err = runServer(srv)
	sweeper.Stop()
	cancel()
	authUsecase.Drain()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(context.Background(), "Server stopped")
	return nil
}

func sweepRateLimiter(ctx context.Context, l *middleware.IPRateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}
