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

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/segyhp/sacco-engine/internal/auth"
	"github.com/segyhp/sacco-engine/internal/cache"
	"github.com/segyhp/sacco-engine/internal/config"
	"github.com/segyhp/sacco-engine/internal/handler"
	"github.com/segyhp/sacco-engine/internal/logging"
	"github.com/segyhp/sacco-engine/internal/middleware"
	"github.com/segyhp/sacco-engine/internal/repository"
	"github.com/segyhp/sacco-engine/internal/service"
	"github.com/segyhp/sacco-engine/pkg/amortization"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging, "sacco-api")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db.DB); err != nil {
		return err
	}

	// Initialize Redis
	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("initialize redis: %w", err)
	}
	defer redisClient.Close()

	store := repository.NewStore(db, logger)
	eligibility := service.NewEligibilityCheckerFromConfig(cfg)
	loanService := service.NewLoanService(
		store,
		cache.NewScheduleCache(redisClient, cfg.GetScheduleTTL()),
		amortization.NewCalculator(cfg.GetProcessingFeeRate()),
		eligibility,
		cfg,
		logger,
	)
	memberService := service.NewMemberService(store, eligibility, logger)

	tokenValidator, err := auth.NewValidator(cfg.Auth)
	if err != nil {
		return err
	}
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer rateLimiter.Stop()

	router := handler.NewRouter(handler.Routes{
		Loans:   handler.NewLoanHandler(loanService, logger),
		Members: handler.NewMemberHandler(memberService, logger),
		Health:  handler.NewHealthHandler(store, redisClient, cfg.GetHealthTimeout()),
		Global: []handler.Middleware{
			middleware.RequestLogger(logger),
			middleware.CORS,
		},
		API: []handler.Middleware{
			middleware.Authenticate(tokenValidator.ValidateToken, logger),
			rateLimiter.Middleware(logger),
		},
		Admin: middleware.RequireRole(auth.RoleAdmin),
	})

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}

	logger.Info("server exited")
	return nil
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	return db, nil
}
