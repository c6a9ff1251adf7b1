package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/sacco-engine/internal/config"
	"github.com/segyhp/sacco-engine/internal/logging"
	"github.com/segyhp/sacco-engine/internal/repository"
	"github.com/segyhp/sacco-engine/internal/service"
)

// refreshTimeout bounds one nightly reconciliation run.
const refreshTimeout = 30 * time.Minute

func main() {
	once := flag.Bool("once", false, "run the limit refresh immediately and exit")
	flag.Parse()

	if err := run(*once); err != nil {
		fmt.Fprintf(os.Stderr, "scheduler: %v\n", err)
		os.Exit(1)
	}
}

func run(once bool) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging, "sacco-scheduler")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	store := repository.NewStore(db, logger)
	members := service.NewMemberService(store, service.NewEligibilityCheckerFromConfig(cfg), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		return refreshLimits(ctx, members, logger)
	}

	c := cron.New(
		cron.WithLocation(cfg.GetSchedulerLocation()),
		cron.WithLogger(cronLogger{logger.Sugar()}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger.Sugar()})),
	)

	if err := setupCronJobs(ctx, c, cfg, members, logger); err != nil {
		return err
	}

	// Start the scheduler
	c.Start()
	logger.Info("scheduler started",
		zap.String("limit_refresh", cfg.Scheduler.LimitRefreshSpec),
		zap.String("timezone", cfg.Scheduler.Timezone),
	)

	<-ctx.Done()
	logger.Info("shutting down scheduler")

	// Wait for a running job to finish
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
	return nil
}

// limitRefresher is implemented by *service.MemberService.
type limitRefresher interface {
	RefreshLimits(ctx context.Context) (int, error)
}

func setupCronJobs(ctx context.Context, c *cron.Cron, cfg *config.Config, members limitRefresher, logger *zap.Logger) error {
	// Nightly reconciliation of stored member loan limits
	_, err := c.AddFunc(cfg.Scheduler.LimitRefreshSpec, func() {
		if err := refreshLimits(ctx, members, logger); err != nil {
			logger.Error("limit refresh job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule limit refresh %q: %w", cfg.Scheduler.LimitRefreshSpec, err)
	}
	return nil
}

func refreshLimits(ctx context.Context, members limitRefresher, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	start := time.Now()
	changed, err := members.RefreshLimits(ctx)
	logger.Info("limit refresh run",
		zap.Int("changed", changed),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	return err
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
