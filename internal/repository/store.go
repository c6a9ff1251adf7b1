package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var retryDelays = []time.Duration{50 * time.Millisecond, 150 * time.Millisecond, 400 * time.Millisecond}

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx.
type dbtx interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type postgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewStore(db *sqlx.DB, logger *zap.Logger) Store {
	return &postgresStore{db: db, logger: logger}
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func bind(q dbtx) Repositories {
	return Repositories{
		Loans:      &loanRepository{db: q},
		Members:    &memberRepository{db: q},
		Payments:   &paymentRepository{db: q},
		Guarantors: &guarantorRepository{db: q},
		Savings:    &savingsRepository{db: q},
	}
}

func (s *postgresStore) Repos() Repositories {
	return bind(s.db)
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isRetryable(err) || attempt >= len(retryDelays) {
			return err
		}

		s.logger.Warn("retrying transaction",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelays[attempt]):
		}
	}
}

func (s *postgresStore) runTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return customError.WrapDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	if err := fn(ctx, bind(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return customError.WrapDatabaseError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isRetryable(err error) bool {
	switch pgCode(err) {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return true
	}
	return false
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pgerrcode.UniqueViolation && pqErr.Constraint == constraint
}
