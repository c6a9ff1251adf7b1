package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/sacco-engine/internal/domain"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

type savingsRepository struct {
	db dbtx
}

func (r *savingsRepository) Create(ctx context.Context, txn *domain.SavingsTransaction) error {
	query := `
		INSERT INTO savings_transactions (id, member_id, kind, amount, transaction_date, created_at)
		VALUES (:id, :member_id, :kind, :amount, :transaction_date, :created_at)
	`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, txn); err != nil {
		return customError.WrapDatabaseError(fmt.Errorf("create savings transaction: %w", err))
	}

	return nil
}
