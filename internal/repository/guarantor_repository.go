package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/sacco-engine/internal/domain"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

type guarantorRepository struct {
	db dbtx
}

func (r *guarantorRepository) CreateBatch(ctx context.Context, guarantors []*domain.Guarantor) error {
	if len(guarantors) == 0 {
		return nil
	}

	query := `
		INSERT INTO guarantors (id, loan_id, kind, name, phone, member_id, created_at)
		VALUES (:id, :loan_id, :kind, :name, :phone, :member_id, :created_at)
	`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, guarantors); err != nil {
		return customError.WrapDatabaseError(fmt.Errorf("create guarantors: %w", err))
	}

	return nil
}

func (r *guarantorRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Guarantor, error) {
	query := `
		SELECT id, loan_id, kind, name, phone, member_id, created_at
		FROM guarantors
		WHERE loan_id = $1
		ORDER BY kind, created_at
	`

	guarantors := []*domain.Guarantor{}
	if err := r.db.SelectContext(ctx, &guarantors, query, loanID); err != nil {
		return nil, customError.WrapDatabaseError(fmt.Errorf("list guarantors: %w", err))
	}

	return guarantors, nil
}
