package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/segyhp/sacco-engine/internal/domain"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

type paymentRepository struct {
	db dbtx
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.PaymentEvent) error {
	query := `
		INSERT INTO loan_payments (id, loan_id, amount, interest_portion, principal_portion, overpayment, kind, applied_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.LoanID,
		payment.Amount,
		payment.InterestPortion,
		payment.PrincipalPortion,
		payment.Overpayment,
		payment.Kind,
		payment.AppliedDate,
		payment.CreatedAt,
	)
	if err != nil {
		return customError.WrapDatabaseError(fmt.Errorf("create payment: %w", err))
	}

	return nil
}

func (r *paymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.PaymentEvent, error) {
	query := `
		SELECT id, loan_id, amount, interest_portion, principal_portion, overpayment, kind, applied_date, created_at
		FROM loan_payments
		WHERE loan_id = $1
		ORDER BY applied_date, created_at
	`

	payments := []*domain.PaymentEvent{}
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, customError.WrapDatabaseError(fmt.Errorf("list payments: %w", err))
	}

	return payments, nil
}
