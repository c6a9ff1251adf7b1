package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/sacco-engine/internal/domain"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

const pendingLoanConstraint = "uq_loans_one_pending_per_member"

const loanColumns = `id, member_id, principal, processing_fee, principal_with_fee, monthly_rate,
	term_months, monthly_payment, principal_paid, interest_paid, balance, fully_paid, status,
	origination_date, approval_date, created_at, updated_at`

type loanRepository struct {
	db dbtx
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.MemberID,
		loan.Principal,
		loan.ProcessingFee,
		loan.PrincipalWithFee,
		loan.MonthlyRate,
		loan.TermMonths,
		loan.MonthlyPayment,
		loan.PrincipalPaid,
		loan.InterestPaid,
		loan.Balance,
		loan.FullyPaid,
		loan.Status,
		loan.OriginationDate,
		loan.ApprovalDate,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, pendingLoanConstraint) {
			return customError.WrapPendingLoanExists(loan.MemberID.String())
		}
		return customError.WrapDatabaseError(fmt.Errorf("create loan: %w", err))
	}

	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.get(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.get(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id)
}

func (r *loanRepository) get(ctx context.Context, query string, id uuid.UUID) (*domain.Loan, error) {
	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(fmt.Errorf("get loan: %w", err))
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET principal_paid = $2, interest_paid = $3, balance = $4, fully_paid = $5,
			status = $6, approval_date = $7, updated_at = $8
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.PrincipalPaid,
		loan.InterestPaid,
		loan.Balance,
		loan.FullyPaid,
		loan.Status,
		loan.ApprovalDate,
		loan.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, pendingLoanConstraint) {
			return customError.WrapPendingLoanExists(loan.MemberID.String())
		}
		return customError.WrapDatabaseError(fmt.Errorf("update loan: %w", err))
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return customError.WrapLoanNotFound(loan.ID.String())
	}

	return nil
}

func (r *loanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE member_id = $1 ORDER BY origination_date DESC, created_at DESC`

	loans := []*domain.Loan{}
	if err := r.db.SelectContext(ctx, &loans, query, memberID); err != nil {
		return nil, customError.WrapDatabaseError(fmt.Errorf("list loans: %w", err))
	}

	return loans, nil
}

func (r *loanRepository) SumOutstanding(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(balance), 0)
		FROM loans
		WHERE member_id = $1 AND status = $2 AND NOT fully_paid
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, memberID, domain.LoanStatusApproved); err != nil {
		return decimal.Zero, customError.WrapDatabaseError(fmt.Errorf("sum outstanding: %w", err))
	}

	return total, nil
}

func (r *loanRepository) HasPending(ctx context.Context, memberID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM loans WHERE member_id = $1 AND status = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, memberID, domain.LoanStatusPending); err != nil {
		return false, customError.WrapDatabaseError(fmt.Errorf("check pending loan: %w", err))
	}

	return exists, nil
}
