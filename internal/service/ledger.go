package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/sacco-engine/internal/domain"
	"github.com/segyhp/sacco-engine/pkg/amortization"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
	"github.com/segyhp/sacco-engine/pkg/utils"
)

// ApplyPayment returns a copy of loan with a live allocation applied. Status is
// never changed here: a loan whose balance reaches zero stays APPROVED and is
// flagged FullyPaid.
func ApplyPayment(loan *domain.Loan, alloc amortization.Allocation, now time.Time) (*domain.Loan, error) {
	if err := ensureActive(loan); err != nil {
		return nil, err
	}

	updated := *loan
	updated.PrincipalPaid = loan.PrincipalPaid.Add(alloc.PrincipalPortion)
	updated.InterestPaid = loan.InterestPaid.Add(alloc.InterestPortion)
	updated.Balance = alloc.NewBalance
	updated.FullyPaid = updated.Balance.IsZero()
	updated.UpdatedAt = now

	return &updated, nil
}

// ApplyElapsedCatchUp returns a copy of loan carrying the cumulative figures of a
// historical catch-up. It refuses loans that already have repayments on file so
// that nothing is counted twice.
func ApplyElapsedCatchUp(loan *domain.Loan, res amortization.ElapsedResult, now time.Time) (*domain.Loan, error) {
	if err := ensureActive(loan); err != nil {
		return nil, err
	}
	if loan.HasRepayments() {
		return nil, customError.WrapCatchUpNotAllowed(loan.ID.String())
	}
	if res.PrincipalPaid.GreaterThan(loan.PrincipalWithFee) {
		return nil, customError.WrapOverrideExceedsPrincipal(res.PrincipalPaid.StringFixed(2), loan.PrincipalWithFee.StringFixed(2))
	}

	updated := *loan
	updated.PrincipalPaid = res.PrincipalPaid
	updated.InterestPaid = res.InterestPaid
	updated.Balance = utils.MaxDecimal(decimal.Zero, loan.PrincipalWithFee.Sub(res.PrincipalPaid))
	updated.FullyPaid = updated.Balance.IsZero()
	updated.UpdatedAt = now

	return &updated, nil
}

func ensureActive(loan *domain.Loan) error {
	if loan.Status != domain.LoanStatusApproved {
		return customError.WrapLoanNotActive(loan.ID.String(), string(loan.Status))
	}
	return nil
}
