package amortization

import (
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/sacco-engine/pkg/errors"
	"github.com/segyhp/sacco-engine/pkg/utils"
)

// Allocation is the split of one live payment. Overpayment is the part of Amount
// left over once the balance reached zero.
type Allocation struct {
	Amount           decimal.Decimal `json:"amount"`
	InterestPortion  decimal.Decimal `json:"interest_portion"`
	PrincipalPortion decimal.Decimal `json:"principal_portion"`
	NewBalance       decimal.Decimal `json:"new_balance"`
	Overpayment      decimal.Decimal `json:"overpayment"`
	InterestOnly     bool            `json:"interest_only"`
}

// ElapsedResult is the cumulative effect of a catch-up allocation.
type ElapsedResult struct {
	PrincipalPaid    decimal.Decimal `json:"principal_paid"`
	InterestPaid     decimal.Decimal `json:"interest_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
	PeriodsProcessed int             `json:"periods_processed"`
	Explicit         bool            `json:"explicit"`
}

// Allocate splits paymentAmount against outstandingBalance: interest for one period
// is settled first, the rest reduces principal.
func Allocate(outstandingBalance, monthlyRate, paymentAmount decimal.Decimal) (Allocation, error) {
	if !paymentAmount.IsPositive() {
		return Allocation{}, customError.WrapInvalidPaymentAmount(paymentAmount.StringFixed(2))
	}
	if monthlyRate.IsNegative() {
		return Allocation{}, customError.WrapInvalidLoanParameters("monthly rate must not be negative")
	}
	if outstandingBalance.IsNegative() {
		return Allocation{}, customError.WrapInvalidLoanParameters("outstanding balance must not be negative")
	}

	accrued := utils.RoundMoney(outstandingBalance.Mul(monthlyRate))
	interest := utils.MinDecimal(paymentAmount, accrued)

	if paymentAmount.LessThanOrEqual(accrued) {
		return Allocation{
			Amount:           paymentAmount,
			InterestPortion:  interest,
			PrincipalPortion: decimal.Zero,
			NewBalance:       outstandingBalance,
			Overpayment:      decimal.Zero,
			InterestOnly:     true,
		}, nil
	}

	principal := paymentAmount.Sub(interest)
	overpayment := decimal.Zero
	if principal.GreaterThan(outstandingBalance) {
		overpayment = principal.Sub(outstandingBalance)
		principal = outstandingBalance
	}

	return Allocation{
		Amount:           paymentAmount,
		InterestPortion:  interest,
		PrincipalPortion: principal,
		NewBalance:       utils.MaxDecimal(decimal.Zero, outstandingBalance.Sub(principal)),
		Overpayment:      overpayment,
	}, nil
}

// AllocateElapsed computes how much of the schedule should have been paid after
// monthsElapsed calendar months. It never amortizes past the loan's own term.
func AllocateElapsed(principalWithFee, monthlyRate decimal.Decimal, termMonths, monthsElapsed int) (ElapsedResult, error) {
	if err := ValidateTerms(principalWithFee, monthlyRate, termMonths); err != nil {
		return ElapsedResult{}, err
	}

	periods := monthsElapsed
	if periods < 0 {
		periods = 0
	}
	if periods > termMonths {
		periods = termMonths
	}

	payment := MonthlyPayment(principalWithFee, monthlyRate, termMonths)
	principalPaid := decimal.Zero
	interestPaid := decimal.Zero
	for _, row := range walk(principalWithFee, monthlyRate, payment, termMonths, periods) {
		principalPaid = principalPaid.Add(row.principal)
		interestPaid = interestPaid.Add(row.interest)
	}

	principalPaid = utils.RoundMoney(principalPaid)
	return ElapsedResult{
		PrincipalPaid:    principalPaid,
		InterestPaid:     utils.RoundMoney(interestPaid),
		RemainingBalance: utils.MaxDecimal(decimal.Zero, utils.RoundMoney(principalWithFee).Sub(principalPaid)),
		MonthlyPayment:   utils.RoundMoney(payment),
		PeriodsProcessed: periods,
	}, nil
}

// AllocateExplicit accepts figures known from paper records instead of walking the schedule.
func AllocateExplicit(principalWithFee, principalPaid, interestPaid decimal.Decimal) (ElapsedResult, error) {
	if principalPaid.IsNegative() || interestPaid.IsNegative() {
		return ElapsedResult{}, customError.WrapInvalidLoanParameters("paid amounts must not be negative")
	}
	if !utils.IsWholeCents(principalPaid) || !utils.IsWholeCents(interestPaid) {
		return ElapsedResult{}, customError.WrapInvalidLoanParameters("paid amounts must have at most 2 decimal places")
	}
	if principalPaid.GreaterThan(principalWithFee) {
		return ElapsedResult{}, customError.WrapOverrideExceedsPrincipal(principalPaid.StringFixed(2), principalWithFee.StringFixed(2))
	}

	return ElapsedResult{
		PrincipalPaid:    principalPaid,
		InterestPaid:     interestPaid,
		RemainingBalance: utils.RoundMoney(principalWithFee).Sub(principalPaid),
		Explicit:         true,
	}, nil
}
