// Package amortization computes reducing-balance repayment schedules and splits
// repayments into interest and principal. Everything here is pure: no I/O, no clock.
package amortization

import (
	"fmt"

	"github.com/shopspring/decimal"

	customError "github.com/segyhp/sacco-engine/pkg/errors"
	"github.com/segyhp/sacco-engine/pkg/utils"
)

const (
	// factorPrecision bounds the digits kept while compounding (1+r)^n.
	factorPrecision = 24
	// RateScale is the number of decimal places a monthly rate may carry; loans
	// store the rate as NUMERIC(10,6).
	RateScale = 6
)

var one = decimal.NewFromInt(1)

// Installment is one month of a schedule.
type Installment struct {
	Month            int             `json:"month"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	Payment          decimal.Decimal `json:"payment"`
	InterestPortion  decimal.Decimal `json:"interest_portion"`
	PrincipalPortion decimal.Decimal `json:"principal_portion"`
	ClosingBalance   decimal.Decimal `json:"closing_balance"`
}

// Result is a fully reported schedule. All amounts are rounded to 2 decimal places.
type Result struct {
	Fee              decimal.Decimal `json:"fee"`
	PrincipalWithFee decimal.Decimal `json:"principal_with_fee"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
	Schedule         []Installment   `json:"schedule"`
	TotalInterest    decimal.Decimal `json:"total_interest"`
	TotalPayable     decimal.Decimal `json:"total_payable"`
}

// Calculator holds the processing fee rate applied before amortizing.
type Calculator struct {
	feeRate decimal.Decimal
}

// NewCalculator creates a Calculator charging feeRate of the principal as processing fee.
func NewCalculator(feeRate decimal.Decimal) *Calculator {
	return &Calculator{feeRate: feeRate}
}

// FeeRate returns the configured processing fee rate.
func (c *Calculator) FeeRate() decimal.Decimal {
	return c.feeRate
}

// Fee returns the processing fee for principal, unrounded.
func (c *Calculator) Fee(principal decimal.Decimal) decimal.Decimal {
	return principal.Mul(c.feeRate)
}

// Schedule converts (principal, monthlyRate, termMonths) into a fixed monthly payment
// and a month-by-month split of interest and principal. Interest accrues on the
// fee-inclusive principal.
func (c *Calculator) Schedule(principal, monthlyRate decimal.Decimal, termMonths int) (*Result, error) {
	if err := ValidateTerms(principal, monthlyRate, termMonths); err != nil {
		return nil, err
	}

	fee := c.Fee(principal)
	result := amortize(principal.Add(fee), monthlyRate, termMonths)
	result.Fee = utils.RoundMoney(fee)
	return result, nil
}

// Amortize builds the schedule for an amortization base that already includes
// the fee, as stored on an existing loan. Fee is left zero.
func Amortize(principalWithFee, monthlyRate decimal.Decimal, termMonths int) (*Result, error) {
	if err := ValidateTerms(principalWithFee, monthlyRate, termMonths); err != nil {
		return nil, err
	}
	return amortize(principalWithFee, monthlyRate, termMonths), nil
}

func amortize(principalWithFee, monthlyRate decimal.Decimal, termMonths int) *Result {
	payment := MonthlyPayment(principalWithFee, monthlyRate, termMonths)
	rows := walk(principalWithFee, monthlyRate, payment, termMonths, termMonths)

	schedule := make([]Installment, 0, len(rows))
	totalInterest := decimal.Zero
	totalPayable := decimal.Zero
	for _, row := range rows {
		totalInterest = totalInterest.Add(row.interest)
		totalPayable = totalPayable.Add(row.payment)
		schedule = append(schedule, Installment{
			Month:            row.month,
			OpeningBalance:   utils.RoundMoney(row.opening),
			Payment:          utils.RoundMoney(row.payment),
			InterestPortion:  utils.RoundMoney(row.interest),
			PrincipalPortion: utils.RoundMoney(row.principal),
			ClosingBalance:   utils.RoundMoney(row.closing),
		})
	}

	return &Result{
		PrincipalWithFee: utils.RoundMoney(principalWithFee),
		MonthlyPayment:   utils.RoundMoney(payment),
		Schedule:         schedule,
		TotalInterest:    utils.RoundMoney(totalInterest),
		TotalPayable:     utils.RoundMoney(totalPayable),
	}
}

// ValidateTerms rejects non-positive principal or term, negative rates and rates
// finer than RateScale.
func ValidateTerms(principal, monthlyRate decimal.Decimal, termMonths int) error {
	switch {
	case !principal.IsPositive():
		return customError.WrapInvalidLoanParameters("principal must be greater than 0")
	case termMonths <= 0:
		return customError.WrapInvalidLoanParameters("term must be at least 1 month")
	case monthlyRate.IsNegative():
		return customError.WrapInvalidLoanParameters("monthly rate must not be negative")
	case !monthlyRate.Equal(monthlyRate.Round(RateScale)):
		return customError.WrapInvalidLoanParameters(fmt.Sprintf("monthly rate must have at most %d decimal places", RateScale))
	}
	return nil
}

// MonthlyPayment is the unrounded fixed payment P*r*(1+r)^n / ((1+r)^n - 1),
// or P/n for a zero rate. Callers validate inputs first.
func MonthlyPayment(principalWithFee, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if monthlyRate.IsZero() {
		return principalWithFee.Div(n)
	}

	factor := compound(one.Add(monthlyRate), termMonths)
	return principalWithFee.Mul(monthlyRate).Mul(factor).Div(factor.Sub(one))
}

// compound raises base to a non-negative integer power by squaring.
func compound(base decimal.Decimal, exp int) decimal.Decimal {
	result := one
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(factorPrecision)
		}
		base = base.Mul(base).Round(factorPrecision)
		exp >>= 1
	}
	return result
}

type period struct {
	month     int
	opening   decimal.Decimal
	payment   decimal.Decimal
	interest  decimal.Decimal
	principal decimal.Decimal
	closing   decimal.Decimal
}

// walk runs the reducing-balance split for the first `periods` months of a
// termMonths schedule. On the final month of the term the principal portion
// absorbs any drift so the closing balance is exactly zero.
func walk(principalWithFee, monthlyRate, payment decimal.Decimal, termMonths, periods int) []period {
	rows := make([]period, 0, periods)
	balance := principalWithFee
	for m := 1; m <= periods; m++ {
		interest := balance.Mul(monthlyRate)
		principal := payment.Sub(interest)
		pay := payment
		if m == termMonths || principal.GreaterThan(balance) {
			principal = balance
			pay = principal.Add(interest)
		}
		closing := balance.Sub(principal)
		if m == termMonths {
			closing = decimal.Zero
		}
		rows = append(rows, period{
			month:     m,
			opening:   balance,
			payment:   pay,
			interest:  interest,
			principal: principal,
			closing:   closing,
		})
		balance = closing
	}
	return rows
}
