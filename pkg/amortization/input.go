package amortization

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentInput selects how a repayment is allocated. It is one of LivePayment,
// ElapsedPeriods or ExplicitFigures.
type PaymentInput interface {
	paymentInput()
}

// LivePayment is cash received now.
type LivePayment struct {
	Amount decimal.Decimal
}

// ElapsedPeriods replays the schedule for a number of calendar months.
type ElapsedPeriods struct {
	MonthsElapsed int
}

// ExplicitFigures carries principal and interest already paid according to paper records.
type ExplicitFigures struct {
	PrincipalPaid decimal.Decimal
	InterestPaid  decimal.Decimal
}

func (LivePayment) paymentInput()     {}
func (ElapsedPeriods) paymentInput()  {}
func (ExplicitFigures) paymentInput() {}

// LoanTerms is the subset of loan state the allocator needs.
type LoanTerms struct {
	PrincipalWithFee decimal.Decimal
	MonthlyRate      decimal.Decimal
	TermMonths       int
	Balance          decimal.Decimal
}

// Outcome holds exactly one of Live or CatchUp.
type Outcome struct {
	Live    *Allocation
	CatchUp *ElapsedResult
}

// Resolve allocates input against terms.
func Resolve(terms LoanTerms, input PaymentInput) (Outcome, error) {
	switch in := input.(type) {
	case LivePayment:
		alloc, err := Allocate(terms.Balance, terms.MonthlyRate, in.Amount)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Live: &alloc}, nil
	case ElapsedPeriods:
		res, err := AllocateElapsed(terms.PrincipalWithFee, terms.MonthlyRate, terms.TermMonths, in.MonthsElapsed)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{CatchUp: &res}, nil
	case ExplicitFigures:
		res, err := AllocateExplicit(terms.PrincipalWithFee, in.PrincipalPaid, in.InterestPaid)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{CatchUp: &res}, nil
	default:
		return Outcome{}, fmt.Errorf("unsupported payment input %T", input)
	}
}
