package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentKind string

const (
	PaymentKindLive    PaymentKind = "LIVE"
	PaymentKindCatchUp PaymentKind = "CATCH_UP"
)

// PaymentEvent is an immutable record of one allocation applied to a loan.
type PaymentEvent struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	LoanID           uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	InterestPortion  decimal.Decimal `json:"interest_portion" db:"interest_portion"`
	PrincipalPortion decimal.Decimal `json:"principal_portion" db:"principal_portion"`
	Overpayment      decimal.Decimal `json:"overpayment" db:"overpayment"`
	Kind             PaymentKind     `json:"kind" db:"kind"`
	AppliedDate      time.Time       `json:"applied_date" db:"applied_date"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

type MakePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"decimal_gt=0"`
	AppliedDate *time.Time      `json:"applied_date,omitempty"`
}

type MakePaymentResponse struct {
	Loan         *Loan            `json:"loan"`
	Payment      *PaymentEvent    `json:"payment"`
	InterestOnly bool             `json:"interest_only"`
	LimitChange  *LoanLimitChange `json:"limit_change,omitempty"`
}
