package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Member is a SACCO member. LoanLimit is savings times the configured multiplier;
// AvailableLimit is the last computed headroom after outstanding approved loans.
type Member struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	MemberNo       string          `json:"member_no" db:"member_no"`
	FullName       string          `json:"full_name" db:"full_name"`
	Savings        decimal.Decimal `json:"savings" db:"savings"`
	LoanLimit      decimal.Decimal `json:"loan_limit" db:"loan_limit"`
	AvailableLimit decimal.Decimal `json:"available_limit" db:"available_limit"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

type EligibilityResponse struct {
	MemberID       uuid.UUID       `json:"member_id"`
	Savings        decimal.Decimal `json:"savings"`
	TotalLimit     decimal.Decimal `json:"total_limit"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	AvailableLimit decimal.Decimal `json:"available_limit"`
	HasPendingLoan bool            `json:"has_pending_loan"`
}
