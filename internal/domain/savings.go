package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SavingsKind string

const (
	SavingsKindDeposit  SavingsKind = "DEPOSIT"
	SavingsKindDividend SavingsKind = "DIVIDEND"
)

type SavingsTransaction struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	MemberID        uuid.UUID       `json:"member_id" db:"member_id"`
	Kind            SavingsKind     `json:"kind" db:"kind"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

type SavingsRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"decimal_gt=0"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"`
}

type SavingsResponse struct {
	Member      *Member             `json:"member"`
	Transaction *SavingsTransaction `json:"transaction"`
	LimitChange *LoanLimitChange    `json:"limit_change"`
}
