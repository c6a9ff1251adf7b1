package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleEntry is one month of a loan's repayment plan with its due date.
type ScheduleEntry struct {
	Month            int             `json:"month"`
	DueDate          time.Time       `json:"due_date"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	Payment          decimal.Decimal `json:"payment"`
	InterestPortion  decimal.Decimal `json:"interest_portion"`
	PrincipalPortion decimal.Decimal `json:"principal_portion"`
	ClosingBalance   decimal.Decimal `json:"closing_balance"`
}

// Schedule is the full amortization plan for a loan or a preview.
type Schedule struct {
	LoanID           *uuid.UUID      `json:"loan_id,omitempty"`
	Principal        decimal.Decimal `json:"principal"`
	ProcessingFee    decimal.Decimal `json:"processing_fee"`
	PrincipalWithFee decimal.Decimal `json:"principal_with_fee"`
	MonthlyRate      decimal.Decimal `json:"monthly_rate"`
	TermMonths       int             `json:"term_months"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
	TotalInterest    decimal.Decimal `json:"total_interest"`
	TotalPayable     decimal.Decimal `json:"total_payable"`
	Entries          []ScheduleEntry `json:"entries"`
}
