package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "PENDING"
	LoanStatusApproved LoanStatus = "APPROVED"
	LoanStatusRejected LoanStatus = "REJECTED"
	LoanStatusPaid     LoanStatus = "PAID"
)

// Valid reports whether s is one of the known statuses.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusPending, LoanStatusApproved, LoanStatusRejected, LoanStatusPaid:
		return true
	}
	return false
}

// Loan represents a member loan. Balance always equals PrincipalWithFee - PrincipalPaid.
type Loan struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	MemberID         uuid.UUID       `json:"member_id" db:"member_id"`
	Principal        decimal.Decimal `json:"principal" db:"principal"`
	ProcessingFee    decimal.Decimal `json:"processing_fee" db:"processing_fee"`
	PrincipalWithFee decimal.Decimal `json:"principal_with_fee" db:"principal_with_fee"`
	MonthlyRate      decimal.Decimal `json:"monthly_rate" db:"monthly_rate"`
	TermMonths       int             `json:"term_months" db:"term_months"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment" db:"monthly_payment"`
	PrincipalPaid    decimal.Decimal `json:"principal_paid" db:"principal_paid"`
	InterestPaid     decimal.Decimal `json:"interest_paid" db:"interest_paid"`
	Balance          decimal.Decimal `json:"balance" db:"balance"`
	FullyPaid        bool            `json:"fully_paid" db:"fully_paid"`
	Status           LoanStatus      `json:"status" db:"status"`
	OriginationDate  time.Time       `json:"origination_date" db:"origination_date"`
	ApprovalDate     *time.Time      `json:"approval_date,omitempty" db:"approval_date"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// HasRepayments reports whether any principal or interest has been recorded.
func (l *Loan) HasRepayments() bool {
	return l.PrincipalPaid.IsPositive() || l.InterestPaid.IsPositive()
}

// Outstanding is the amount that counts against the member's limit.
func (l *Loan) Outstanding() decimal.Decimal {
	if l.Status != LoanStatusApproved || l.FullyPaid {
		return decimal.Zero
	}
	return l.Balance
}

// DTOs for requests and responses

type PreviewLoanRequest struct {
	Principal   decimal.Decimal  `json:"principal" validate:"decimal_gt=0"`
	MonthlyRate *decimal.Decimal `json:"monthly_rate,omitempty" validate:"omitempty,decimal_gte=0,decimal_scale=6"`
	TermMonths  int              `json:"term_months" validate:"required,gt=0,lte=360"`
}

type CreateLoanRequest struct {
	MemberID    uuid.UUID        `json:"member_id" validate:"required"`
	Principal   decimal.Decimal  `json:"principal" validate:"decimal_gt=0"`
	MonthlyRate *decimal.Decimal `json:"monthly_rate,omitempty" validate:"omitempty,decimal_gte=0,decimal_scale=6"`
	TermMonths  int              `json:"term_months" validate:"required,gt=0,lte=360"`
	Guarantors  []GuarantorInput `json:"guarantors" validate:"dive"`
}

type SetStatusRequest struct {
	Status LoanStatus `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED PAID"`
}

type ImportLoanRow struct {
	MemberID        uuid.UUID        `json:"member_id" validate:"required"`
	Principal       decimal.Decimal  `json:"principal" validate:"decimal_gt=0"`
	MonthlyRate     *decimal.Decimal `json:"monthly_rate,omitempty" validate:"omitempty,decimal_gte=0,decimal_scale=6"`
	TermMonths      int              `json:"term_months" validate:"required,gt=0,lte=360"`
	OriginationDate time.Time        `json:"origination_date" validate:"required"`
	PrincipalPaid   *decimal.Decimal `json:"principal_paid,omitempty" validate:"omitempty,decimal_gte=0,decimal_scale=2"`
	InterestPaid    *decimal.Decimal `json:"interest_paid,omitempty" validate:"omitempty,decimal_gte=0,decimal_scale=2"`
}

// HasExplicitFigures reports whether both paper-record figures were supplied.
func (r ImportLoanRow) HasExplicitFigures() bool {
	return r.PrincipalPaid != nil && r.InterestPaid != nil
}

// HasPartialFigures reports whether only one of the paper-record figures was supplied.
func (r ImportLoanRow) HasPartialFigures() bool {
	return (r.PrincipalPaid == nil) != (r.InterestPaid == nil)
}

type ImportLoansRequest struct {
	Rows []ImportLoanRow `json:"rows" validate:"required,min=1,dive"`
}

type ImportRowResult struct {
	Row     int        `json:"row"`
	Success bool       `json:"success"`
	LoanID  *uuid.UUID `json:"loan_id,omitempty"`
	Code    string     `json:"code,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type ImportLoansResponse struct {
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Results  []ImportRowResult `json:"results"`
}

// LoanLimitChange reports how a member's available limit moved after an operation.
type LoanLimitChange struct {
	MemberID uuid.UUID       `json:"member_id"`
	Previous decimal.Decimal `json:"previous"`
	Current  decimal.Decimal `json:"current"`
	Increase decimal.Decimal `json:"increase"`
}

type CreateLoanResponse struct {
	Loan       *Loan        `json:"loan"`
	Guarantors []*Guarantor `json:"guarantors"`
	Schedule   *Schedule    `json:"schedule"`
}

type LoanStatusResponse struct {
	Loan        *Loan            `json:"loan"`
	LimitChange *LoanLimitChange `json:"limit_change,omitempty"`
}
