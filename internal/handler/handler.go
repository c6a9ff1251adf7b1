package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/segyhp/sacco-engine/internal/domain"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

// LoanService is the loan workflow the HTTP layer drives.
type LoanService interface {
	PreviewLoan(ctx context.Context, request *domain.PreviewLoanRequest) (*domain.Schedule, error)
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.CreateLoanResponse, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID uuid.UUID) (*domain.Schedule, error)
	ListPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.PaymentEvent, error)
	ListMemberLoans(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error)
	MakePayment(ctx context.Context, loanID uuid.UUID, request *domain.MakePaymentRequest) (*domain.MakePaymentResponse, error)
	ApproveLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanStatusResponse, error)
	RejectLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanStatusResponse, error)
	SetStatus(ctx context.Context, loanID uuid.UUID, status domain.LoanStatus) (*domain.LoanStatusResponse, error)
	ImportLoans(ctx context.Context, request *domain.ImportLoansRequest) (*domain.ImportLoansResponse, error)
}

// MemberService covers savings and eligibility.
type MemberService interface {
	Eligibility(ctx context.Context, memberID uuid.UUID) (*domain.EligibilityResponse, error)
	Deposit(ctx context.Context, memberID uuid.UUID, request *domain.SavingsRequest) (*domain.SavingsResponse, error)
	PayDividend(ctx context.Context, memberID uuid.UUID, request *domain.SavingsRequest) (*domain.SavingsResponse, error)
}

type base struct {
	validator *validator.Validate
	logger    *zap.Logger
}

func newBase(logger *zap.Logger) base {
	return base{validator: NewValidator(), logger: logger}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, customError.WrapValidation(fmt.Errorf("%s must be a UUID, got %q", name, raw))
	}
	return id, nil
}
