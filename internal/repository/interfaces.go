package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/sacco-engine/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create inserts a new loan. A second PENDING loan for the same member fails with PendingLoanExists.
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// GetByIDForUpdate retrieves a loan and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// Update writes the mutable ledger and status columns of a loan
	Update(ctx context.Context, loan *domain.Loan) error

	// ListByMember returns a member's loans, newest first
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error)

	// SumOutstanding totals balances of approved loans that are not fully paid
	SumOutstanding(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)

	// HasPending reports whether the member has a loan awaiting approval
	HasPending(ctx context.Context, memberID uuid.UUID) (bool, error)
}

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)

	// GetByIDForUpdate retrieves a member and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Member, error)

	// UpdateLimits writes savings, loan limit and available limit
	UpdateLimits(ctx context.Context, member *domain.Member) error

	// ListIDs returns every member ID, used by the nightly limit refresh
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create records a payment event
	Create(ctx context.Context, payment *domain.PaymentEvent) error

	// ListByLoan returns payment events ordered by applied date then creation time
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.PaymentEvent, error)
}

// GuarantorRepository defines the interface for guarantor data operations
type GuarantorRepository interface {
	CreateBatch(ctx context.Context, guarantors []*domain.Guarantor) error
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Guarantor, error)
}

// SavingsRepository defines the interface for savings transactions
type SavingsRepository interface {
	Create(ctx context.Context, txn *domain.SavingsTransaction) error
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Loans      LoanRepository
	Members    MemberRepository
	Payments   PaymentRepository
	Guarantors GuarantorRepository
	Savings    SavingsRepository
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	// Repos returns repositories that run outside any transaction
	Repos() Repositories

	// WithinTx runs fn in a single transaction. fn's error rolls back; a nil
	// return commits. Serialization failures and deadlocks are retried.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error

	Ping(ctx context.Context) error
}
