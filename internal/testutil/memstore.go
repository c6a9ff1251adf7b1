// Package testutil provides test doubles shared by service and handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/sacco-engine/internal/domain"
	"github.com/segyhp/sacco-engine/internal/repository"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

// MemStore is an in-memory repository.Store. WithinTx serializes units of work
// and restores the previous state when fn fails, mirroring a rollback.
type MemStore struct {
	mu sync.Mutex

	loans      map[uuid.UUID]domain.Loan
	members    map[uuid.UUID]domain.Member
	payments   []domain.PaymentEvent
	guarantors []domain.Guarantor
	savings    []domain.SavingsTransaction

	failures map[string]error
	TxCount  int
}

func NewMemStore() *MemStore {
	return &MemStore{
		loans:    make(map[uuid.UUID]domain.Loan),
		members:  make(map[uuid.UUID]domain.Member),
		failures: make(map[string]error),
	}
}

// FailOn makes the named operation (for example "Payments.Create") return err
// until cleared with a nil err.
func (s *MemStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *MemStore) Repos() repository.Repositories {
	return s.bind(false)
}

func (s *MemStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TxCount++

	snap := s.snapshot()
	if err := fn(ctx, s.bind(true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Seed helpers bypass failure hooks.

func (s *MemStore) PutMember(m *domain.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = *m
}

func (s *MemStore) PutLoan(l *domain.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans[l.ID] = *l
}

func (s *MemStore) Member(id uuid.UUID) *domain.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil
	}
	return &m
}

func (s *MemStore) Loan(id uuid.UUID) *domain.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok {
		return nil
	}
	return &l
}

func (s *MemStore) Payments() []domain.PaymentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PaymentEvent(nil), s.payments...)
}

func (s *MemStore) Guarantors() []domain.Guarantor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Guarantor(nil), s.guarantors...)
}

func (s *MemStore) SavingsTransactions() []domain.SavingsTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SavingsTransaction(nil), s.savings...)
}

func (s *MemStore) LoanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loans)
}

type memSnapshot struct {
	loans      map[uuid.UUID]domain.Loan
	members    map[uuid.UUID]domain.Member
	payments   []domain.PaymentEvent
	guarantors []domain.Guarantor
	savings    []domain.SavingsTransaction
}

func (s *MemStore) snapshot() memSnapshot {
	snap := memSnapshot{
		loans:      make(map[uuid.UUID]domain.Loan, len(s.loans)),
		members:    make(map[uuid.UUID]domain.Member, len(s.members)),
		payments:   append([]domain.PaymentEvent(nil), s.payments...),
		guarantors: append([]domain.Guarantor(nil), s.guarantors...),
		savings:    append([]domain.SavingsTransaction(nil), s.savings...),
	}
	for k, v := range s.loans {
		snap.loans[k] = v
	}
	for k, v := range s.members {
		snap.members[k] = v
	}
	return snap
}

func (s *MemStore) restore(snap memSnapshot) {
	s.loans = snap.loans
	s.members = snap.members
	s.payments = snap.payments
	s.guarantors = snap.guarantors
	s.savings = snap.savings
}

func (s *MemStore) bind(locked bool) repository.Repositories {
	return repository.Repositories{
		Loans:      &memLoans{s: s, locked: locked},
		Members:    &memMembers{s: s, locked: locked},
		Payments:   &memPayments{s: s, locked: locked},
		Guarantors: &memGuarantors{s: s, locked: locked},
		Savings:    &memSavings{s: s, locked: locked},
	}
}

// enter takes the store lock unless the caller already holds it inside WithinTx,
// then reports any failure registered for op.
func (s *MemStore) enter(locked bool, op string) (func(), error) {
	release := func() {}
	if !locked {
		s.mu.Lock()
		release = s.mu.Unlock
	}
	if err, ok := s.failures[op]; ok {
		return release, err
	}
	return release, nil
}

type memLoans struct {
	s      *MemStore
	locked bool
}

func (r *memLoans) Create(ctx context.Context, loan *domain.Loan) error {
	release, err := r.s.enter(r.locked, "Loans.Create")
	defer release()
	if err != nil {
		return err
	}
	if loan.Status == domain.LoanStatusPending && r.s.pendingExists(loan.MemberID, loan.ID) {
		return customError.WrapPendingLoanExists(loan.MemberID.String())
	}
	r.s.loans[loan.ID] = *loan
	return nil
}

func (r *memLoans) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.get(id, "Loans.GetByID")
}

func (r *memLoans) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.get(id, "Loans.GetByIDForUpdate")
}

func (r *memLoans) get(id uuid.UUID, op string) (*domain.Loan, error) {
	release, err := r.s.enter(r.locked, op)
	defer release()
	if err != nil {
		return nil, err
	}
	loan, ok := r.s.loans[id]
	if !ok {
		return nil, customError.WrapLoanNotFound(id.String())
	}
	return &loan, nil
}

func (r *memLoans) Update(ctx context.Context, loan *domain.Loan) error {
	release, err := r.s.enter(r.locked, "Loans.Update")
	defer release()
	if err != nil {
		return err
	}
	if _, ok := r.s.loans[loan.ID]; !ok {
		return customError.WrapLoanNotFound(loan.ID.String())
	}
	if loan.Status == domain.LoanStatusPending && r.s.pendingExists(loan.MemberID, loan.ID) {
		return customError.WrapPendingLoanExists(loan.MemberID.String())
	}
	r.s.loans[loan.ID] = *loan
	return nil
}

func (r *memLoans) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	release, err := r.s.enter(r.locked, "Loans.ListByMember")
	defer release()
	if err != nil {
		return nil, err
	}
	loans := []*domain.Loan{}
	for _, l := range r.s.loans {
		if l.MemberID == memberID {
			loan := l
			loans = append(loans, &loan)
		}
	}
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].OriginationDate.Equal(loans[j].OriginationDate) {
			return loans[i].OriginationDate.After(loans[j].OriginationDate)
		}
		return loans[i].CreatedAt.After(loans[j].CreatedAt)
	})
	return loans, nil
}

func (r *memLoans) SumOutstanding(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	release, err := r.s.enter(r.locked, "Loans.SumOutstanding")
	defer release()
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, l := range r.s.loans {
		if l.MemberID == memberID {
			total = total.Add(l.Outstanding())
		}
	}
	return total, nil
}

func (r *memLoans) HasPending(ctx context.Context, memberID uuid.UUID) (bool, error) {
	release, err := r.s.enter(r.locked, "Loans.HasPending")
	defer release()
	if err != nil {
		return false, err
	}
	return r.s.pendingExists(memberID, uuid.Nil), nil
}

func (s *MemStore) pendingExists(memberID, except uuid.UUID) bool {
	for id, l := range s.loans {
		if id != except && l.MemberID == memberID && l.Status == domain.LoanStatusPending {
			return true
		}
	}
	return false
}

type memMembers struct {
	s      *MemStore
	locked bool
}

func (r *memMembers) Create(ctx context.Context, member *domain.Member) error {
	release, err := r.s.enter(r.locked, "Members.Create")
	defer release()
	if err != nil {
		return err
	}
	r.s.members[member.ID] = *member
	return nil
}

func (r *memMembers) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	return r.get(id, "Members.GetByID")
}

func (r *memMembers) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	return r.get(id, "Members.GetByIDForUpdate")
}

func (r *memMembers) get(id uuid.UUID, op string) (*domain.Member, error) {
	release, err := r.s.enter(r.locked, op)
	defer release()
	if err != nil {
		return nil, err
	}
	member, ok := r.s.members[id]
	if !ok {
		return nil, customError.WrapMemberNotFound(id.String())
	}
	return &member, nil
}

func (r *memMembers) UpdateLimits(ctx context.Context, member *domain.Member) error {
	release, err := r.s.enter(r.locked, "Members.UpdateLimits")
	defer release()
	if err != nil {
		return err
	}
	if _, ok := r.s.members[member.ID]; !ok {
		return customError.WrapMemberNotFound(member.ID.String())
	}
	r.s.members[member.ID] = *member
	return nil
}

func (r *memMembers) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	release, err := r.s.enter(r.locked, "Members.ListIDs")
	defer release()
	if err != nil {
		return nil, err
	}
	members := make([]domain.Member, 0, len(r.s.members))
	for _, m := range r.s.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].MemberNo < members[j].MemberNo })

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

type memPayments struct {
	s      *MemStore
	locked bool
}

func (r *memPayments) Create(ctx context.Context, payment *domain.PaymentEvent) error {
	release, err := r.s.enter(r.locked, "Payments.Create")
	defer release()
	if err != nil {
		return err
	}
	r.s.payments = append(r.s.payments, *payment)
	return nil
}

func (r *memPayments) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.PaymentEvent, error) {
	release, err := r.s.enter(r.locked, "Payments.ListByLoan")
	defer release()
	if err != nil {
		return nil, err
	}
	payments := []*domain.PaymentEvent{}
	for _, p := range r.s.payments {
		if p.LoanID == loanID {
			payment := p
			payments = append(payments, &payment)
		}
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].AppliedDate.Equal(payments[j].AppliedDate) {
			return payments[i].AppliedDate.Before(payments[j].AppliedDate)
		}
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})
	return payments, nil
}

type memGuarantors struct {
	s      *MemStore
	locked bool
}

func (r *memGuarantors) CreateBatch(ctx context.Context, guarantors []*domain.Guarantor) error {
	release, err := r.s.enter(r.locked, "Guarantors.CreateBatch")
	defer release()
	if err != nil {
		return err
	}
	for _, g := range guarantors {
		r.s.guarantors = append(r.s.guarantors, *g)
	}
	return nil
}

func (r *memGuarantors) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Guarantor, error) {
	release, err := r.s.enter(r.locked, "Guarantors.ListByLoan")
	defer release()
	if err != nil {
		return nil, err
	}
	guarantors := []*domain.Guarantor{}
	for _, g := range r.s.guarantors {
		if g.LoanID == loanID {
			guarantor := g
			guarantors = append(guarantors, &guarantor)
		}
	}
	return guarantors, nil
}

type memSavings struct {
	s      *MemStore
	locked bool
}

func (r *memSavings) Create(ctx context.Context, txn *domain.SavingsTransaction) error {
	release, err := r.s.enter(r.locked, "Savings.Create")
	defer release()
	if err != nil {
		return err
	}
	r.s.savings = append(r.s.savings, *txn)
	return nil
}
