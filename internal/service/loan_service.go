package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/sacco-engine/internal/cache"
	"github.com/segyhp/sacco-engine/internal/config"
	"github.com/segyhp/sacco-engine/internal/domain"
	"github.com/segyhp/sacco-engine/internal/repository"
	"github.com/segyhp/sacco-engine/pkg/amortization"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
	"github.com/segyhp/sacco-engine/pkg/utils"
)

type LoanService struct {
	store       repository.Store
	cache       cache.ScheduleCache
	calculator  *amortization.Calculator
	eligibility *EligibilityChecker
	config      *config.Config
	logger      *zap.Logger
	now         func() time.Time
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewLoanService(
	store repository.Store,
	scheduleCache cache.ScheduleCache,
	calculator *amortization.Calculator,
	eligibility *EligibilityChecker,
	config *config.Config,
	logger *zap.Logger,
	opts ...Option,
) *LoanService {
	o := buildOptions(opts)
	return &LoanService{
		store:       store,
		cache:       scheduleCache,
		calculator:  calculator,
		eligibility: eligibility,
		config:      config,
		logger:      logger,
		now:         o.now,
	}
}

func (s *LoanService) today() time.Time {
	return utils.TruncateToDay(s.now().UTC())
}

func (s *LoanService) rateOrDefault(rate *decimal.Decimal) decimal.Decimal {
	if rate != nil {
		return *rate
	}
	return s.config.GetDefaultMonthlyRate()
}

// PreviewLoan computes a schedule without persisting anything. Due dates run from today.
func (s *LoanService) PreviewLoan(ctx context.Context, request *domain.PreviewLoanRequest) (*domain.Schedule, error) {
	rate := s.rateOrDefault(request.MonthlyRate)
	result, err := s.calculator.Schedule(request.Principal, rate, request.TermMonths)
	if err != nil {
		return nil, err
	}

	return buildSchedule(nil, request.Principal, rate, result, s.today()), nil
}

// CreateLoan originates a PENDING loan after the eligibility gate passes. The
// member row is locked so concurrent originations see each other.
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.CreateLoanResponse, error) {
	rate := s.rateOrDefault(request.MonthlyRate)
	result, err := s.calculator.Schedule(request.Principal, rate, request.TermMonths)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	loan := &domain.Loan{
		ID:               uuid.New(),
		MemberID:         request.MemberID,
		Principal:        utils.RoundMoney(request.Principal),
		ProcessingFee:    result.Fee,
		PrincipalWithFee: result.PrincipalWithFee,
		MonthlyRate:      rate,
		TermMonths:       request.TermMonths,
		MonthlyPayment:   result.MonthlyPayment,
		PrincipalPaid:    decimal.Zero,
		InterestPaid:     decimal.Zero,
		Balance:          result.PrincipalWithFee,
		Status:           domain.LoanStatusPending,
		OriginationDate:  s.today(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	guarantors := make([]*domain.Guarantor, 0, len(request.Guarantors))
	for _, g := range request.Guarantors {
		guarantors = append(guarantors, &domain.Guarantor{
			ID:        uuid.New(),
			LoanID:    loan.ID,
			Kind:      g.Kind,
			Name:      g.Name,
			Phone:     g.Phone,
			MemberID:  g.MemberID,
			CreatedAt: now,
		})
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		member, err := repos.Members.GetByIDForUpdate(ctx, request.MemberID)
		if err != nil {
			return err
		}

		hasPending, err := repos.Loans.HasPending(ctx, member.ID)
		if err != nil {
			return err
		}

		outstanding, err := repos.Loans.SumOutstanding(ctx, member.ID)
		if err != nil {
			return err
		}

		available := s.eligibility.AvailableLimit(member.Savings, outstanding)
		if err := s.eligibility.CanOriginate(member.ID.String(), request.Principal, available, hasPending, request.Guarantors); err != nil {
			return err
		}

		if err := repos.Loans.Create(ctx, loan); err != nil {
			return err
		}

		return repos.Guarantors.CreateBatch(ctx, guarantors)
	})
	if err != nil {
		s.logger.Info("loan origination rejected",
			zap.String("member_id", request.MemberID.String()),
			zap.String("principal", request.Principal.String()),
			zap.String("code", customError.Code(err)),
		)
		return nil, err
	}

	s.logger.Info("loan originated",
		zap.String("loan_id", loan.ID.String()),
		zap.String("member_id", loan.MemberID.String()),
		zap.String("principal_with_fee", loan.PrincipalWithFee.StringFixed(2)),
		zap.Int("term_months", loan.TermMonths),
	)

	schedule := buildSchedule(&loan.ID, loan.Principal, rate, result, loan.OriginationDate)
	s.cacheSchedule(ctx, loan.ID, schedule)

	return &domain.CreateLoanResponse{
		Loan:       loan,
		Guarantors: guarantors,
		Schedule:   schedule,
	}, nil
}

// GetLoan retrieves a loan by ID
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	return s.store.Repos().Loans.GetByID(ctx, loanID)
}

// GetSchedule returns the loan's amortization plan, served from cache when possible.
// Cache failures are logged and never fail the read.
func (s *LoanService) GetSchedule(ctx context.Context, loanID uuid.UUID) (*domain.Schedule, error) {
	if cached, found, err := s.cache.Get(ctx, loanID); err != nil {
		s.logger.Warn("schedule cache read failed", zap.String("loan_id", loanID.String()), zap.Error(err))
	} else if found {
		return cached, nil
	}

	loan, err := s.store.Repos().Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	result, err := amortization.Amortize(loan.PrincipalWithFee, loan.MonthlyRate, loan.TermMonths)
	if err != nil {
		return nil, err
	}
	result.Fee = loan.ProcessingFee

	schedule := buildSchedule(&loan.ID, loan.Principal, loan.MonthlyRate, result, loan.OriginationDate)
	s.cacheSchedule(ctx, loan.ID, schedule)

	return schedule, nil
}

// ListPayments returns a loan's payment events in applied order.
func (s *LoanService) ListPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.PaymentEvent, error) {
	repos := s.store.Repos()
	if _, err := repos.Loans.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return repos.Payments.ListByLoan(ctx, loanID)
}

// ListMemberLoans returns every loan of a member, newest first.
func (s *LoanService) ListMemberLoans(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	repos := s.store.Repos()
	if _, err := repos.Members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	return repos.Loans.ListByMember(ctx, memberID)
}

// MakePayment records a live repayment. The loan row and the member row are
// updated in the same transaction; the member's limit change is returned.
func (s *LoanService) MakePayment(ctx context.Context, loanID uuid.UUID, request *domain.MakePaymentRequest) (*domain.MakePaymentResponse, error) {
	if !request.Amount.IsPositive() || !utils.IsWholeCents(request.Amount) {
		return nil, customError.WrapInvalidPaymentAmount(request.Amount.String())
	}

	now := s.now().UTC()
	appliedDate := s.today()
	if request.AppliedDate != nil {
		appliedDate = utils.TruncateToDay(request.AppliedDate.UTC())
	}

	var response *domain.MakePaymentResponse
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		loan, err := repos.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if err := ensureActive(loan); err != nil {
			return err
		}
		if loan.FullyPaid {
			return customError.WrapLoanNotActive(loan.ID.String(), "FULLY_PAID")
		}

		outcome, err := amortization.Resolve(loanTerms(loan), amortization.LivePayment{Amount: request.Amount})
		if err != nil {
			return err
		}
		alloc := *outcome.Live

		updated, err := ApplyPayment(loan, alloc, now)
		if err != nil {
			return err
		}
		if err := repos.Loans.Update(ctx, updated); err != nil {
			return err
		}

		payment := &domain.PaymentEvent{
			ID:               uuid.New(),
			LoanID:           loan.ID,
			Amount:           alloc.Amount,
			InterestPortion:  alloc.InterestPortion,
			PrincipalPortion: alloc.PrincipalPortion,
			Overpayment:      alloc.Overpayment,
			Kind:             domain.PaymentKindLive,
			AppliedDate:      appliedDate,
			CreatedAt:        now,
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		change, err := s.refreshMemberLimit(ctx, repos, loan.MemberID, now)
		if err != nil {
			return err
		}

		response = &domain.MakePaymentResponse{
			Loan:         updated,
			Payment:      payment,
			InterestOnly: alloc.InterestOnly,
			LimitChange:  change,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("loan_id", loanID.String()),
		zap.String("amount", response.Payment.Amount.StringFixed(2)),
		zap.String("interest", response.Payment.InterestPortion.StringFixed(2)),
		zap.String("principal", response.Payment.PrincipalPortion.StringFixed(2)),
		zap.String("balance", response.Loan.Balance.StringFixed(2)),
		zap.Bool("fully_paid", response.Loan.FullyPaid),
	)
	if response.Payment.Overpayment.IsPositive() {
		s.logger.Warn("payment exceeded outstanding balance",
			zap.String("loan_id", loanID.String()),
			zap.String("overpayment", response.Payment.Overpayment.StringFixed(2)),
		)
	}

	return response, nil
}

// ApproveLoan moves a PENDING loan to APPROVED; its balance starts counting
// against the member's limit.
func (s *LoanService) ApproveLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanStatusResponse, error) {
	return s.transition(ctx, loanID, domain.LoanStatusApproved, true)
}

// RejectLoan moves a PENDING loan to REJECTED.
func (s *LoanService) RejectLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanStatusResponse, error) {
	return s.transition(ctx, loanID, domain.LoanStatusRejected, true)
}

// SetStatus is the administrative escape hatch: it writes any status without
// consulting the state machine.
func (s *LoanService) SetStatus(ctx context.Context, loanID uuid.UUID, status domain.LoanStatus) (*domain.LoanStatusResponse, error) {
	if !status.Valid() {
		return nil, customError.WrapValidation(fmt.Errorf("unknown loan status %q", status))
	}

	response, err := s.transition(ctx, loanID, status, false)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, loanID); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.String("loan_id", loanID.String()), zap.Error(err))
	}
	return response, nil
}

func (s *LoanService) transition(ctx context.Context, loanID uuid.UUID, to domain.LoanStatus, enforce bool) (*domain.LoanStatusResponse, error) {
	now := s.now().UTC()

	var response *domain.LoanStatusResponse
	var from domain.LoanStatus
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		loan, err := repos.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		from = loan.Status

		if enforce {
			if err := CheckTransition(loan.Status, to); err != nil {
				return err
			}
		}

		updated := *loan
		updated.Status = to
		updated.UpdatedAt = now
		if to == domain.LoanStatusApproved && updated.ApprovalDate == nil {
			approved := s.today()
			updated.ApprovalDate = &approved
		}
		if err := repos.Loans.Update(ctx, &updated); err != nil {
			return err
		}

		response = &domain.LoanStatusResponse{Loan: &updated}
		if from == to || (from != domain.LoanStatusApproved && to != domain.LoanStatusApproved) {
			return nil
		}

		change, err := s.refreshMemberLimit(ctx, repos, loan.MemberID, now)
		if err != nil {
			return err
		}
		response.LimitChange = change
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan status changed",
		zap.String("loan_id", loanID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Bool("administrative", !enforce),
	)

	return response, nil
}

// ImportLoans records historical loans from paper records. Every row runs in
// its own transaction; a failed row is reported and the rest carry on.
func (s *LoanService) ImportLoans(ctx context.Context, request *domain.ImportLoansRequest) (*domain.ImportLoansResponse, error) {
	if len(request.Rows) > s.config.Business.MaxImportRowsPerUpload {
		return nil, customError.WrapValidation(
			fmt.Errorf("import accepts at most %d rows, got %d", s.config.Business.MaxImportRowsPerUpload, len(request.Rows)),
		)
	}

	response := &domain.ImportLoansResponse{Results: make([]domain.ImportRowResult, 0, len(request.Rows))}
	for i := range request.Rows {
		row := request.Rows[i]
		result := domain.ImportRowResult{Row: i + 1}

		loan, err := s.importRow(ctx, &row)
		if err != nil {
			result.Code = customError.Code(err)
			result.Error = customError.Message(err)
			response.Failed++
			s.logger.Warn("import row failed",
				zap.Int("row", result.Row),
				zap.String("member_id", row.MemberID.String()),
				zap.Error(err),
			)
		} else {
			result.Success = true
			result.LoanID = &loan.ID
			response.Imported++
		}
		response.Results = append(response.Results, result)
	}

	s.logger.Info("historical import finished",
		zap.Int("imported", response.Imported),
		zap.Int("failed", response.Failed),
	)

	return response, nil
}

func (s *LoanService) importRow(ctx context.Context, row *domain.ImportLoanRow) (*domain.Loan, error) {
	if row.OriginationDate.IsZero() {
		return nil, customError.WrapValidation(fmt.Errorf("origination_date is required"))
	}
	if row.HasPartialFigures() {
		return nil, customError.WrapValidation(fmt.Errorf("principal_paid and interest_paid must be supplied together"))
	}

	rate := s.rateOrDefault(row.MonthlyRate)
	result, err := s.calculator.Schedule(row.Principal, rate, row.TermMonths)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	origination := utils.TruncateToDay(row.OriginationDate.UTC())
	loan := &domain.Loan{
		ID:               uuid.New(),
		MemberID:         row.MemberID,
		Principal:        utils.RoundMoney(row.Principal),
		ProcessingFee:    result.Fee,
		PrincipalWithFee: result.PrincipalWithFee,
		MonthlyRate:      rate,
		TermMonths:       row.TermMonths,
		MonthlyPayment:   result.MonthlyPayment,
		PrincipalPaid:    decimal.Zero,
		InterestPaid:     decimal.Zero,
		Balance:          result.PrincipalWithFee,
		Status:           domain.LoanStatusApproved,
		OriginationDate:  origination,
		ApprovalDate:     &origination,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var input amortization.PaymentInput = amortization.ElapsedPeriods{
		MonthsElapsed: utils.MonthsElapsed(origination, s.today()),
	}
	if row.HasExplicitFigures() {
		input = amortization.ExplicitFigures{PrincipalPaid: *row.PrincipalPaid, InterestPaid: *row.InterestPaid}
	}

	outcome, err := amortization.Resolve(loanTerms(loan), input)
	if err != nil {
		return nil, err
	}

	updated, err := ApplyElapsedCatchUp(loan, *outcome.CatchUp, now)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Members.GetByIDForUpdate(ctx, row.MemberID); err != nil {
			return err
		}

		if err := repos.Loans.Create(ctx, updated); err != nil {
			return err
		}

		paid := updated.PrincipalPaid.Add(updated.InterestPaid)
		if paid.IsPositive() {
			if err := repos.Payments.Create(ctx, &domain.PaymentEvent{
				ID:               uuid.New(),
				LoanID:           updated.ID,
				Amount:           paid,
				InterestPortion:  updated.InterestPaid,
				PrincipalPortion: updated.PrincipalPaid,
				Overpayment:      decimal.Zero,
				Kind:             domain.PaymentKindCatchUp,
				AppliedDate:      s.today(),
				CreatedAt:        now,
			}); err != nil {
				return err
			}
		}

		if !s.config.Business.ReleaseLimitOnImport {
			return nil
		}
		_, err := s.refreshMemberLimit(ctx, repos, row.MemberID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// refreshMemberLimit recomputes the member's limit inside the caller's transaction.
func (s *LoanService) refreshMemberLimit(ctx context.Context, repos repository.Repositories, memberID uuid.UUID, now time.Time) (*domain.LoanLimitChange, error) {
	return recomputeMemberLimit(ctx, repos, s.eligibility, memberID, now)
}

func (s *LoanService) cacheSchedule(ctx context.Context, loanID uuid.UUID, schedule *domain.Schedule) {
	if err := s.cache.Set(ctx, loanID, schedule); err != nil {
		s.logger.Warn("schedule cache write failed", zap.String("loan_id", loanID.String()), zap.Error(err))
	}
}

func loanTerms(loan *domain.Loan) amortization.LoanTerms {
	return amortization.LoanTerms{
		PrincipalWithFee: loan.PrincipalWithFee,
		MonthlyRate:      loan.MonthlyRate,
		TermMonths:       loan.TermMonths,
		Balance:          loan.Balance,
	}
}

func buildSchedule(loanID *uuid.UUID, principal, rate decimal.Decimal, result *amortization.Result, start time.Time) *domain.Schedule {
	entries := make([]domain.ScheduleEntry, 0, len(result.Schedule))
	for _, row := range result.Schedule {
		entries = append(entries, domain.ScheduleEntry{
			Month:            row.Month,
			DueDate:          utils.CalculateDueDate(start, row.Month),
			OpeningBalance:   row.OpeningBalance,
			Payment:          row.Payment,
			InterestPortion:  row.InterestPortion,
			PrincipalPortion: row.PrincipalPortion,
			ClosingBalance:   row.ClosingBalance,
		})
	}

	return &domain.Schedule{
		LoanID:           loanID,
		Principal:        utils.RoundMoney(principal),
		ProcessingFee:    result.Fee,
		PrincipalWithFee: result.PrincipalWithFee,
		MonthlyRate:      rate,
		TermMonths:       len(entries),
		MonthlyPayment:   result.MonthlyPayment,
		TotalInterest:    result.TotalInterest,
		TotalPayable:     result.TotalPayable,
		Entries:          entries,
	}
}
