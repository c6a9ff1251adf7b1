package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/sacco-engine/internal/domain"
	"github.com/segyhp/sacco-engine/internal/repository"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
	"github.com/segyhp/sacco-engine/pkg/utils"
)

type MemberService struct {
	store       repository.Store
	eligibility *EligibilityChecker
	logger      *zap.Logger
	now         func() time.Time
}

func NewMemberService(store repository.Store, eligibility *EligibilityChecker, logger *zap.Logger, opts ...Option) *MemberService {
	o := buildOptions(opts)
	return &MemberService{
		store:       store,
		eligibility: eligibility,
		logger:      logger,
		now:         o.now,
	}
}

// Eligibility computes the member's limits live from savings and outstanding approved loans.
func (s *MemberService) Eligibility(ctx context.Context, memberID uuid.UUID) (*domain.EligibilityResponse, error) {
	repos := s.store.Repos()
	member, err := repos.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	outstanding, err := repos.Loans.SumOutstanding(ctx, memberID)
	if err != nil {
		return nil, err
	}

	hasPending, err := repos.Loans.HasPending(ctx, memberID)
	if err != nil {
		return nil, err
	}

	return &domain.EligibilityResponse{
		MemberID:       member.ID,
		Savings:        member.Savings,
		TotalLimit:     s.eligibility.TotalLimit(member.Savings),
		Outstanding:    outstanding,
		AvailableLimit: s.eligibility.AvailableLimit(member.Savings, outstanding),
		HasPendingLoan: hasPending,
	}, nil
}

// Deposit adds to the member's savings and recomputes the loan limit.
func (s *MemberService) Deposit(ctx context.Context, memberID uuid.UUID, request *domain.SavingsRequest) (*domain.SavingsResponse, error) {
	return s.addSavings(ctx, memberID, domain.SavingsKindDeposit, request)
}

// PayDividend credits a dividend payout to the member's savings.
func (s *MemberService) PayDividend(ctx context.Context, memberID uuid.UUID, request *domain.SavingsRequest) (*domain.SavingsResponse, error) {
	return s.addSavings(ctx, memberID, domain.SavingsKindDividend, request)
}

func (s *MemberService) addSavings(ctx context.Context, memberID uuid.UUID, kind domain.SavingsKind, request *domain.SavingsRequest) (*domain.SavingsResponse, error) {
	if !request.Amount.IsPositive() || !request.Amount.Equal(utils.RoundMoney(request.Amount)) {
		return nil, customError.WrapInvalidPaymentAmount(request.Amount.String())
	}

	now := s.now().UTC()
	txDate := utils.TruncateToDay(now)
	if request.TransactionDate != nil {
		txDate = utils.TruncateToDay(request.TransactionDate.UTC())
	}

	var response *domain.SavingsResponse
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		member, err := repos.Members.GetByIDForUpdate(ctx, memberID)
		if err != nil {
			return err
		}

		txn := &domain.SavingsTransaction{
			ID:              uuid.New(),
			MemberID:        memberID,
			Kind:            kind,
			Amount:          request.Amount,
			TransactionDate: txDate,
			CreatedAt:       now,
		}
		if err := repos.Savings.Create(ctx, txn); err != nil {
			return err
		}

		member.Savings = member.Savings.Add(request.Amount)
		change, err := applyMemberLimit(ctx, repos, s.eligibility, member, now)
		if err != nil {
			return err
		}

		response = &domain.SavingsResponse{Member: member, Transaction: txn, LimitChange: change}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("savings credited",
		zap.String("member_id", memberID.String()),
		zap.String("kind", string(kind)),
		zap.String("amount", request.Amount.StringFixed(2)),
		zap.String("available_limit", response.Member.AvailableLimit.StringFixed(2)),
	)

	return response, nil
}

// RefreshLimits reconciles every member's stored limits with their savings and
// outstanding loans. Members are processed independently; the first error is
// returned after all members were attempted.
func (s *MemberService) RefreshLimits(ctx context.Context) (int, error) {
	ids, err := s.store.Repos().Members.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	var firstErr error
	changed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}

		var change *domain.LoanLimitChange
		err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			var err error
			change, err = recomputeMemberLimit(ctx, repos, s.eligibility, id, s.now().UTC())
			return err
		})
		if err != nil {
			s.logger.Error("limit refresh failed", zap.String("member_id", id.String()), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !change.Increase.IsZero() {
			changed++
		}
	}

	s.logger.Info("limit refresh finished", zap.Int("members", len(ids)), zap.Int("changed", changed))
	return changed, firstErr
}

// recomputeMemberLimit locks the member and rewrites its limits from the
// outstanding balance visible in the current transaction.
func recomputeMemberLimit(ctx context.Context, repos repository.Repositories, checker *EligibilityChecker, memberID uuid.UUID, now time.Time) (*domain.LoanLimitChange, error) {
	member, err := repos.Members.GetByIDForUpdate(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return applyMemberLimit(ctx, repos, checker, member, now)
}

func applyMemberLimit(ctx context.Context, repos repository.Repositories, checker *EligibilityChecker, member *domain.Member, now time.Time) (*domain.LoanLimitChange, error) {
	outstanding, err := repos.Loans.SumOutstanding(ctx, member.ID)
	if err != nil {
		return nil, err
	}

	change := checker.Recompute(member, outstanding)
	member.UpdatedAt = now
	if err := repos.Members.UpdateLimits(ctx, member); err != nil {
		return nil, err
	}

	return &change, nil
}
