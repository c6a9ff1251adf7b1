package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/sacco-engine/internal/config"
	"github.com/segyhp/sacco-engine/internal/domain"
	"github.com/segyhp/sacco-engine/internal/testutil"
	"github.com/segyhp/sacco-engine/pkg/amortization"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
	"github.com/segyhp/sacco-engine/pkg/utils"
)

type loanFixture struct {
	store   *testutil.MemStore
	cache   *testutil.MockScheduleCache
	service *LoanService
	config  *config.Config
}

func newLoanFixture(t *testing.T, cache *testutil.MockScheduleCache) *loanFixture {
	t.Helper()
	if cache == nil {
		cache = testutil.NewPermissiveScheduleCache()
	}
	cfg := testutil.TestConfig()
	store := testutil.NewMemStore()
	checker := newChecker()

	svc := NewLoanService(
		store,
		cache,
		amortization.NewCalculator(cfg.GetProcessingFeeRate()),
		checker,
		cfg,
		zap.NewNop(),
		WithClock(testutil.Clock),
	)

	return &loanFixture{store: store, cache: cache, service: svc, config: cfg}
}

func TestLoanService_PreviewLoan(t *testing.T) {
	f := newLoanFixture(t, nil)

	rate := testutil.Dec("0.01045")
	schedule, err := f.service.PreviewLoan(context.Background(), &domain.PreviewLoanRequest{
		Principal:   testutil.Dec("100000"),
		MonthlyRate: &rate,
		TermMonths:  12,
	})
	require.NoError(t, err)

	assert.Nil(t, schedule.LoanID)
	assert.True(t, schedule.ProcessingFee.Equal(testutil.Dec("500")))
	assert.True(t, schedule.PrincipalWithFee.Equal(testutil.Dec("100500")))
	assert.True(t, schedule.MonthlyPayment.Equal(testutil.Dec("8954.71")))
	require.Len(t, schedule.Entries, 12)
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), schedule.Entries[0].DueDate)
	assert.Zero(t, f.store.LoanCount())
}

func TestLoanService_PreviewLoan_UsesDefaultRate(t *testing.T) {
	f := newLoanFixture(t, nil)

	schedule, err := f.service.PreviewLoan(context.Background(), &domain.PreviewLoanRequest{
		Principal:  testutil.Dec("30000"),
		TermMonths: 12,
	})
	require.NoError(t, err)
	assert.True(t, schedule.MonthlyRate.Equal(testutil.Dec("0.018")))
	assert.True(t, schedule.MonthlyPayment.Equal(testutil.Dec("2816.07")))
}

func TestLoanService_CreateLoan(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *loanFixture, member *domain.Member)
		principal  string
		guarantors []domain.GuarantorInput
		wantErr    error
	}{
		{
			name:       "originates a pending loan",
			principal:  "30000",
			guarantors: testutil.ValidGuarantors(),
		},
		{
			name:      "rejects when a pending loan exists",
			principal: "1000",
			setup: func(f *loanFixture, member *domain.Member) {
				pending := testutil.NewApprovedLoan(member.ID, "5000", "0.018", 6)
				pending.Status = domain.LoanStatusPending
				f.store.PutLoan(pending)
			},
			guarantors: testutil.ValidGuarantors(),
			wantErr:    customError.ErrPendingLoanExists,
		},
		{
			name:      "rejects above available limit",
			principal: "130000",
			setup: func(f *loanFixture, member *domain.Member) {
				f.store.PutLoan(testutil.NewApprovedLoan(member.ID, "30000", "0.018", 12))
			},
			guarantors: testutil.ValidGuarantors(),
			wantErr:    customError.ErrLimitExceeded,
		},
		{
			name:       "rejects incomplete guarantors",
			principal:  "1000",
			guarantors: testutil.ValidGuarantors()[1:],
			wantErr:    customError.ErrGuarantorRequirementNotMet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture(t, nil)
			member := testutil.NewMember("50000")
			f.store.PutMember(member)
			if tt.setup != nil {
				tt.setup(f, member)
			}
			before := f.store.LoanCount()

			resp, err := f.service.CreateLoan(context.Background(), &domain.CreateLoanRequest{
				MemberID:   member.ID,
				Principal:  testutil.Dec(tt.principal),
				TermMonths: 12,
				Guarantors: tt.guarantors,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				assert.Equal(t, before, f.store.LoanCount())
				assert.Empty(t, f.store.Guarantors())
				return
			}

			require.NoError(t, err)
			loan := resp.Loan
			assert.Equal(t, domain.LoanStatusPending, loan.Status)
			assert.True(t, loan.ProcessingFee.Equal(testutil.Dec("150")))
			assert.True(t, loan.PrincipalWithFee.Equal(testutil.Dec("30150")))
			assert.True(t, loan.Balance.Equal(loan.PrincipalWithFee))
			assert.True(t, loan.MonthlyPayment.Equal(testutil.Dec("2816.07")))
			assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), loan.OriginationDate)
			assert.Len(t, f.store.Guarantors(), 4)
			require.Len(t, resp.Schedule.Entries, 12)
			assert.Equal(t, loan.ID, *resp.Schedule.LoanID)
			assert.NotNil(t, f.store.Loan(loan.ID))
			f.cache.AssertCalled(t, "Set", mock.Anything, loan.ID, mock.Anything)
		})
	}
}

func TestLoanService_CreateLoan_MemberNotFound(t *testing.T) {
	f := newLoanFixture(t, nil)

	_, err := f.service.CreateLoan(context.Background(), &domain.CreateLoanRequest{
		MemberID:   uuid.New(),
		Principal:  testutil.Dec("1000"),
		TermMonths: 6,
		Guarantors: testutil.ValidGuarantors(),
	})
	assert.ErrorIs(t, err, customError.ErrMemberNotFound)
}

func TestLoanService_CreateLoan_InvalidTerms(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	f.store.PutMember(member)

	negative := testutil.Dec("-0.01")
	_, err := f.service.CreateLoan(context.Background(), &domain.CreateLoanRequest{
		MemberID:    member.ID,
		Principal:   testutil.Dec("1000"),
		MonthlyRate: &negative,
		TermMonths:  6,
		Guarantors:  testutil.ValidGuarantors(),
	})
	assert.ErrorIs(t, err, customError.ErrInvalidLoanParameters)
	assert.Zero(t, f.store.TxCount)
}

func TestLoanService_MakePayment(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	member.AvailableLimit = testutil.Dec("100000")
	f.store.PutMember(member)
	loan := testutil.NewApprovedLoan(member.ID, "50000", "0.01045", 12)
	f.store.PutLoan(loan)

	applied := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	resp, err := f.service.MakePayment(context.Background(), loan.ID, &domain.MakePaymentRequest{
		Amount:      testutil.Dec("5000"),
		AppliedDate: &applied,
	})
	require.NoError(t, err)

	assert.True(t, resp.Payment.InterestPortion.Equal(testutil.Dec("522.50")))
	assert.True(t, resp.Payment.PrincipalPortion.Equal(testutil.Dec("4477.50")))
	assert.Equal(t, domain.PaymentKindLive, resp.Payment.Kind)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), resp.Payment.AppliedDate)
	assert.True(t, resp.Loan.Balance.Equal(testutil.Dec("45522.50")))
	assert.False(t, resp.InterestOnly)

	require.NotNil(t, resp.LimitChange)
	assert.True(t, resp.LimitChange.Previous.Equal(testutil.Dec("100000")))
	assert.True(t, resp.LimitChange.Current.Equal(testutil.Dec("104477.50")))
	assert.True(t, resp.LimitChange.Increase.Equal(testutil.Dec("4477.50")))

	stored := f.store.Loan(loan.ID)
	assert.True(t, stored.Balance.Equal(testutil.Dec("45522.50")))
	assert.True(t, f.store.Member(member.ID).AvailableLimit.Equal(testutil.Dec("104477.50")))
	assert.Len(t, f.store.Payments(), 1)
}

func TestLoanService_MakePayment_InterestOnly(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	f.store.PutMember(member)
	loan := testutil.NewApprovedLoan(member.ID, "50000", "0.01045", 12)
	f.store.PutLoan(loan)

	resp, err := f.service.MakePayment(context.Background(), loan.ID, &domain.MakePaymentRequest{Amount: testutil.Dec("300")})
	require.NoError(t, err)

	assert.True(t, resp.InterestOnly)
	assert.True(t, resp.Payment.PrincipalPortion.IsZero())
	assert.True(t, resp.Loan.Balance.Equal(testutil.Dec("50000")))
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), resp.Payment.AppliedDate)
}

func TestLoanService_MakePayment_ClearsLoan(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	f.store.PutMember(member)
	loan := testutil.NewApprovedLoan(member.ID, "1000", "0.01", 3)
	f.store.PutLoan(loan)

	resp, err := f.service.MakePayment(context.Background(), loan.ID, &domain.MakePaymentRequest{Amount: testutil.Dec("1200")})
	require.NoError(t, err)

	assert.True(t, resp.Loan.FullyPaid)
	assert.Equal(t, domain.LoanStatusApproved, resp.Loan.Status)
	assert.True(t, resp.Payment.Overpayment.Equal(testutil.Dec("190")))

	_, err = f.service.MakePayment(context.Background(), loan.ID, &domain.MakePaymentRequest{Amount: testutil.Dec("10")})
	assert.ErrorIs(t, err, customError.ErrLoanNotActive)
}

func TestLoanService_MakePayment_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.LoanStatus
		amount  string
		unknown bool
		wantErr error
	}{
		{name: "pending loan", status: domain.LoanStatusPending, amount: "100", wantErr: customError.ErrLoanNotActive},
		{name: "rejected loan", status: domain.LoanStatusRejected, amount: "100", wantErr: customError.ErrLoanNotActive},
		{name: "zero amount", status: domain.LoanStatusApproved, amount: "0", wantErr: customError.ErrInvalidPaymentAmount},
		{name: "sub-cent amount", status: domain.LoanStatusApproved, amount: "10.005", wantErr: customError.ErrInvalidPaymentAmount},
		{name: "unknown loan", status: domain.LoanStatusApproved, amount: "100", unknown: true, wantErr: customError.ErrLoanNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture(t, nil)
			member := testutil.NewMember("50000")
			f.store.PutMember(member)
			loan := testutil.NewApprovedLoan(member.ID, "5000", "0.018", 6)
			loan.Status = tt.status
			f.store.PutLoan(loan)

			id := loan.ID
			if tt.unknown {
				id = uuid.New()
			}

			_, err := f.service.MakePayment(context.Background(), id, &domain.MakePaymentRequest{Amount: testutil.Dec(tt.amount)})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.store.Payments())
			assert.True(t, f.store.Loan(loan.ID).Balance.Equal(testutil.Dec("5000")))
		})
	}
}

func TestLoanService_MakePayment_AtomicWithMemberUpdate(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	f.store.PutMember(member)
	loan := testutil.NewApprovedLoan(member.ID, "50000", "0.01045", 12)
	f.store.PutLoan(loan)

	boom := errors.New("connection reset")
	f.store.FailOn("Members.UpdateLimits", boom)

	_, err := f.service.MakePayment(context.Background(), loan.ID, &domain.MakePaymentRequest{Amount: testutil.Dec("5000")})
	assert.ErrorIs(t, err, boom)

	assert.True(t, f.store.Loan(loan.ID).Balance.Equal(testutil.Dec("50000")))
	assert.True(t, f.store.Loan(loan.ID).PrincipalPaid.IsZero())
	assert.Empty(t, f.store.Payments())
	assert.True(t, f.store.Member(member.ID).AvailableLimit.Equal(member.AvailableLimit))
}

func TestLoanService_ApproveAndReject(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	f.store.PutMember(member)

	pending := testutil.NewApprovedLoan(member.ID, "30150", "0.018", 12)
	pending.Status = domain.LoanStatusPending
	pending.ApprovalDate = nil
	f.store.PutLoan(pending)

	resp, err := f.service.ApproveLoan(context.Background(), pending.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.LoanStatusApproved, resp.Loan.Status)
	require.NotNil(t, resp.Loan.ApprovalDate)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), *resp.Loan.ApprovalDate)
	require.NotNil(t, resp.LimitChange)
	assert.True(t, resp.LimitChange.Current.Equal(testutil.Dec("119850")))
	assert.True(t, resp.LimitChange.Increase.Equal(testutil.Dec("-30150")))

	_, err = f.service.RejectLoan(context.Background(), pending.ID)
	assert.ErrorIs(t, err, customError.ErrInvalidStatusTransition)

	_, err = f.service.ApproveLoan(context.Background(), pending.ID)
	assert.ErrorIs(t, err, customError.ErrInvalidStatusTransition)
}

func TestLoanService_RejectLoan(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	f.store.PutMember(member)

	pending := testutil.NewApprovedLoan(member.ID, "1000", "0.018", 6)
	pending.Status = domain.LoanStatusPending
	f.store.PutLoan(pending)

	resp, err := f.service.RejectLoan(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusRejected, resp.Loan.Status)
	assert.Nil(t, resp.LimitChange)

	_, err = f.service.RejectLoan(context.Background(), uuid.New())
	assert.ErrorIs(t, err, customError.ErrLoanNotFound)
}

func TestLoanService_SetStatus(t *testing.T) {
	cache := &testutil.MockScheduleCache{}
	f := newLoanFixture(t, cache)
	member := testutil.NewMember("50000")
	member.AvailableLimit = testutil.Dec("149000")
	f.store.PutMember(member)
	loan := testutil.NewApprovedLoan(member.ID, "1000", "0.018", 6)
	f.store.PutLoan(loan)

	cache.On("Invalidate", mock.Anything, loan.ID).Return(nil).Once()

	resp, err := f.service.SetStatus(context.Background(), loan.ID, domain.LoanStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusPaid, resp.Loan.Status)
	require.NotNil(t, resp.LimitChange)
	assert.True(t, resp.LimitChange.Current.Equal(testutil.Dec("150000")))

	_, err = f.service.SetStatus(context.Background(), loan.ID, domain.LoanStatus("ARCHIVED"))
	assert.ErrorIs(t, err, customError.ErrValidation)

	cache.AssertExpectations(t)
}

func TestLoanService_ImportLoans(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	f.store.PutMember(member)

	tooMuch := testutil.Dec("40000")
	zero := testutil.Dec("0")
	principalPaid := testutil.Dec("5000")
	interestPaid := testutil.Dec("1000")

	resp, err := f.service.ImportLoans(context.Background(), &domain.ImportLoansRequest{
		Rows: []domain.ImportLoanRow{
			{
				MemberID:        member.ID,
				Principal:       testutil.Dec("30000"),
				TermMonths:      12,
				OriginationDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			},
			{
				MemberID:        member.ID,
				Principal:       testutil.Dec("30000"),
				TermMonths:      12,
				OriginationDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				PrincipalPaid:   &tooMuch,
				InterestPaid:    &zero,
			},
			{
				MemberID:        uuid.New(),
				Principal:       testutil.Dec("1000"),
				TermMonths:      6,
				OriginationDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				MemberID:        member.ID,
				Principal:       testutil.Dec("20000"),
				TermMonths:      12,
				OriginationDate: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
				PrincipalPaid:   &principalPaid,
				InterestPaid:    &interestPaid,
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Results, 4)

	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, customError.ErrCodeOverrideExceedsPrincipal, resp.Results[1].Code)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.Equal(t, customError.ErrCodeMemberNotFound, resp.Results[2].Code)
	assert.True(t, resp.Results[3].Success)

	elapsed := f.store.Loan(*resp.Results[0].LoanID)
	assert.Equal(t, domain.LoanStatusApproved, elapsed.Status)
	assert.True(t, elapsed.PrincipalPaid.Equal(testutil.Dec("11783.49")))
	assert.True(t, elapsed.InterestPaid.Equal(testutil.Dec("2296.86")))
	assert.True(t, elapsed.Balance.Equal(testutil.Dec("18366.51")))

	explicit := f.store.Loan(*resp.Results[3].LoanID)
	assert.True(t, explicit.Balance.Equal(testutil.Dec("15100")))

	payments := f.store.Payments()
	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.Equal(t, domain.PaymentKindCatchUp, p.Kind)
	}

	// 150000 - (18366.51 + 15100)
	assert.True(t, f.store.Member(member.ID).AvailableLimit.Equal(testutil.Dec("116533.49")))
}

func TestLoanService_ImportLoans_WithoutLimitRelease(t *testing.T) {
	f := newLoanFixture(t, nil)
	f.config.Business.ReleaseLimitOnImport = false
	member := testutil.NewMember("50000")
	f.store.PutMember(member)

	resp, err := f.service.ImportLoans(context.Background(), &domain.ImportLoansRequest{
		Rows: []domain.ImportLoanRow{{
			MemberID:        member.ID,
			Principal:       testutil.Dec("30000"),
			TermMonths:      12,
			OriginationDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Imported)
	assert.True(t, f.store.Member(member.ID).AvailableLimit.Equal(testutil.Dec("150000")))
}

func TestLoanService_ImportLoans_FutureOriginationHasNoCatchUp(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	f.store.PutMember(member)

	resp, err := f.service.ImportLoans(context.Background(), &domain.ImportLoansRequest{
		Rows: []domain.ImportLoanRow{{
			MemberID:        member.ID,
			Principal:       testutil.Dec("1000"),
			TermMonths:      6,
			OriginationDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}},
	})
	require.NoError(t, err)
	require.True(t, resp.Results[0].Success)

	loan := f.store.Loan(*resp.Results[0].LoanID)
	assert.True(t, loan.PrincipalPaid.IsZero())
	assert.True(t, loan.Balance.Equal(loan.PrincipalWithFee))
	assert.Empty(t, f.store.Payments())
}

func TestLoanService_ImportLoans_RejectsIncompleteRows(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	f.store.PutMember(member)

	principalPaid := testutil.Dec("100")
	subCent := testutil.Dec("100.005")
	zero := testutil.Dec("0")
	fineRate := testutil.Dec("0.0180001")
	origination := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	resp, err := f.service.ImportLoans(context.Background(), &domain.ImportLoansRequest{
		Rows: []domain.ImportLoanRow{
			{MemberID: member.ID, Principal: testutil.Dec("30000"), TermMonths: 12},
			{MemberID: member.ID, Principal: testutil.Dec("30000"), TermMonths: 12, OriginationDate: origination, PrincipalPaid: &principalPaid},
			{MemberID: member.ID, Principal: testutil.Dec("30000"), TermMonths: 12, OriginationDate: origination, InterestPaid: &zero},
			{MemberID: member.ID, Principal: testutil.Dec("30000"), TermMonths: 12, OriginationDate: origination, PrincipalPaid: &subCent, InterestPaid: &zero},
			{MemberID: member.ID, Principal: testutil.Dec("30000"), TermMonths: 12, OriginationDate: origination, MonthlyRate: &fineRate},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Imported)
	assert.Equal(t, 5, resp.Failed)
	wantCodes := []string{
		customError.ErrCodeValidation,
		customError.ErrCodeValidation,
		customError.ErrCodeValidation,
		customError.ErrCodeInvalidLoanParameters,
		customError.ErrCodeInvalidLoanParameters,
	}
	for i, want := range wantCodes {
		assert.False(t, resp.Results[i].Success, "row %d", i+1)
		assert.Equal(t, want, resp.Results[i].Code, "row %d", i+1)
	}

	assert.Zero(t, f.store.LoanCount())
	assert.Empty(t, f.store.Payments())
	assert.Zero(t, f.store.TxCount)
}

func TestLoanService_PreviewLoan_RejectsFineRate(t *testing.T) {
	f := newLoanFixture(t, nil)
	rate := testutil.Dec("0.0104567")

	_, err := f.service.PreviewLoan(context.Background(), &domain.PreviewLoanRequest{
		Principal: testutil.Dec("100000"), MonthlyRate: &rate, TermMonths: 12,
	})
	assert.ErrorIs(t, err, customError.ErrInvalidLoanParameters)
}

func TestLoanService_ImportLoans_TooManyRows(t *testing.T) {
	f := newLoanFixture(t, nil)
	f.config.Business.MaxImportRowsPerUpload = 1

	_, err := f.service.ImportLoans(context.Background(), &domain.ImportLoansRequest{
		Rows: make([]domain.ImportLoanRow, 2),
	})
	assert.ErrorIs(t, err, customError.ErrValidation)
}

func TestLoanService_GetSchedule(t *testing.T) {
	t.Run("cache hit skips the store", func(t *testing.T) {
		cache := &testutil.MockScheduleCache{}
		f := newLoanFixture(t, cache)
		loanID := uuid.New()
		cached := &domain.Schedule{LoanID: &loanID, TermMonths: 3}

		cache.On("Get", mock.Anything, loanID).Return(cached, true, nil).Once()

		schedule, err := f.service.GetSchedule(context.Background(), loanID)
		require.NoError(t, err)
		assert.Same(t, cached, schedule)
		cache.AssertExpectations(t)
	})

	t.Run("cache miss computes from stored terms", func(t *testing.T) {
		cache := &testutil.MockScheduleCache{}
		f := newLoanFixture(t, cache)
		loan := testutil.NewApprovedLoan(uuid.New(), "30150", "0.018", 12)
		loan.ProcessingFee = testutil.Dec("150")
		f.store.PutLoan(loan)

		cache.On("Get", mock.Anything, loan.ID).Return(nil, false, nil).Once()
		cache.On("Set", mock.Anything, loan.ID, mock.AnythingOfType("*domain.Schedule")).Return(nil).Once()

		schedule, err := f.service.GetSchedule(context.Background(), loan.ID)
		require.NoError(t, err)
		assert.True(t, schedule.MonthlyPayment.Equal(testutil.Dec("2816.07")))
		assert.True(t, schedule.ProcessingFee.Equal(testutil.Dec("150")))
		require.Len(t, schedule.Entries, 12)
		assert.Equal(t, utils.CalculateDueDate(loan.OriginationDate, 1), schedule.Entries[0].DueDate)
		assert.True(t, schedule.Entries[11].ClosingBalance.IsZero())
		cache.AssertExpectations(t)
	})

	t.Run("cache failure falls back to the store", func(t *testing.T) {
		cache := &testutil.MockScheduleCache{}
		f := newLoanFixture(t, cache)
		loan := testutil.NewApprovedLoan(uuid.New(), "1005", "0", 3)
		f.store.PutLoan(loan)

		cache.On("Get", mock.Anything, loan.ID).Return(nil, false, customError.WrapCacheError(errors.New("down"))).Once()
		cache.On("Set", mock.Anything, loan.ID, mock.Anything).Return(customError.WrapCacheError(errors.New("down"))).Once()

		schedule, err := f.service.GetSchedule(context.Background(), loan.ID)
		require.NoError(t, err)
		assert.True(t, schedule.MonthlyPayment.Equal(testutil.Dec("335")))
	})

	t.Run("unknown loan", func(t *testing.T) {
		f := newLoanFixture(t, nil)
		_, err := f.service.GetSchedule(context.Background(), uuid.New())
		assert.ErrorIs(t, err, customError.ErrLoanNotFound)
	})
}

func TestLoanService_Listings(t *testing.T) {
	f := newLoanFixture(t, nil)
	member := testutil.NewMember("50000")
	f.store.PutMember(member)
	loan := testutil.NewApprovedLoan(member.ID, "50000", "0.01045", 12)
	f.store.PutLoan(loan)

	later := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.service.MakePayment(context.Background(), loan.ID, &domain.MakePaymentRequest{Amount: testutil.Dec("1000"), AppliedDate: &later})
	require.NoError(t, err)
	_, err = f.service.MakePayment(context.Background(), loan.ID, &domain.MakePaymentRequest{Amount: testutil.Dec("1000"), AppliedDate: &earlier})
	require.NoError(t, err)

	payments, err := f.service.ListPayments(context.Background(), loan.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, earlier, payments[0].AppliedDate)

	loans, err := f.service.ListMemberLoans(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Len(t, loans, 1)

	_, err = f.service.ListMemberLoans(context.Background(), uuid.New())
	assert.ErrorIs(t, err, customError.ErrMemberNotFound)

	got, err := f.service.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.LessThan(loan.Balance))
}
