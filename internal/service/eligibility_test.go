package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/segyhp/sacco-engine/internal/domain"
	"github.com/segyhp/sacco-engine/internal/testutil"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

func newChecker() *EligibilityChecker {
	return NewEligibilityChecker(decimal.NewFromInt(3), map[domain.GuarantorKind]int{
		domain.GuarantorKindMember:         2,
		domain.GuarantorKindChurchOfficial: 1,
		domain.GuarantorKindWitness:        1,
	})
}

func TestNewEligibilityCheckerFromConfig(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.Business.Witnesses = 0

	checker := NewEligibilityCheckerFromConfig(cfg)
	assert.True(t, checker.TotalLimit(testutil.Dec("1000")).Equal(testutil.Dec("3000")))

	guarantors := testutil.ValidGuarantors()[:3]
	assert.NoError(t, checker.CheckGuarantors(guarantors))
	assert.ErrorIs(t, checker.CheckGuarantors(testutil.ValidGuarantors()), customError.ErrGuarantorRequirementNotMet)
}

func TestEligibilityChecker_Limits(t *testing.T) {
	checker := newChecker()
	savings := testutil.Dec("50000")

	assert.True(t, checker.TotalLimit(savings).Equal(testutil.Dec("150000")))
	assert.True(t, checker.AvailableLimit(savings, testutil.Dec("30000")).Equal(testutil.Dec("120000")))
	assert.True(t, checker.AvailableLimit(savings, testutil.Dec("200000")).IsZero())
}

func TestEligibilityChecker_CanOriginate(t *testing.T) {
	checker := newChecker()
	available := testutil.Dec("120000")

	tests := []struct {
		name       string
		requested  string
		hasPending bool
		guarantors []domain.GuarantorInput
		wantErr    error
	}{
		{
			name:       "within limit",
			requested:  "120000",
			guarantors: testutil.ValidGuarantors(),
		},
		{
			name:       "above available limit",
			requested:  "130000",
			guarantors: testutil.ValidGuarantors(),
			wantErr:    customError.ErrLimitExceeded,
		},
		{
			name:       "pending loan wins over limit",
			requested:  "130000",
			hasPending: true,
			guarantors: testutil.ValidGuarantors(),
			wantErr:    customError.ErrPendingLoanExists,
		},
		{
			name:       "missing witness",
			requested:  "1000",
			guarantors: testutil.ValidGuarantors()[:3],
			wantErr:    customError.ErrGuarantorRequirementNotMet,
		},
		{
			name:      "too many member guarantors",
			requested: "1000",
			guarantors: append(testutil.ValidGuarantors(), domain.GuarantorInput{
				Kind: domain.GuarantorKindMember, Name: "Extra", Phone: "0700000000",
			}),
			wantErr: customError.ErrGuarantorRequirementNotMet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.CanOriginate("member-1", testutil.Dec(tt.requested), available, tt.hasPending, tt.guarantors)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotEmpty(t, customError.Message(err))
		})
	}
}

func TestEligibilityChecker_Recompute(t *testing.T) {
	checker := newChecker()
	member := testutil.NewMember("50000")
	member.AvailableLimit = testutil.Dec("100000")

	change := checker.Recompute(member, testutil.Dec("45522.50"))

	assert.True(t, member.LoanLimit.Equal(testutil.Dec("150000")))
	assert.True(t, member.AvailableLimit.Equal(testutil.Dec("104477.50")))
	assert.True(t, change.Previous.Equal(testutil.Dec("100000")))
	assert.True(t, change.Current.Equal(testutil.Dec("104477.50")))
	assert.True(t, change.Increase.Equal(testutil.Dec("4477.50")))
	assert.Equal(t, member.ID, change.MemberID)
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from, to domain.LoanStatus
		ok       bool
	}{
		{domain.LoanStatusPending, domain.LoanStatusApproved, true},
		{domain.LoanStatusPending, domain.LoanStatusRejected, true},
		{domain.LoanStatusPending, domain.LoanStatusPaid, false},
		{domain.LoanStatusApproved, domain.LoanStatusRejected, false},
		{domain.LoanStatusApproved, domain.LoanStatusPaid, false},
		{domain.LoanStatusApproved, domain.LoanStatusApproved, false},
		{domain.LoanStatusRejected, domain.LoanStatusApproved, false},
		{domain.LoanStatusPaid, domain.LoanStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, customError.ErrInvalidStatusTransition)
			}
		})
	}
}
