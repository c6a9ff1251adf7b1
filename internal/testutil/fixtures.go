package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/sacco-engine/internal/config"
	"github.com/segyhp/sacco-engine/internal/domain"
)

// FixedNow is the clock used across service and handler tests.
var FixedNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func Clock() time.Time {
	return FixedNow
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TestConfig mirrors the production defaults.
func TestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080", Env: "test"},
		Business: config.BusinessConfig{
			DefaultMonthlyRate:     "0.018",
			ProcessingFeeRate:      "0.005",
			LimitMultiplier:        "3",
			MemberGuarantors:       2,
			ChurchOfficials:        1,
			Witnesses:              1,
			ReleaseLimitOnImport:   true,
			MaxImportRowsPerUpload: 100,
		},
		Redis: config.RedisConfig{ScheduleTTL: "1h"},
	}
}

// NewMember builds a member whose stored limits are consistent with no outstanding loans.
func NewMember(savings string) *domain.Member {
	s := Dec(savings)
	limit := s.Mul(decimal.NewFromInt(3))
	return &domain.Member{
		ID:             uuid.New(),
		MemberNo:       "M-" + uuid.NewString()[:6],
		FullName:       "Wanjiru Kamau",
		Savings:        s,
		LoanLimit:      limit,
		AvailableLimit: limit,
		CreatedAt:      FixedNow,
		UpdatedAt:      FixedNow,
	}
}

// NewApprovedLoan builds an APPROVED loan with nothing repaid yet.
func NewApprovedLoan(memberID uuid.UUID, principalWithFee, rate string, term int) *domain.Loan {
	pwf := Dec(principalWithFee)
	approved := FixedNow.AddDate(0, -1, 0)
	return &domain.Loan{
		ID:               uuid.New(),
		MemberID:         memberID,
		Principal:        pwf,
		ProcessingFee:    decimal.Zero,
		PrincipalWithFee: pwf,
		MonthlyRate:      Dec(rate),
		TermMonths:       term,
		MonthlyPayment:   decimal.Zero,
		PrincipalPaid:    decimal.Zero,
		InterestPaid:     decimal.Zero,
		Balance:          pwf,
		Status:           domain.LoanStatusApproved,
		OriginationDate:  approved,
		ApprovalDate:     &approved,
		CreatedAt:        approved,
		UpdatedAt:        approved,
	}
}

// ValidGuarantors satisfies the default guarantor requirement.
func ValidGuarantors() []domain.GuarantorInput {
	return []domain.GuarantorInput{
		{Kind: domain.GuarantorKindMember, Name: "Otieno Ochieng", Phone: "0711000001"},
		{Kind: domain.GuarantorKindMember, Name: "Achieng Atieno", Phone: "0711000002"},
		{Kind: domain.GuarantorKindChurchOfficial, Name: "Rev. Mwangi", Phone: "0711000003"},
		{Kind: domain.GuarantorKindWitness, Name: "Njeri Wambui", Phone: "0711000004"},
	}
}
