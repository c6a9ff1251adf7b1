package service

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/sacco-engine/internal/config"
	"github.com/segyhp/sacco-engine/internal/domain"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
	"github.com/segyhp/sacco-engine/pkg/utils"
)

// EligibilityChecker derives member loan limits and gates new originations.
type EligibilityChecker struct {
	multiplier   decimal.Decimal
	requirements map[domain.GuarantorKind]int
}

func NewEligibilityChecker(multiplier decimal.Decimal, requirements map[domain.GuarantorKind]int) *EligibilityChecker {
	return &EligibilityChecker{
		multiplier:   multiplier,
		requirements: requirements,
	}
}

// NewEligibilityCheckerFromConfig reads the multiplier and guarantor counts from business settings.
func NewEligibilityCheckerFromConfig(cfg *config.Config) *EligibilityChecker {
	return NewEligibilityChecker(cfg.GetLimitMultiplier(), map[domain.GuarantorKind]int{
		domain.GuarantorKindMember:         cfg.Business.MemberGuarantors,
		domain.GuarantorKindChurchOfficial: cfg.Business.ChurchOfficials,
		domain.GuarantorKindWitness:        cfg.Business.Witnesses,
	})
}

// TotalLimit is savings times the configured multiplier.
func (c *EligibilityChecker) TotalLimit(savings decimal.Decimal) decimal.Decimal {
	return utils.RoundMoney(savings.Mul(c.multiplier))
}

// AvailableLimit is the headroom left after outstanding approved balances, never negative.
func (c *EligibilityChecker) AvailableLimit(savings, outstanding decimal.Decimal) decimal.Decimal {
	return utils.MaxDecimal(decimal.Zero, c.TotalLimit(savings).Sub(outstanding))
}

// CanOriginate checks, in order, the single-pending rule, the available limit and
// the guarantor counts.
func (c *EligibilityChecker) CanOriginate(memberID string, requested, available decimal.Decimal, hasPending bool, guarantors []domain.GuarantorInput) error {
	if hasPending {
		return customError.WrapPendingLoanExists(memberID)
	}
	if requested.GreaterThan(available) {
		return customError.WrapLimitExceeded(requested.StringFixed(2), available.StringFixed(2))
	}
	return c.CheckGuarantors(guarantors)
}

// CheckGuarantors requires exactly the configured number of guarantors per kind.
func (c *EligibilityChecker) CheckGuarantors(guarantors []domain.GuarantorInput) error {
	counts := domain.CountByKind(guarantors)
	for _, kind := range domain.GuarantorKinds {
		if counts[kind] != c.requirements[kind] {
			return customError.WrapGuarantorRequirementNotMet(string(kind), c.requirements[kind], counts[kind])
		}
	}
	return nil
}

// Recompute refreshes member's limit fields from its savings and outstanding
// balance and reports how the available limit moved.
func (c *EligibilityChecker) Recompute(member *domain.Member, outstanding decimal.Decimal) domain.LoanLimitChange {
	previous := member.AvailableLimit
	member.LoanLimit = c.TotalLimit(member.Savings)
	member.AvailableLimit = c.AvailableLimit(member.Savings, outstanding)

	return domain.LoanLimitChange{
		MemberID: member.ID,
		Previous: previous,
		Current:  member.AvailableLimit,
		Increase: member.AvailableLimit.Sub(previous),
	}
}

// CheckTransition enforces the approval state machine. Only PENDING loans move,
// and only to APPROVED or REJECTED.
func CheckTransition(from, to domain.LoanStatus) error {
	if from == domain.LoanStatusPending && (to == domain.LoanStatusApproved || to == domain.LoanStatusRejected) {
		return nil
	}
	return customError.WrapInvalidStatusTransition(string(from), string(to))
}
