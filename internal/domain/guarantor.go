package domain

import (
	"time"

	"github.com/google/uuid"
)

type GuarantorKind string

const (
	GuarantorKindMember         GuarantorKind = "MEMBER"
	GuarantorKindChurchOfficial GuarantorKind = "CHURCH_OFFICIAL"
	GuarantorKindWitness        GuarantorKind = "WITNESS"
)

// GuarantorKinds lists every kind in the order requirements are checked.
var GuarantorKinds = []GuarantorKind{
	GuarantorKindMember,
	GuarantorKindChurchOfficial,
	GuarantorKindWitness,
}

type Guarantor struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	LoanID    uuid.UUID     `json:"loan_id" db:"loan_id"`
	Kind      GuarantorKind `json:"kind" db:"kind"`
	Name      string        `json:"name" db:"name"`
	Phone     string        `json:"phone" db:"phone"`
	MemberID  *uuid.UUID    `json:"member_id,omitempty" db:"member_id"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

type GuarantorInput struct {
	Kind     GuarantorKind `json:"kind" validate:"required,oneof=MEMBER CHURCH_OFFICIAL WITNESS"`
	Name     string        `json:"name" validate:"required,max=120"`
	Phone    string        `json:"phone" validate:"required,max=20"`
	MemberID *uuid.UUID    `json:"member_id,omitempty"`
}

// CountByKind tallies guarantors per kind.
func CountByKind(inputs []GuarantorInput) map[GuarantorKind]int {
	counts := make(map[GuarantorKind]int, len(GuarantorKinds))
	for _, g := range inputs {
		counts[g.Kind]++
	}
	return counts
}
