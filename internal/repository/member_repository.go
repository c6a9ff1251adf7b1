package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/segyhp/sacco-engine/internal/domain"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

const memberColumns = `id, member_no, full_name, savings, loan_limit, available_limit, created_at, updated_at`

type memberRepository struct {
	db dbtx
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.MemberNo,
		member.FullName,
		member.Savings,
		member.LoanLimit,
		member.AvailableLimit,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		return customError.WrapDatabaseError(fmt.Errorf("create member: %w", err))
	}

	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	return r.get(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
}

func (r *memberRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	return r.get(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1 FOR UPDATE`, id)
}

func (r *memberRepository) get(ctx context.Context, query string, id uuid.UUID) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(fmt.Errorf("get member: %w", err))
	}

	return &member, nil
}

func (r *memberRepository) UpdateLimits(ctx context.Context, member *domain.Member) error {
	query := `
		UPDATE members
		SET savings = $2, loan_limit = $3, available_limit = $4, updated_at = $5
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.Savings,
		member.LoanLimit,
		member.AvailableLimit,
		member.UpdatedAt,
	)
	if err != nil {
		return customError.WrapDatabaseError(fmt.Errorf("update member limits: %w", err))
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return customError.WrapMemberNotFound(member.ID.String())
	}

	return nil
}

func (r *memberRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM members ORDER BY member_no`); err != nil {
		return nil, customError.WrapDatabaseError(fmt.Errorf("list members: %w", err))
	}

	return ids, nil
}
