package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
)

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT id, bpjs_number, name, created_at
		FROM members
		WHERE id = $1
	`

	var member domain.Member
	err := r.db.GetContext(ctx, &member, query, id)
	if err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) GetLinkedAccount(ctx context.Context, memberID uuid.UUID) (*domain.LinkedAccount, error) {
	query := `
		SELECT id, member_id, platform, address
		FROM linked_accounts
		WHERE member_id = $1
	`

	var account domain.LinkedAccount
	err := r.db.GetContext(ctx, &account, query, memberID)
	if err != nil {
		// An unlinked member is a normal state, not an error
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}
