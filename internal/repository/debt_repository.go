package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
)

type debtRepository struct {
	db *sqlx.DB
}

func NewDebtRepository(db *sqlx.DB) DebtRepository {
	return &debtRepository{db: db}
}

func (r *debtRepository) ListActiveDueWithin(ctx context.Context, from time.Time, days int) ([]*domain.Debt, error) {
	// Bounds are day-grained: callers pass the start of the current
	// day and the window runs through the end of day `days`, so a due
	// time late in the day still lands in its trigger window no
	// matter what hour the scan runs.
	query := `
		SELECT id, member_id, period_month, period_year, amount, due_date, status, late_fee, created_at, updated_at
		FROM debts
		WHERE status = $1 AND due_date >= $2 AND due_date < $3
		ORDER BY due_date
	`

	var debts []*domain.Debt
	err := r.db.SelectContext(ctx, &debts, query, domain.DebtStatusActive, from, from.AddDate(0, 0, days+1))
	if err != nil {
		return nil, err
	}

	return debts, nil
}

func (r *debtRepository) ListActiveOverdue(ctx context.Context, before time.Time) ([]*domain.Debt, error) {
	// Includes debts already flipped to overdue status: the cadence
	// reminder recurs until the debt is actually paid. Partially paid
	// debts keep their own lifecycle and are never swept in here.
	query := `
		SELECT id, member_id, period_month, period_year, amount, due_date, status, late_fee, created_at, updated_at
		FROM debts
		WHERE status IN ($1, $2) AND due_date < $3
		ORDER BY due_date
	`

	var debts []*domain.Debt
	err := r.db.SelectContext(ctx, &debts, query, domain.DebtStatusActive, domain.DebtStatusOverdue, before)
	if err != nil {
		return nil, err
	}

	return debts, nil
}

func (r *debtRepository) GetLatestByMember(ctx context.Context, memberID uuid.UUID) (*domain.Debt, error) {
	query := `
		SELECT id, member_id, period_month, period_year, amount, due_date, status, late_fee, created_at, updated_at
		FROM debts
		WHERE member_id = $1 AND status <> $2
		ORDER BY period_year DESC, period_month DESC
		LIMIT 1
	`

	var debt domain.Debt
	err := r.db.GetContext(ctx, &debt, query, memberID, domain.DebtStatusPaid)
	if err != nil {
		return nil, err
	}

	return &debt, nil
}

func (r *debtRepository) MarkOverdue(ctx context.Context, debtID uuid.UUID, lateFee decimal.Decimal) error {
	// The status guard keeps the late fee from being applied twice.
	query := `
		UPDATE debts
		SET status = $2, late_fee = $3, updated_at = $4
		WHERE id = $1 AND status <> $2
	`

	_, err := r.db.ExecContext(ctx, query, debtID, domain.DebtStatusOverdue, lateFee, time.Now())
	return err
}
