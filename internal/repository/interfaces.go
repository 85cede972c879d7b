package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
)

// DebtRepository defines the ledger reads the reminder engine needs,
// plus the single write it owns: the transition to overdue.
type DebtRepository interface {
	// ListActiveDueWithin returns active debts due within the next
	// `days` calendar days. `from` must be the start of the current
	// day; the window covers days 0 through `days` inclusive, each at
	// day grain.
	ListActiveDueWithin(ctx context.Context, from time.Time, days int) ([]*domain.Debt, error)

	// ListActiveOverdue returns active and overdue debts whose due
	// date is before `before` (the start of the current day)
	ListActiveOverdue(ctx context.Context, before time.Time) ([]*domain.Debt, error)

	// GetLatestByMember returns the member's most recent unpaid debt
	GetLatestByMember(ctx context.Context, memberID uuid.UUID) (*domain.Debt, error)

	// MarkOverdue sets a debt's status to overdue and applies the late
	// fee. Idempotent: a no-op on a debt that is already overdue.
	MarkOverdue(ctx context.Context, debtID uuid.UUID, lateFee decimal.Decimal) error
}

// MemberRepository defines the member directory reads
type MemberRepository interface {
	// GetByID retrieves a member by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)

	// GetLinkedAccount returns the member's messaging identity, or
	// (nil, nil) when the member has never linked one
	GetLinkedAccount(ctx context.Context, memberID uuid.UUID) (*domain.LinkedAccount, error)
}

// ReminderRepository owns the reminder table, the engine's durable
// state and audit trail
type ReminderRepository interface {
	// Create inserts a reminder. For the due-window types the insert
	// is guarded by a unique index on (member_id, reminder_type,
	// debt_id); Create reports false without error when the row
	// already existed.
	Create(ctx context.Context, reminder *domain.Reminder) (bool, error)

	// Exists reports whether a reminder of this type already exists
	// for the member/debt pair
	Exists(ctx context.Context, memberID uuid.UUID, rtype domain.ReminderType, debtID uuid.UUID) (bool, error)

	// LastOverdueAt returns the creation time of the member's most
	// recent overdue-type reminder, or (nil, nil) when none exists
	LastOverdueAt(ctx context.Context, memberID uuid.UUID) (*time.Time, error)

	// ListPendingDue returns pending reminders whose scheduled time
	// has passed, oldest first, bounded by limit
	ListPendingDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error)

	// MarkSent transitions a reminder to sent
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	// IncrementRetry bumps the retry counter and returns the new count
	IncrementRetry(ctx context.Context, id uuid.UUID) (int, error)

	// MarkFailed transitions a reminder to its terminal failed state
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// ListStalePending returns pending reminders created before the
	// cutoff, for the operator-facing unreachable queue
	ListStalePending(ctx context.Context, cutoff time.Time) ([]*domain.Reminder, error)
}
