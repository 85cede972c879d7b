package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
)

type reminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) (bool, error) {
	// ON CONFLICT backs the per-window uniqueness guarantee even when
	// two runs race past the Exists check. The partial unique index
	// covers the due-window types only; overdue reminders recur and
	// are guarded by LastOverdueAt instead.
	query := `
		INSERT INTO reminders (id, member_id, debt_id, reminder_type, scheduled_at, sent_at, content, status, retry_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.MemberID,
		reminder.DebtID,
		reminder.ReminderType,
		reminder.ScheduledAt,
		reminder.SentAt,
		reminder.Content,
		reminder.Status,
		reminder.RetryCount,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *reminderRepository) Exists(ctx context.Context, memberID uuid.UUID, rtype domain.ReminderType, debtID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reminders
			WHERE member_id = $1 AND reminder_type = $2 AND debt_id = $3
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, memberID, rtype, debtID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *reminderRepository) LastOverdueAt(ctx context.Context, memberID uuid.UUID) (*time.Time, error) {
	query := `
		SELECT created_at FROM reminders
		WHERE member_id = $1 AND reminder_type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var createdAt time.Time
	err := r.db.GetContext(ctx, &createdAt, query, memberID, domain.ReminderTypeOverdue)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &createdAt, nil
}

func (r *reminderRepository) ListPendingDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	query := `
		SELECT id, member_id, debt_id, reminder_type, scheduled_at, sent_at, content, status, retry_count, created_at, updated_at
		FROM reminders
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at
		LIMIT $3
	`

	var reminders []*domain.Reminder
	err := r.db.SelectContext(ctx, &reminders, query, domain.ReminderStatusPending, now, limit)
	if err != nil {
		return nil, err
	}

	return reminders, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE reminders
		SET status = $2, sent_at = $3, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, domain.ReminderStatusSent, sentAt)
	return err
}

func (r *reminderRepository) IncrementRetry(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE reminders
		SET retry_count = retry_count + 1, updated_at = $2
		WHERE id = $1
		RETURNING retry_count
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, id, time.Now())
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *reminderRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reminders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, domain.ReminderStatusFailed, time.Now())
	return err
}

func (r *reminderRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]*domain.Reminder, error) {
	query := `
		SELECT id, member_id, debt_id, reminder_type, scheduled_at, sent_at, content, status, retry_count, created_at, updated_at
		FROM reminders
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
	`

	var reminders []*domain.Reminder
	err := r.db.SelectContext(ctx, &reminders, query, domain.ReminderStatusPending, cutoff)
	if err != nil {
		return nil, err
	}

	return reminders, nil
}
