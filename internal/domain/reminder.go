package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ReminderStatusPending = "pending"
	ReminderStatusSent    = "sent"
	ReminderStatusFailed  = "failed"
)

// ReminderType is the trigger category for a reminder. The due-window
// types fire once per debt; overdue recurs while the debt stays unpaid.
type ReminderType string

const (
	ReminderType7Days   ReminderType = "reminder_7d"
	ReminderType3Days   ReminderType = "reminder_3d"
	ReminderType1Day    ReminderType = "reminder_1d"
	ReminderTypeOverdue ReminderType = "overdue"
)

// ParseReminderType validates an externally supplied reminder type.
func ParseReminderType(s string) (ReminderType, error) {
	switch ReminderType(s) {
	case ReminderType7Days, ReminderType3Days, ReminderType1Day, ReminderTypeOverdue:
		return ReminderType(s), nil
	}
	return "", fmt.Errorf("unknown reminder type %q", s)
}

// Reminder is a scheduled or sent proactive message tied to a member
// and a trigger window. Rows are never deleted; the table is the audit
// trail of what was communicated and when.
type Reminder struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	MemberID     uuid.UUID     `json:"member_id" db:"member_id"`
	DebtID       uuid.NullUUID `json:"debt_id" db:"debt_id"`
	ReminderType ReminderType  `json:"reminder_type" db:"reminder_type"`
	ScheduledAt  time.Time     `json:"scheduled_at" db:"scheduled_at"`
	SentAt       *time.Time    `json:"sent_at" db:"sent_at"`
	Content      string        `json:"content" db:"content"`
	Status       string        `json:"status" db:"status"`
	RetryCount   int           `json:"retry_count" db:"retry_count"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type TriggerRequest struct {
	MemberID     string `json:"member_id" validate:"required,uuid4"`
	ReminderType string `json:"reminder_type" validate:"required,oneof=reminder_7d reminder_3d reminder_1d overdue"`
}

type TriggerResponse struct {
	MemberID     string `json:"member_id"`
	ReminderType string `json:"reminder_type"`
	Delivered    bool   `json:"delivered"`
}

// SchedulerRunResult is what one orchestrated run reports back.
type SchedulerRunResult struct {
	Generated int `json:"generated"`
	Sent      int `json:"sent"`
}

type UnreachableResponse struct {
	Count     int         `json:"count"`
	Reminders []*Reminder `json:"reminders"`
}
