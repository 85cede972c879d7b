package domain

import (
	"time"

	"github.com/google/uuid"
)

// Messaging platforms a member can be linked to.
const (
	PlatformTelegram = "telegram"
	PlatformWhatsApp = "whatsapp"
)

// Member is an insured individual tracked for contribution payments.
type Member struct {
	ID         uuid.UUID `json:"id" db:"id"`
	BPJSNumber string    `json:"bpjs_number" db:"bpjs_number"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// LinkedAccount is the messaging identity a member is reachable at.
// A member without a linked account cannot receive reminders.
type LinkedAccount struct {
	ID       uuid.UUID `json:"id" db:"id"`
	MemberID uuid.UUID `json:"member_id" db:"member_id"`
	Platform string    `json:"platform" db:"platform"`
	// Address is the platform-specific identity: a chat id for
	// telegram, a phone number for whatsapp.
	Address string `json:"address" db:"address"`
}
