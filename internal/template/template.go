// Package template renders the outbound reminder copy. Rendering is
// pure string interpolation; content is produced once at generation
// time so template changes never touch already-queued reminders.
package template

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
	"github.com/yudhapr/bpjs-reminder-engine/pkg/utils"
)

// Params carries everything a reminder message interpolates.
type Params struct {
	Name        string
	Amount      decimal.Decimal
	DueDate     time.Time
	DaysOverdue int
	Location    *time.Location
}

// Render produces the message text for a reminder type. The switch is
// exhaustive over domain.ReminderType; an unknown type is an error,
// not a fallback message.
func Render(rtype domain.ReminderType, p Params) (string, error) {
	switch rtype {
	case domain.ReminderType7Days:
		return fmt.Sprintf(
			"Halo %s, iuran BPJS Kesehatan Anda sebesar Rp %s akan jatuh tempo pada %s (7 hari lagi). Mohon siapkan pembayaran Anda. Terima kasih.",
			p.Name, utils.FormatRupiah(p.Amount), utils.FormatTanggal(p.DueDate, p.Location),
		), nil

	case domain.ReminderType3Days:
		return fmt.Sprintf(
			"Halo %s, iuran BPJS Kesehatan Anda sebesar Rp %s akan jatuh tempo pada %s (3 hari lagi). Segera lakukan pembayaran agar kepesertaan Anda tetap aktif.",
			p.Name, utils.FormatRupiah(p.Amount), utils.FormatTanggal(p.DueDate, p.Location),
		), nil

	case domain.ReminderType1Day:
		return fmt.Sprintf(
			"Halo %s, iuran BPJS Kesehatan Anda sebesar Rp %s jatuh tempo besok, %s. Mohon lakukan pembayaran hari ini untuk menghindari denda.",
			p.Name, utils.FormatRupiah(p.Amount), utils.FormatTanggal(p.DueDate, p.Location),
		), nil

	case domain.ReminderTypeOverdue:
		return fmt.Sprintf(
			"Halo %s, iuran BPJS Kesehatan Anda sebesar Rp %s telah melewati jatuh tempo selama %d hari. Mohon segera lakukan pembayaran untuk menghindari denda tambahan dan penonaktifan kepesertaan.",
			p.Name, utils.FormatRupiah(p.Amount), p.DaysOverdue,
		), nil
	}

	return "", fmt.Errorf("no template for reminder type %q", rtype)
}
