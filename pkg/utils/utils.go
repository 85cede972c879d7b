package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// BeginningOfDay truncates a time to midnight in the given location.
func BeginningOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween counts whole calendar days from `from` to `to`, both
// normalized to midnight in loc first. Negative when `to` is in the
// past. Normalizing keeps the count stable no matter what hour of the
// day the caller runs at.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	a := BeginningOfDay(from, loc)
	b := BeginningOfDay(to, loc)
	return int(b.Sub(a).Hours() / 24)
}

// AtHour returns the given day at hour:00 in loc.
func AtHour(t time.Time, hour int, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, loc)
}

// FormatRupiah renders an amount with Indonesian thousand separators,
// e.g. 150000 -> "150.000". Fractional rupiah do not exist; the
// decimal is rendered at its integer part.
func FormatRupiah(amount decimal.Decimal) string {
	s := amount.Truncate(0).String()

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// FormatTanggal renders a date the way members read it,
// e.g. "2 Januari 2026".
func FormatTanggal(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[int(t.Month())-1], t.Year())
}
