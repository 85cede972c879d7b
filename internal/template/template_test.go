package template

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
)

var jakarta, _ = time.LoadLocation("Asia/Jakarta")

func TestRender_DueWindows(t *testing.T) {
	params := Params{
		Name:     "Budi Santoso",
		Amount:   decimal.NewFromInt(150000),
		DueDate:  time.Date(2026, 3, 17, 0, 0, 0, 0, jakarta),
		Location: jakarta,
	}

	tests := []struct {
		rtype    domain.ReminderType
		contains []string
	}{
		{domain.ReminderType7Days, []string{"Budi Santoso", "Rp 150.000", "17 Maret 2026", "7 hari"}},
		{domain.ReminderType3Days, []string{"Budi Santoso", "Rp 150.000", "17 Maret 2026", "3 hari"}},
		{domain.ReminderType1Day, []string{"Budi Santoso", "Rp 150.000", "besok"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.rtype), func(t *testing.T) {
			msg, err := Render(tt.rtype, params)
			assert.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, msg, want)
			}
		})
	}
}

func TestRender_Overdue(t *testing.T) {
	msg, err := Render(domain.ReminderTypeOverdue, Params{
		Name:        "Siti Aminah",
		Amount:      decimal.NewFromInt(155000),
		DaysOverdue: 3,
		Location:    jakarta,
	})

	assert.NoError(t, err)
	assert.Contains(t, msg, "Siti Aminah")
	assert.Contains(t, msg, "Rp 155.000")
	assert.Contains(t, msg, "3 hari")
}

func TestRender_UnknownTypeErrors(t *testing.T) {
	_, err := Render(domain.ReminderType("reminder_14d"), Params{Location: jakarta})
	assert.Error(t, err)
}
