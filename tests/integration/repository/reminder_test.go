package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
	"github.com/yudhapr/bpjs-reminder-engine/internal/repository"
)

var testDB *sqlx.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		// No database available; every test in this package skips
		os.Exit(m.Run())
	}

	var err error
	testDB, err = sqlx.Connect("postgres", dsn)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	if err := executeInitSQL(testDB); err != nil {
		panic(fmt.Sprintf("Failed to initialize database schema: %v", err))
	}

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func executeInitSQL(db *sqlx.DB) error {
	sqlBytes, err := os.ReadFile("../../../scripts/init.sql")
	if err != nil {
		return fmt.Errorf("failed to read init.sql: %w", err)
	}

	if _, err := db.Exec(string(sqlBytes)); err != nil {
		return fmt.Errorf("failed to execute init.sql: %w", err)
	}

	return nil
}

func setupTestDB(t *testing.T) *sqlx.DB {
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	cleanupTestData(testDB)
	return testDB
}

func cleanupTestData(db *sqlx.DB) {
	db.Exec("DELETE FROM reminders")
	db.Exec("DELETE FROM debts")
	db.Exec("DELETE FROM linked_accounts")
	db.Exec("DELETE FROM members")
}

func insertMember(t *testing.T, db *sqlx.DB) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(
		"INSERT INTO members (id, bpjs_number, name) VALUES ($1, $2, $3)",
		id, fmt.Sprintf("%013d", time.Now().UnixNano()%1e13), "Budi Santoso",
	)
	require.NoError(t, err)
	return id
}

func insertDebt(t *testing.T, db *sqlx.DB, memberID uuid.UUID, dueDate time.Time, status string) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(
		"INSERT INTO debts (id, member_id, period_month, period_year, amount, due_date, status) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		id, memberID, int(dueDate.Month()), dueDate.Year(), 150000, dueDate, status,
	)
	require.NoError(t, err)
	return id
}

func newReminder(memberID, debtID uuid.UUID, rtype domain.ReminderType, scheduledAt time.Time) *domain.Reminder {
	now := time.Now()
	return &domain.Reminder{
		ID:           uuid.New(),
		MemberID:     memberID,
		DebtID:       uuid.NullUUID{UUID: debtID, Valid: true},
		ReminderType: rtype,
		ScheduledAt:  scheduledAt,
		Content:      "Halo Budi Santoso, iuran BPJS Kesehatan Anda sebesar Rp 150.000 akan jatuh tempo.",
		Status:       domain.ReminderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestReminderRepository_CreateEnforcesWindowUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReminderRepository(db)
	ctx := context.Background()

	memberID := insertMember(t, db)
	debtID := insertDebt(t, db, memberID, time.Now().AddDate(0, 0, 7), domain.DebtStatusActive)

	first := newReminder(memberID, debtID, domain.ReminderType7Days, time.Now())
	inserted, err := repo.Create(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	// A second insert for the same (member, type, debt) must lose the
	// race silently, not error
	second := newReminder(memberID, debtID, domain.ReminderType7Days, time.Now())
	inserted, err = repo.Create(ctx, second)
	require.NoError(t, err)
	assert.False(t, inserted)

	exists, err := repo.Exists(ctx, memberID, domain.ReminderType7Days, debtID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestReminderRepository_OverdueTypeMayRecur(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReminderRepository(db)
	ctx := context.Background()

	memberID := insertMember(t, db)
	debtID := insertDebt(t, db, memberID, time.Now().AddDate(0, 0, -6), domain.DebtStatusOverdue)

	for i := 0; i < 2; i++ {
		inserted, err := repo.Create(ctx, newReminder(memberID, debtID, domain.ReminderTypeOverdue, time.Now()))
		require.NoError(t, err)
		assert.True(t, inserted)
	}

	last, err := repo.LastOverdueAt(ctx, memberID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.WithinDuration(t, time.Now(), *last, time.Minute)
}

func TestReminderRepository_ListPendingDueHonorsScheduleAndLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReminderRepository(db)
	ctx := context.Background()

	memberID := insertMember(t, db)
	debtID := insertDebt(t, db, memberID, time.Now().AddDate(0, 0, 7), domain.DebtStatusActive)

	past := newReminder(memberID, debtID, domain.ReminderType7Days, time.Now().Add(-time.Hour))
	future := newReminder(memberID, debtID, domain.ReminderType3Days, time.Now().Add(time.Hour))

	for _, r := range []*domain.Reminder{past, future} {
		_, err := repo.Create(ctx, r)
		require.NoError(t, err)
	}

	due, err := repo.ListPendingDue(ctx, time.Now(), 50)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, past.ID, due[0].ID)
}

func TestReminderRepository_SendLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReminderRepository(db)
	ctx := context.Background()

	memberID := insertMember(t, db)
	debtID := insertDebt(t, db, memberID, time.Now().AddDate(0, 0, 7), domain.DebtStatusActive)

	reminder := newReminder(memberID, debtID, domain.ReminderType1Day, time.Now().Add(-time.Hour))
	_, err := repo.Create(ctx, reminder)
	require.NoError(t, err)

	count, err := repo.IncrementRetry(ctx, reminder.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.MarkSent(ctx, reminder.ID, time.Now()))

	due, err := repo.ListPendingDue(ctx, time.Now(), 50)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestReminderRepository_MarkFailedIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReminderRepository(db)
	ctx := context.Background()

	memberID := insertMember(t, db)
	debtID := insertDebt(t, db, memberID, time.Now().AddDate(0, 0, 7), domain.DebtStatusActive)

	reminder := newReminder(memberID, debtID, domain.ReminderType1Day, time.Now().Add(-time.Hour))
	_, err := repo.Create(ctx, reminder)
	require.NoError(t, err)

	require.NoError(t, repo.MarkFailed(ctx, reminder.ID))

	due, err := repo.ListPendingDue(ctx, time.Now(), 50)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestMemberRepository_UnlinkedMemberReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewMemberRepository(db)
	ctx := context.Background()

	memberID := insertMember(t, db)

	account, err := repo.GetLinkedAccount(ctx, memberID)
	require.NoError(t, err)
	assert.Nil(t, account)
}
