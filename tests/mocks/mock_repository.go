package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
)

type MockDebtRepository struct {
	mock.Mock
}

func (m *MockDebtRepository) ListActiveDueWithin(ctx context.Context, from time.Time, days int) ([]*domain.Debt, error) {
	args := m.Called(ctx, from, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Debt), args.Error(1)
}

func (m *MockDebtRepository) ListActiveOverdue(ctx context.Context, before time.Time) ([]*domain.Debt, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Debt), args.Error(1)
}

func (m *MockDebtRepository) GetLatestByMember(ctx context.Context, memberID uuid.UUID) (*domain.Debt, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtRepository) MarkOverdue(ctx context.Context, debtID uuid.UUID, lateFee decimal.Decimal) error {
	args := m.Called(ctx, debtID, lateFee)
	return args.Error(0)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) GetLinkedAccount(ctx context.Context, memberID uuid.UUID) (*domain.LinkedAccount, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkedAccount), args.Error(1)
}

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) (bool, error) {
	args := m.Called(ctx, reminder)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepository) Exists(ctx context.Context, memberID uuid.UUID, rtype domain.ReminderType, debtID uuid.UUID) (bool, error) {
	args := m.Called(ctx, memberID, rtype, debtID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepository) LastOverdueAt(ctx context.Context, memberID uuid.UUID) (*time.Time, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockReminderRepository) ListPendingDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	args := m.Called(ctx, id, sentAt)
	return args.Error(0)
}

func (m *MockReminderRepository) IncrementRetry(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockReminderRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReminderRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]*domain.Reminder, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}
