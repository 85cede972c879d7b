package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
)

type MockSchedulerService struct {
	mock.Mock
}

func (m *MockSchedulerService) RunScheduler(ctx context.Context) (*domain.SchedulerRunResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchedulerRunResult), args.Error(1)
}

func (m *MockSchedulerService) SendPendingMessages(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSchedulerService) TriggerProactiveMessage(ctx context.Context, memberID uuid.UUID, rtype domain.ReminderType) bool {
	args := m.Called(ctx, memberID, rtype)
	return args.Bool(0)
}

func (m *MockSchedulerService) ListUnreachable(ctx context.Context) ([]*domain.Reminder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}
