package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSender stands in for a channel adapter. Platform is fixed at
// construction so a registry can hold several.
type MockSender struct {
	mock.Mock
	PlatformName string
}

func NewMockSender(platform string) *MockSender {
	return &MockSender{PlatformName: platform}
}

func (m *MockSender) SendText(ctx context.Context, address, text string) error {
	args := m.Called(ctx, address, text)
	return args.Error(0)
}

func (m *MockSender) Platform() string {
	return m.PlatformName
}
