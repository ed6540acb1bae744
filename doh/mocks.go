package doh

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a testify mock of a DoH provider
type MockClient struct {
	mock.Mock

	ProviderName string
}

// NewMockClient creates a mock provider with the given name
func NewMockClient(name string) *MockClient {
	return &MockClient{ProviderName: name}
}

func (m *MockClient) Name() string {
	return m.ProviderName
}

func (m *MockClient) String() string {
	return "mock:" + m.ProviderName
}

func (m *MockClient) QueryTXT(ctx context.Context, domain string) (string, error) {
	args := m.Called(ctx, domain)

	return args.String(0), args.Error(1)
}
