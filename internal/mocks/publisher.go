package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

// PublisherMock records routing keys in addition to the usual expectations.
type PublisherMock struct {
	mock.Mock

	mu   sync.Mutex
	keys []string
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	m.mu.Lock()
	m.keys = append(m.keys, routingKey)
	m.mu.Unlock()
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// RoutingKeys returns the keys passed to Publish so far, in call order.
func (m *PublisherMock) RoutingKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}
