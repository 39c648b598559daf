package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type BucketMock struct {
	mock.Mock
}

func (m *BucketMock) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *BucketMock) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *BucketMock) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
