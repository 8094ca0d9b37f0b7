package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockResolver is a mock implementation of the timezone.Resolver interface
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, lat, lon float64, at time.Time) (*time.Location, error) {
	args := m.Called(ctx, lat, lon, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Location), args.Error(1)
}
