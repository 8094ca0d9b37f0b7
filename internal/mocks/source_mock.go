package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/batch-geotag/pkg/timeseries"
)

// MockSource is a mock implementation of the track.Source interface
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSource) Read() ([]timeseries.Sample, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]timeseries.Sample), args.Error(1)
}
