package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/batch-geotag/pkg/exif"
)

// MockCodec is a mock implementation of the exif.Codec interface
type MockCodec struct {
	mock.Mock
}

func (m *MockCodec) ReadMetadata(path string) (*exif.Metadata, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exif.Metadata), args.Error(1)
}

func (m *MockCodec) SetGeo(path string, lat, lon float64) error {
	args := m.Called(path, lat, lon)
	return args.Error(0)
}
