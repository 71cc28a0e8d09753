package mocks

import (
	"context"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockTrackingService struct {
	mock.Mock
}

var _ interface {
	Track(ctx context.Context, in domain.TrackInput) (domain.TrackResult, error)
	Stats(ctx context.Context) (*domain.StatsReport, error)
} = (*MockTrackingService)(nil)

func (m *MockTrackingService) Track(ctx context.Context, in domain.TrackInput) (domain.TrackResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.TrackResult), args.Error(1)
}

func (m *MockTrackingService) Stats(ctx context.Context) (*domain.StatsReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatsReport), args.Error(1)
}
