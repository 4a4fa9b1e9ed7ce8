package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pairbond/pairbond-server/internal/errors"
	"github.com/pairbond/pairbond-server/internal/model"
)

// Mock location repository
type mockLocationRepo struct {
	mock.Mock
}

func (m *mockLocationRepo) FindByPairCode(ctx context.Context, pairCode string) ([]model.Location, error) {
	args := m.Called(ctx, pairCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Location), args.Error(1)
}

func (m *mockLocationRepo) Upsert(ctx context.Context, params model.UpsertLocationParams) (*model.Location, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

func (m *mockLocationRepo) SweepAndList(ctx context.Context, pairCode string) ([]model.Location, error) {
	args := m.Called(ctx, pairCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Location), args.Error(1)
}

func (m *mockLocationRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newLocationService(pairRepo *mockPairRepo, locRepo *mockLocationRepo, now time.Time) *LocationService {
	svc := NewLocationService(pairRepo, locRepo)
	svc.now = func() time.Time { return now }
	return svc
}

func TestLocationServiceUpdate(t *testing.T) {
	ctx := context.Background()
	sam := "Sam"
	now := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)

	t.Run("resolves slot 1 for the first participant", func(t *testing.T) {
		pairRepo := new(mockPairRepo)
		locRepo := new(mockLocationRepo)
		svc := newLocationService(pairRepo, locRepo, now)

		pairRepo.On("FindByCode", ctx, "PB-12345").Return(storedPair(&sam), nil)
		locRepo.On("Upsert", ctx, mock.MatchedBy(func(p model.UpsertLocationParams) bool {
			return p.UserID == 1 && p.UserName == "Alex"
		})).Return(&model.Location{UserID: 1}, nil)

		_, err := svc.Update(ctx, UpdateLocationParams{
			PairCode:        "PB-12345",
			UserName:        "Alex",
			Latitude:        40.7128,
			Longitude:       -74.0060,
			SharingDuration: model.SharingIndefinitely,
		})
		require.NoError(t, err)
		locRepo.AssertExpectations(t)
	})

	t.Run("computes one hour expiry", func(t *testing.T) {
		pairRepo := new(mockPairRepo)
		locRepo := new(mockLocationRepo)
		svc := newLocationService(pairRepo, locRepo, now)

		pairRepo.On("FindByCode", ctx, "PB-12345").Return(storedPair(&sam), nil)
		locRepo.On("Upsert", ctx, mock.MatchedBy(func(p model.UpsertLocationParams) bool {
			return p.ExpiresAt != nil && p.ExpiresAt.Equal(now.Add(time.Hour))
		})).Return(&model.Location{}, nil)

		_, err := svc.Update(ctx, UpdateLocationParams{
			PairCode:        "PB-12345",
			UserName:        "Sam",
			Latitude:        0,
			Longitude:       0,
			SharingDuration: model.SharingOneHour,
		})
		require.NoError(t, err)
		locRepo.AssertExpectations(t)
	})

	t.Run("computes until-tomorrow expiry as end of next day", func(t *testing.T) {
		pairRepo := new(mockPairRepo)
		locRepo := new(mockLocationRepo)
		svc := newLocationService(pairRepo, locRepo, now)

		want := time.Date(2026, 8, 24, 23, 59, 59, 0, time.UTC)
		pairRepo.On("FindByCode", ctx, "PB-12345").Return(storedPair(&sam), nil)
		locRepo.On("Upsert", ctx, mock.MatchedBy(func(p model.UpsertLocationParams) bool {
			return p.ExpiresAt != nil && p.ExpiresAt.Equal(want)
		})).Return(&model.Location{}, nil)

		_, err := svc.Update(ctx, UpdateLocationParams{
			PairCode:        "PB-12345",
			UserName:        "Sam",
			Latitude:        0,
			Longitude:       0,
			SharingDuration: model.SharingUntilTomorrow,
		})
		require.NoError(t, err)
		locRepo.AssertExpectations(t)
	})

	t.Run("indefinite sharing has no expiry", func(t *testing.T) {
		pairRepo := new(mockPairRepo)
		locRepo := new(mockLocationRepo)
		svc := newLocationService(pairRepo, locRepo, now)

		pairRepo.On("FindByCode", ctx, "PB-12345").Return(storedPair(&sam), nil)
		locRepo.On("Upsert", ctx, mock.MatchedBy(func(p model.UpsertLocationParams) bool {
			return p.ExpiresAt == nil
		})).Return(&model.Location{}, nil)

		_, err := svc.Update(ctx, UpdateLocationParams{
			PairCode:        "PB-12345",
			UserName:        "Alex",
			Latitude:        0,
			Longitude:       0,
			SharingDuration: model.SharingIndefinitely,
		})
		require.NoError(t, err)
	})

	t.Run("fails with PairNotFound for unknown pair", func(t *testing.T) {
		pairRepo := new(mockPairRepo)
		locRepo := new(mockLocationRepo)
		svc := newLocationService(pairRepo, locRepo, now)

		pairRepo.On("FindByCode", ctx, "PB-00000").Return(nil, nil)

		_, err := svc.Update(ctx, UpdateLocationParams{
			PairCode:        "PB-00000",
			UserName:        "Alex",
			SharingDuration: model.SharingIndefinitely,
		})
		assert.Equal(t, apperrors.ErrCodePairNotFound, apperrors.GetCode(err))
	})

	t.Run("rejects a name matching neither participant", func(t *testing.T) {
		pairRepo := new(mockPairRepo)
		locRepo := new(mockLocationRepo)
		svc := newLocationService(pairRepo, locRepo, now)

		pairRepo.On("FindByCode", ctx, "PB-12345").Return(storedPair(&sam), nil)

		_, err := svc.Update(ctx, UpdateLocationParams{
			PairCode:        "PB-12345",
			UserName:        "Jordan",
			SharingDuration: model.SharingIndefinitely,
		})
		assert.Equal(t, apperrors.ErrCodeUnknownParticipant, apperrors.GetCode(err))
		locRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("validates coordinate and battery ranges", func(t *testing.T) {
		pairRepo := new(mockPairRepo)
		locRepo := new(mockLocationRepo)
		svc := newLocationService(pairRepo, locRepo, now)

		tests := []struct {
			name   string
			params UpdateLocationParams
		}{
			{"latitude too large", UpdateLocationParams{Latitude: 91, SharingDuration: model.SharingOneHour}},
			{"latitude too small", UpdateLocationParams{Latitude: -91, SharingDuration: model.SharingOneHour}},
			{"longitude too large", UpdateLocationParams{Longitude: 181, SharingDuration: model.SharingOneHour}},
			{"battery over 100", UpdateLocationParams{BatteryLevel: intPtr(101), SharingDuration: model.SharingOneHour}},
			{"battery negative", UpdateLocationParams{BatteryLevel: intPtr(-1), SharingDuration: model.SharingOneHour}},
			{"unknown duration", UpdateLocationParams{SharingDuration: "2 hours"}},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Update(ctx, tc.params)
				assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
			})
		}
	})
}

func TestLocationServiceList(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("reads through the sweeping path", func(t *testing.T) {
		pairRepo := new(mockPairRepo)
		locRepo := new(mockLocationRepo)
		svc := newLocationService(pairRepo, locRepo, now)

		locRepo.On("SweepAndList", ctx, "PB-12345").Return([]model.Location{}, nil)

		_, err := svc.List(ctx, "PB-12345")
		require.NoError(t, err)
		locRepo.AssertCalled(t, "SweepAndList", ctx, "PB-12345")
		locRepo.AssertNotCalled(t, "FindByPairCode", mock.Anything, mock.Anything)
	})

	t.Run("annotates distance and midpoint with two rows", func(t *testing.T) {
		pairRepo := new(mockPairRepo)
		locRepo := new(mockLocationRepo)
		svc := newLocationService(pairRepo, locRepo, now)

		locRepo.On("SweepAndList", ctx, "PB-12345").Return([]model.Location{
			{UserID: 1, Latitude: 0, Longitude: 0},
			{UserID: 2, Latitude: 0, Longitude: 1},
		}, nil)

		result, err := svc.List(ctx, "PB-12345")
		require.NoError(t, err)
		require.NotNil(t, result.Annotation)
		assert.InDelta(t, 111.19, result.Annotation.DistanceKm, 0.05)
		assert.Equal(t, 0.0, result.Annotation.Midpoint.Latitude)
		assert.Equal(t, 0.5, result.Annotation.Midpoint.Longitude)
	})

	t.Run("no annotation with a single row", func(t *testing.T) {
		pairRepo := new(mockPairRepo)
		locRepo := new(mockLocationRepo)
		svc := newLocationService(pairRepo, locRepo, now)

		locRepo.On("SweepAndList", ctx, "PB-12345").Return([]model.Location{
			{UserID: 1, Latitude: 40.0, Longitude: -74.0},
		}, nil)

		result, err := svc.List(ctx, "PB-12345")
		require.NoError(t, err)
		assert.Nil(t, result.Annotation)
		assert.Len(t, result.Locations, 1)
	})
}

func intPtr(i int) *int {
	return &i
}
