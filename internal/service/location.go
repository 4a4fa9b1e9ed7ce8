package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/pairbond/pairbond-server/internal/errors"
	"github.com/pairbond/pairbond-server/internal/geo"
	"github.com/pairbond/pairbond-server/internal/model"
	"github.com/pairbond/pairbond-server/internal/repository"
)

type UpdateLocationParams struct {
	PairCode        string
	UserName        string
	Latitude        float64
	Longitude       float64
	BatteryLevel    *int
	SharingDuration model.SharingDuration
}

// MapAnnotation carries the distance line data the original map drew
// between the two partner markers.
type MapAnnotation struct {
	DistanceKm float64   `json:"distanceKm"`
	Midpoint   geo.Point `json:"midpoint"`
}

type LocationsResult struct {
	Locations  []model.Location `json:"locations"`
	Annotation *MapAnnotation   `json:"annotation,omitempty"`
}

type LocationService struct {
	pairRepo     repository.PairRepository
	locationRepo repository.LocationRepository
	now          func() time.Time
}

func NewLocationService(
	pairRepo repository.PairRepository,
	locationRepo repository.LocationRepository,
) *LocationService {
	return &LocationService{
		pairRepo:     pairRepo,
		locationRepo: locationRepo,
		now:          time.Now,
	}
}

// Update replaces the caller's location row. The caller's name must match
// one of the pair's stored participants; there is no fallback slot.
func (s *LocationService) Update(ctx context.Context, params UpdateLocationParams) (*model.Location, error) {
	if err := validateLocation(params); err != nil {
		return nil, err
	}

	pair, err := s.pairRepo.FindByCode(ctx, params.PairCode)
	if err != nil {
		return nil, fmt.Errorf("find pair: %w", err)
	}
	if pair == nil {
		return nil, apperrors.PairNotFound()
	}

	slot := pair.SlotOf(params.UserName)
	if slot == 0 {
		return nil, apperrors.UnknownParticipant(params.UserName)
	}

	loc, err := s.locationRepo.Upsert(ctx, model.UpsertLocationParams{
		PairCode:        params.PairCode,
		UserID:          slot,
		UserName:        params.UserName,
		Latitude:        params.Latitude,
		Longitude:       params.Longitude,
		BatteryLevel:    params.BatteryLevel,
		SharingDuration: params.SharingDuration,
		ExpiresAt:       params.SharingDuration.ExpiryFrom(s.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert location: %w", err)
	}

	log.Info().
		Str("pairCode", params.PairCode).
		Int("slot", slot).
		Str("duration", string(params.SharingDuration)).
		Msg("location updated")

	return loc, nil
}

// List sweeps expired rows and reads the pair's live locations in one
// transaction, newest-first, with the distance annotation when both
// partners are on the map. The sweep is global and convergent, so
// piggybacking it on every read is safe.
func (s *LocationService) List(ctx context.Context, pairCode string) (*LocationsResult, error) {
	locs, err := s.locationRepo.SweepAndList(ctx, pairCode)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	result := &LocationsResult{Locations: locs}
	if len(locs) == 2 {
		a := geo.Point{Latitude: locs[0].Latitude, Longitude: locs[0].Longitude}
		b := geo.Point{Latitude: locs[1].Latitude, Longitude: locs[1].Longitude}
		result.Annotation = &MapAnnotation{
			DistanceKm: geo.Distance(a, b),
			Midpoint:   geo.Midpoint(a, b),
		}
	}

	return result, nil
}

// CleanupExpired is the idempotent sweep shared with the background job.
func (s *LocationService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.locationRepo.DeleteExpired(ctx)
}

func validateLocation(params UpdateLocationParams) error {
	if params.Latitude < -90 || params.Latitude > 90 {
		return apperrors.InvalidInput("latitude", "must be between -90 and 90")
	}
	if params.Longitude < -180 || params.Longitude > 180 {
		return apperrors.InvalidInput("longitude", "must be between -180 and 180")
	}
	if params.BatteryLevel != nil && (*params.BatteryLevel < 0 || *params.BatteryLevel > 100) {
		return apperrors.InvalidInput("batteryLevel", "must be between 0 and 100")
	}
	if !params.SharingDuration.Valid() {
		return apperrors.InvalidInput("sharingDuration",
			`must be one of "1 hour", "Until tomorrow", "Indefinitely"`)
	}
	return nil
}
