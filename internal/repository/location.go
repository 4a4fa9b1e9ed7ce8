package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/pairbond/pairbond-server/internal/database"
	"github.com/pairbond/pairbond-server/internal/model"
)

type LocationRepository interface {
	FindByPairCode(ctx context.Context, pairCode string) ([]model.Location, error)
	SweepAndList(ctx context.Context, pairCode string) ([]model.Location, error)
	Upsert(ctx context.Context, params model.UpsertLocationParams) (*model.Location, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type locationRepo struct {
	db *database.DB
}

func NewLocationRepository(db *database.DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) FindByPairCode(ctx context.Context, pairCode string) ([]model.Location, error) {
	return findLocations(ctx, r.db, pairCode)
}

// SweepAndList deletes expired rows and reads the pair's live rows in one
// transaction, so the caller sees exactly the post-sweep state.
func (r *locationRepo) SweepAndList(ctx context.Context, pairCode string) ([]model.Location, error) {
	var locs []model.Location
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := sweepExpired(ctx, tx); err != nil {
			return err
		}
		var err error
		locs, err = findLocations(ctx, tx, pairCode)
		return err
	})
	if err != nil {
		return nil, err
	}
	return locs, nil
}

// Upsert replaces any prior row for the (pair, slot). No location history
// is kept: the unique (pair_code, user_id) constraint plus ON CONFLICT
// makes the replacement a single atomic statement.
func (r *locationRepo) Upsert(ctx context.Context, params model.UpsertLocationParams) (*model.Location, error) {
	var loc model.Location
	err := r.db.GetContext(ctx, &loc, `
		INSERT INTO locations
			(pair_code, user_id, user_name, latitude, longitude,
			 battery_level, sharing_duration, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pair_code, user_id) DO UPDATE SET
			user_name = EXCLUDED.user_name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			battery_level = EXCLUDED.battery_level,
			sharing_duration = EXCLUDED.sharing_duration,
			timestamp = NOW(),
			expires_at = EXCLUDED.expires_at
		RETURNING *
	`, params.PairCode, params.UserID, params.UserName, params.Latitude,
		params.Longitude, params.BatteryLevel, params.SharingDuration, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// DeleteExpired sweeps rows past expiry across all pairs. Deletion is
// convergent, so concurrent sweeps from read paths and the cleanup job
// are safe.
func (r *locationRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return sweepExpired(ctx, r.db)
}

func findLocations(ctx context.Context, q database.DBTX, pairCode string) ([]model.Location, error) {
	var locs []model.Location
	err := q.SelectContext(ctx, &locs, `
		SELECT * FROM locations
		WHERE pair_code = $1
		ORDER BY timestamp DESC
	`, pairCode)
	return locs, err
}

func sweepExpired(ctx context.Context, q database.DBTX) (int64, error) {
	result, err := q.ExecContext(ctx, `
		DELETE FROM locations
		WHERE expires_at IS NOT NULL AND expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
