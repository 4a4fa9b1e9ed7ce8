package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/pairbond/pairbond-server/internal/model"
)

type PairSessionRepository interface {
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.PairSession, error)
	Create(ctx context.Context, params model.CreatePairSessionParams) (*model.PairSession, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type pairSessionRepo struct {
	db *sqlx.DB
}

func NewPairSessionRepository(db *sqlx.DB) PairSessionRepository {
	return &pairSessionRepo{db: db}
}

func (r *pairSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.PairSession, error) {
	var s model.PairSession
	err := r.db.GetContext(ctx, &s, `
		SELECT * FROM pair_sessions
		WHERE token_hash = $1 AND expires_at > NOW()
	`, tokenHash)
	return HandleNotFound(&s, err)
}

func (r *pairSessionRepo) Create(ctx context.Context, params model.CreatePairSessionParams) (*model.PairSession, error) {
	var s model.PairSession
	err := r.db.GetContext(ctx, &s, `
		INSERT INTO pair_sessions (token_hash, pair_code, user_name, user_slot, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.TokenHash, params.PairCode, params.UserName, params.UserSlot, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pairSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM pair_sessions WHERE token_hash = $1
	`, tokenHash)
	return err
}

func (r *pairSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM pair_sessions WHERE expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
