package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/pairbond/pairbond-server/internal/model"
)

type PairRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Pair, error)
	Exists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, params model.CreatePairParams) (*model.Pair, error)
	ClaimPartnerSlot(ctx context.Context, code, joinerName string) (bool, error)
}

type pairRepo struct {
	db *sqlx.DB
}

func NewPairRepository(db *sqlx.DB) PairRepository {
	return &pairRepo{db: db}
}

func (r *pairRepo) FindByCode(ctx context.Context, code string) (*model.Pair, error) {
	var p model.Pair
	err := r.db.GetContext(ctx, &p, `SELECT * FROM pairs WHERE pair_code = $1`, code)
	return HandleNotFound(&p, err)
}

func (r *pairRepo) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM pairs WHERE pair_code = $1)
	`, code)
	return exists, err
}

func (r *pairRepo) Create(ctx context.Context, params model.CreatePairParams) (*model.Pair, error) {
	var p model.Pair
	err := r.db.GetContext(ctx, &p, `
		INSERT INTO pairs (pair_code, pair_name, passphrase_hash, user1_name)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.PairCode, params.PairName, params.PassphraseHash, params.User1Name)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ClaimPartnerSlot assigns the second participant slot in a single
// conditional update. Returns false when the slot was already taken,
// so two simultaneous joiners cannot both succeed.
func (r *pairRepo) ClaimPartnerSlot(ctx context.Context, code, joinerName string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE pairs SET user2_name = $2
		WHERE pair_code = $1 AND user2_name IS NULL
	`, code, joinerName)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
