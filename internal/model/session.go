package model

import "time"

// PairSession is an authenticated identity within a pair: which pair the
// caller belongs to and which participant slot they act as. It replaces
// ambient "current user" state; handlers resolve it from a bearer token
// and pass it into every service call.
type PairSession struct {
	ID        int64     `db:"id" json:"-"`
	TokenHash string    `db:"token_hash" json:"-"`
	PairCode  string    `db:"pair_code" json:"pairCode"`
	UserName  string    `db:"user_name" json:"userName"`
	UserSlot  int       `db:"user_slot" json:"userSlot"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreatePairSessionParams struct {
	TokenHash string
	PairCode  string
	UserName  string
	UserSlot  int
	ExpiresAt time.Time
}
