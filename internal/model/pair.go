package model

import "time"

type Pair struct {
	PairCode       string    `db:"pair_code" json:"pairCode"`
	PairName       string    `db:"pair_name" json:"pairName"`
	PassphraseHash string    `db:"passphrase_hash" json:"-"`
	User1Name      string    `db:"user1_name" json:"user1Name"`
	User2Name      *string   `db:"user2_name" json:"user2Name,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// IsComplete reports whether both participant slots are taken.
func (p *Pair) IsComplete() bool {
	return p.User2Name != nil && *p.User2Name != ""
}

// SlotOf returns the slot (1 or 2) the given participant name occupies,
// or 0 if the name matches neither participant.
func (p *Pair) SlotOf(userName string) int {
	if userName == p.User1Name {
		return 1
	}
	if p.User2Name != nil && userName == *p.User2Name {
		return 2
	}
	return 0
}

// PartnerOf returns the other participant's name, or nil if the partner
// slot is empty or the name is not a participant.
func (p *Pair) PartnerOf(userName string) *string {
	switch p.SlotOf(userName) {
	case 1:
		return p.User2Name
	case 2:
		name := p.User1Name
		return &name
	default:
		return nil
	}
}

type CreatePairParams struct {
	PairCode       string
	PairName       string
	PassphraseHash string
	User1Name      string
}
