package model

import "time"

// DefaultPulseMessage is used when a pulse is sent without a message.
const DefaultPulseMessage = "Thinking of you 💖"

type Notification struct {
	ID        int64     `db:"id" json:"id"`
	PairCode  string    `db:"pair_code" json:"pairCode"`
	FromUser  string    `db:"from_user" json:"fromUser"`
	ToUser    string    `db:"to_user" json:"toUser"`
	Message   string    `db:"message" json:"message"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	IsRead    bool      `db:"is_read" json:"isRead"`
}

type CreateNotificationParams struct {
	PairCode string
	FromUser string
	ToUser   string
	Message  string
}
