package model

import "time"

// SharingDuration is the caller-selected lifetime of a shared location.
type SharingDuration string

const (
	SharingOneHour       SharingDuration = "1 hour"
	SharingUntilTomorrow SharingDuration = "Until tomorrow"
	SharingIndefinitely  SharingDuration = "Indefinitely"
)

func (d SharingDuration) Valid() bool {
	switch d {
	case SharingOneHour, SharingUntilTomorrow, SharingIndefinitely:
		return true
	}
	return false
}

// ExpiryFrom computes the expiry timestamp for a location written at now.
// "Until tomorrow" means 23:59:59 of the next calendar day; "Indefinitely"
// never expires and returns nil.
func (d SharingDuration) ExpiryFrom(now time.Time) *time.Time {
	switch d {
	case SharingOneHour:
		t := now.Add(time.Hour)
		return &t
	case SharingUntilTomorrow:
		tomorrow := now.AddDate(0, 0, 1)
		t := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 23, 59, 59, 0, now.Location())
		return &t
	default:
		return nil
	}
}

type Location struct {
	ID              int64           `db:"id" json:"-"`
	PairCode        string          `db:"pair_code" json:"pairCode"`
	UserID          int             `db:"user_id" json:"userId"`
	UserName        string          `db:"user_name" json:"userName"`
	Latitude        float64         `db:"latitude" json:"latitude"`
	Longitude       float64         `db:"longitude" json:"longitude"`
	BatteryLevel    *int            `db:"battery_level" json:"batteryLevel,omitempty"`
	SharingDuration SharingDuration `db:"sharing_duration" json:"sharingDuration"`
	Timestamp       time.Time       `db:"timestamp" json:"timestamp"`
	ExpiresAt       *time.Time      `db:"expires_at" json:"expiresAt,omitempty"`
}

type UpsertLocationParams struct {
	PairCode        string
	UserID          int
	UserName        string
	Latitude        float64
	Longitude       float64
	BatteryLevel    *int
	SharingDuration SharingDuration
	ExpiresAt       *time.Time
}
