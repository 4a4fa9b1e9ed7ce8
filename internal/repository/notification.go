package repository

import (
	"context"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/pairbond/pairbond-server/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, params model.CreateNotificationParams) (*model.Notification, error)
	ClaimUnread(ctx context.Context, pairCode, toUser string) ([]model.Notification, error)
	FindRecent(ctx context.Context, pairCode string, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, pairCode, toUser string) (int, error)
}

type notificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, params model.CreateNotificationParams) (*model.Notification, error) {
	var n model.Notification
	err := r.db.GetContext(ctx, &n, `
		INSERT INTO notifications (pair_code, from_user, to_user, message)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.PairCode, params.FromUser, params.ToUser, params.Message)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ClaimUnread flips unread rows to read and returns them in one statement.
// A notification is therefore delivered exactly once even when two
// sessions poll as the same recipient concurrently.
func (r *notificationRepo) ClaimUnread(ctx context.Context, pairCode, toUser string) ([]model.Notification, error) {
	var notifs []model.Notification
	err := r.db.SelectContext(ctx, &notifs, `
		UPDATE notifications SET is_read = TRUE
		WHERE pair_code = $1 AND to_user = $2 AND is_read = FALSE
		RETURNING *
	`, pairCode, toUser)
	if err != nil {
		return nil, err
	}
	// RETURNING order is unspecified; callers expect newest first
	sortNewestFirst(notifs)
	return notifs, nil
}

func (r *notificationRepo) FindRecent(ctx context.Context, pairCode string, limit int) ([]model.Notification, error) {
	var notifs []model.Notification
	err := r.db.SelectContext(ctx, &notifs, `
		SELECT * FROM notifications
		WHERE pair_code = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, pairCode, limit)
	return notifs, err
}

func (r *notificationRepo) CountUnread(ctx context.Context, pairCode, toUser string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications
		WHERE pair_code = $1 AND to_user = $2 AND is_read = FALSE
	`, pairCode, toUser)
	return count, err
}

func sortNewestFirst(notifs []model.Notification) {
	sort.Slice(notifs, func(i, j int) bool {
		return notifs[i].Timestamp.After(notifs[j].Timestamp)
	})
}
