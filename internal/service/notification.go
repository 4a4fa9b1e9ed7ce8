package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	apperrors "github.com/pairbond/pairbond-server/internal/errors"
	"github.com/pairbond/pairbond-server/internal/model"
	"github.com/pairbond/pairbond-server/internal/repository"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

type SendPulseParams struct {
	PairCode string
	FromUser string
	ToUser   string // optional; derived from the pair when empty
	Message  string // optional; defaults to model.DefaultPulseMessage
}

type NotificationService struct {
	pairRepo  repository.PairRepository
	notifRepo repository.NotificationRepository
}

func NewNotificationService(
	pairRepo repository.PairRepository,
	notifRepo repository.NotificationRepository,
) *NotificationService {
	return &NotificationService{
		pairRepo:  pairRepo,
		notifRepo: notifRepo,
	}
}

// SendPulse records a one-way pulse for the partner. When ToUser is empty
// the partner is derived from the pair row; sending before a partner has
// joined is a validation error.
func (s *NotificationService) SendPulse(ctx context.Context, params SendPulseParams) (*model.Notification, error) {
	toUser := params.ToUser
	if toUser == "" {
		pair, err := s.pairRepo.FindByCode(ctx, params.PairCode)
		if err != nil {
			return nil, fmt.Errorf("find pair: %w", err)
		}
		if pair == nil {
			return nil, apperrors.PairNotFound()
		}
		partner := pair.PartnerOf(params.FromUser)
		if partner == nil {
			return nil, apperrors.ValidationError("No partner has joined this pair yet")
		}
		toUser = *partner
	}

	message := params.Message
	if message == "" {
		message = model.DefaultPulseMessage
	}

	notif, err := s.notifRepo.Create(ctx, model.CreateNotificationParams{
		PairCode: params.PairCode,
		FromUser: params.FromUser,
		ToUser:   toUser,
		Message:  message,
	})
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	log.Info().
		Str("pairCode", params.PairCode).
		Str("fromUser", params.FromUser).
		Str("toUser", toUser).
		Msg("pulse sent")

	return notif, nil
}

// ClaimUnread returns the caller's unread pulses newest-first and marks
// them read in the same statement, so repeated polls never deliver a
// pulse twice.
func (s *NotificationService) ClaimUnread(ctx context.Context, pairCode, userName string) ([]model.Notification, error) {
	notifs, err := s.notifRepo.ClaimUnread(ctx, pairCode, userName)
	if err != nil {
		return nil, fmt.Errorf("claim unread notifications: %w", err)
	}

	if len(notifs) > 0 {
		log.Debug().
			Str("pairCode", pairCode).
			Int("count", len(notifs)).
			Msg("unread pulses delivered")
	}

	return notifs, nil
}

// UnreadCount reports how many pulses await the caller without claiming
// them, for badge display.
func (s *NotificationService) UnreadCount(ctx context.Context, pairCode, userName string) (int, error) {
	count, err := s.notifRepo.CountUnread(ctx, pairCode, userName)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// ListRecent returns the pair's notification history regardless of read
// state, newest first.
func (s *NotificationService) ListRecent(ctx context.Context, pairCode string, limit int) ([]model.Notification, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	notifs, err := s.notifRepo.FindRecent(ctx, pairCode, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent notifications: %w", err)
	}
	return notifs, nil
}
